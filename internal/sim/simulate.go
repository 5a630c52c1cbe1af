package sim

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"combat_narrator/internal/clock"
	"combat_narrator/internal/config"
	"combat_narrator/internal/narration"
	"combat_narrator/internal/speech"
)

const (
	// DefaultStep is the replay tick.
	DefaultStep = 100 * time.Millisecond
	// MaxDuration bounds a replay whose script never ends the encounter.
	MaxDuration = 10 * time.Minute
)

type Options struct {
	Step   time.Duration
	Logger *slog.Logger
	// Sink additionally receives every announcement, e.g. a console.
	Sink speech.Sink
}

// Line is one spoken announcement, timestamped in seconds.
type Line struct {
	T         float64 `json:"t"`
	Text      string  `json:"text"`
	Interrupt bool    `json:"interrupt,omitempty"`
}

type Result struct {
	Scenario   string   `json:"scenario,omitempty"`
	Encounter  string   `json:"encounter"`
	Opponent   string   `json:"opponent"`
	Mode       string   `json:"mode"`
	Duration   float64  `json:"duration"`
	Effects    int      `json:"effects"`
	Spoken     int      `json:"spoken"`
	Interrupts int      `json:"interrupts"`
	Dealt      string   `json:"damage_dealt"`
	Taken      string   `json:"damage_taken"`
	DealtTotal int      `json:"dealt_total"`
	TakenTotal int      `json:"taken_total"`
	Recap      []string `json:"recap"`
	Transcript []Line   `json:"transcript,omitempty"`
}

// newSession builds the board-backed session shared by replay and live play.
func newSession(sc *config.Scenario, settings narration.Settings, sched clock.Scheduler, sink narration.SpeechSink, log *slog.Logger) (*Board, *narration.Session, error) {
	board, err := NewBoard(sc)
	if err != nil {
		return nil, nil, err
	}
	if sc.Mode != "" {
		mode, err := narration.ParseMode(sc.Mode)
		if err != nil {
			return nil, nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		settings.Mode = mode
	}
	session, err := narration.NewSession(narration.Deps{
		Speech:     sink,
		Scheduler:  sched,
		Names:      board,
		Attributes: board,
		Health:     board,
		Phase:      board,
		Logger:     log,
	}, settings)
	if err != nil {
		return nil, nil, err
	}
	return board, session, nil
}

func seconds(at float64) time.Duration {
	return time.Duration(math.Round(at * float64(time.Second)))
}

// Run replays a scenario on virtual time. The same scenario always yields
// the same transcript.
func Run(sc *config.Scenario, settings narration.Settings, opts Options) (Result, error) {
	step := opts.Step
	if step <= 0 {
		step = DefaultStep
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	clk := clock.NewManual()
	rec := speech.NewRecorder(clk.Now)
	var sink narration.SpeechSink = rec
	if opts.Sink != nil {
		sink = speech.Tee{rec, opts.Sink}
	}
	board, session, err := newSession(sc, settings, clk, sink, log)
	if err != nil {
		return Result{}, err
	}
	host := NewHost(board, session, log)

	session.Start(sc.Opponent)
	next := 0
	for now := time.Duration(0); now <= MaxDuration && !host.Ended(); now += step {
		for next < len(sc.Script) && seconds(sc.Script[next].At) <= now {
			st := sc.Script[next]
			clk.Advance(seconds(st.At) - clk.Now())
			if err := host.Apply(st); err != nil {
				return Result{}, fmt.Errorf("step %d: %w", next, err)
			}
			next++
		}
		clk.Advance(now - clk.Now())
		if next == len(sc.Script) && !session.PendingWave() {
			host.End()
		}
	}
	if !host.Ended() {
		log.Warn("replay hit duration limit", "scenario", sc.Name, "limit", MaxDuration)
		host.End()
	}

	res := Result{
		Scenario:   sc.Name,
		Encounter:  session.EncounterID(),
		Opponent:   session.OpponentLabel(),
		Mode:       session.Mode().String(),
		Duration:   clk.Now().Seconds(),
		Effects:    host.Effects(),
		Spoken:     len(rec.Utterances),
		Interrupts: rec.Interrupts(),
		Dealt:      session.DamageDealt(),
		Taken:      session.DamageTaken(),
		Recap:      session.RecapLines(),
	}
	res.DealtTotal, res.TakenTotal = session.Totals()
	for _, u := range rec.Utterances {
		res.Transcript = append(res.Transcript, Line{T: u.At.Seconds(), Text: u.Text, Interrupt: u.Interrupt})
	}
	return res, nil
}

func MarshalPretty(v any) []byte {
	b, _ := json.MarshalIndent(v, "", "  ")
	return b
}
