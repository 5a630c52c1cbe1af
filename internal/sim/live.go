package sim

import (
	"context"
	"log/slog"
	"time"

	"combat_narrator/internal/clock"
	"combat_narrator/internal/config"
	"combat_narrator/internal/narration"
)

// liveGrace is how long after the last scripted step an encounter without
// an explicit end is kept open.
const liveGrace = 3 * time.Second

// RunLive plays a scenario in real time on a single loop goroutine, speaking
// to sink as it goes. It returns the recap once the encounter ends, or
// ctx's error if the caller gave up first.
func RunLive(ctx context.Context, sc *config.Scenario, settings narration.Settings, sink narration.SpeechSink, log *slog.Logger) ([]string, error) {
	if log == nil {
		log = slog.Default()
	}
	return runLive(ctx, clock.NewLoop(len(sc.Script)+8, log), sc, settings, sink, log)
}

func runLive(ctx context.Context, loop *clock.Loop, sc *config.Scenario, settings narration.Settings, sink narration.SpeechSink, log *slog.Logger) ([]string, error) {
	board, session, err := newSession(sc, settings, loop, sink, log)
	if err != nil {
		return nil, err
	}
	host := NewHost(board, session, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop.Post(func() { session.Start(sc.Opponent) })
	timers := make([]clock.Timer, 0, len(sc.Script)+1)
	var last time.Duration
	for i, st := range sc.Script {
		at := seconds(st.At)
		last = max(last, at)
		timers = append(timers, loop.AfterFunc(at, func() {
			if err := host.Apply(st); err != nil {
				log.Error("live step failed", "step", i, "err", err)
			}
			if host.Ended() {
				cancel()
			}
		}))
	}
	timers = append(timers, loop.AfterFunc(last+liveGrace, func() {
		host.End()
		cancel()
	}))

	err = loop.Run(ctx)
	for _, t := range timers {
		clock.Stop(t)
	}
	if host.Ended() {
		return session.RecapLines(), nil
	}
	host.End()
	return session.RecapLines(), err
}
