package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"combat_narrator/internal/config"
	"combat_narrator/internal/narration"
	"combat_narrator/internal/sim"
	"combat_narrator/internal/speech"
)

func main() {
	var scenarioPath, out string
	var seed int64
	var n, random int
	var live bool
	flag.StringVar(&scenarioPath, "scenario", "assets/scenarios/duel.yaml", "scenario file")
	flag.StringVar(&out, "out", "out.json", "output file (single) or summary file (batch)")
	flag.Int64Var(&seed, "seed", 12345, "seed")
	flag.IntVar(&random, "random", 0, "generate this many random effects instead of the scripted ones")
	flag.IntVar(&n, "n", 1, "number of replays")
	flag.BoolVar(&live, "live", false, "play in real time to the console")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: .env:", err)
	}
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	level, _ := settings.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ns, err := settings.Narration()
	if err != nil {
		slog.Error("invalid settings", "error", err)
		os.Exit(2)
	}
	base, err := config.LoadScenario(scenarioPath)
	if err != nil {
		slog.Error("failed to load scenario", "error", err)
		os.Exit(1)
	}

	if live {
		runLive(base, ns, seed, random)
		return
	}
	if n <= 1 {
		runSingle(base, ns, seed, random, out)
		return
	}
	runBatch(base, ns, seed, random, n, out)
}

func pick(base *config.Scenario, seed int64, random int) (*config.Scenario, error) {
	if random <= 0 {
		return base, nil
	}
	return sim.RandomScenario(base, seed, random)
}

func runLive(base *config.Scenario, ns narration.Settings, seed int64, random int) {
	sc, err := pick(base, seed, random)
	if err != nil {
		slog.Error("failed to build scenario", "error", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started := time.Now()
	console := &speech.Console{W: os.Stdout, Now: func() time.Duration { return time.Since(started) }}
	recap, err := sim.RunLive(ctx, sc, ns, console, slog.Default())
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("live playback failed", "error", err)
		os.Exit(1)
	}
	for _, line := range recap {
		fmt.Println(line)
	}
}

func runSingle(base *config.Scenario, ns narration.Settings, seed int64, random int, out string) {
	sc, err := pick(base, seed, random)
	if err != nil {
		slog.Error("failed to build scenario", "error", err)
		os.Exit(1)
	}
	res, err := sim.Run(sc, ns, sim.Options{})
	if err != nil {
		slog.Error("replay failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(out, sim.MarshalPretty(res), 0644); err != nil {
		slog.Error("failed to write transcript", "path", out, "error", err)
		os.Exit(1)
	}
	slog.Info("replay finished",
		"scenario", res.Scenario,
		"duration", fmt.Sprintf("%.2fs", res.Duration),
		"spoken", res.Spoken,
		"dealt", res.Dealt,
		"taken", res.Taken,
		"out", out,
	)
}

func runBatch(base *config.Scenario, ns narration.Settings, seed int64, random, n int, out string) {
	if random <= 0 {
		random = 50
	}
	type stat struct {
		Runs       int
		Failed     int
		SumT       float64
		Effects    int
		Spoken     int
		Interrupts int
		Dealt      int
		Taken      int
	}
	var st stat
	var mu sync.Mutex
	wg := sync.WaitGroup{}
	workers := 8
	jobs := make(chan int, n)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			log := slog.Default().With("worker", workerID)
			for i := range jobs {
				sc, err := sim.RandomScenario(base, seed+int64(i), random)
				var res sim.Result
				if err == nil {
					res, err = sim.Run(sc, ns, sim.Options{Logger: log})
				}

				mu.Lock()
				if err != nil {
					st.Failed++
					log.Error("replay failed", "run", i, "error", err)
				} else {
					st.Runs++
					st.SumT += res.Duration
					st.Effects += res.Effects
					st.Spoken += res.Spoken
					st.Interrupts += res.Interrupts
					st.Dealt += res.DealtTotal
					st.Taken += res.TakenTotal
				}
				mu.Unlock()
			}
		}(w)
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	avg := func(v float64) float64 {
		if st.Runs == 0 {
			return 0
		}
		return v / float64(st.Runs)
	}
	summary := map[string]any{
		"runs":              st.Runs,
		"failed":            st.Failed,
		"avg_time":          avg(st.SumT),
		"avg_effects":       avg(float64(st.Effects)),
		"avg_spoken":        avg(float64(st.Spoken)),
		"total_spoken":      st.Spoken,
		"interrupts":        st.Interrupts,
		"total_dealt":       st.Dealt,
		"total_taken":       st.Taken,
		"spoken_per_effect": ratio(st.Spoken, st.Effects),
		"effects_per_run":   random,
	}
	if err := os.WriteFile(out, sim.MarshalPretty(summary), 0644); err != nil {
		slog.Error("failed to write summary", "path", out, "error", err)
		os.Exit(1)
	}
	slog.Info("batch finished",
		"runs", humanize.Comma(int64(st.Runs)),
		"effects", humanize.Comma(int64(st.Effects)),
		"spoken", humanize.Comma(int64(st.Spoken)),
		"dealt", humanize.Comma(int64(st.Dealt)),
		"out", filepath.Base(out),
	)
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
