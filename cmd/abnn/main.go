// Command abnn runs, saves, and loads an Asynchronous Biological
// Neural Network, mapping 1:1 onto the original's menu surface (spec
// §6.4): start_async/save_model/load_model become the run/save/load
// subcommands.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/emer/emergent/v2/timer"

	"github.com/tjamescouch/abnn/internal/brain"
	"github.com/tjamescouch/abnn/internal/brain/cpudispatch"
	"github.com/tjamescouch/abnn/internal/kernel"
	"github.com/tjamescouch/abnn/internal/persistence"
	"github.com/tjamescouch/abnn/internal/stimulus"
	"github.com/tjamescouch/abnn/internal/synapse"
	"github.com/tjamescouch/abnn/internal/tracelog"
	"github.com/tjamescouch/abnn/internal/training"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runCmd(os.Args[2:])
	case "save":
		saveCmd(os.Args[2:])
	case "load":
		loadCmd(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: abnn <run|save|load> [flags]")
}

type graphFlags struct {
	nInput, nOutput, nHidden, nSyn uint
	modelPath                      string
	threads                        int
	seed                           uint
}

func bindGraphFlags(fs *flag.FlagSet) *graphFlags {
	g := &graphFlags{}
	fs.UintVar(&g.nInput, "ninput", 16, "number of input neurons")
	fs.UintVar(&g.nOutput, "noutput", 1, "number of output neurons")
	fs.UintVar(&g.nHidden, "nhidden", 64, "number of hidden neurons")
	fs.UintVar(&g.nSyn, "nsyn", 4096, "number of synapses")
	fs.StringVar(&g.modelPath, "model", "model.bnn", "model file path")
	fs.IntVar(&g.threads, "threads", 4, "CPU dispatcher thread count")
	fs.UintVar(&g.seed, "seed", 1, "deterministic RNG seed")
	return g
}

func buildGraph(g *graphFlags) *synapse.Graph {
	sg := synapse.Build(uint32(g.nInput), uint32(g.nOutput), uint32(g.nHidden), uint32(g.nSyn))
	rng := rand.New(rand.NewPCG(uint64(g.seed), uint64(g.seed)))
	sg.RandomiseDenseIOPlusSparseHidden(rng, synapse.Interval{Lo: 0.3, Hi: 0.7}, synapse.Interval{Lo: 0.05, Hi: 0.3})
	return sg
}

func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	g := bindGraphFlags(fs)
	passes := fs.Int("passes", 0, "number of passes to run (0 = forever)")
	eventsPerPass := fs.Uint("events", 2000, "traversal events dispatched per pass")
	fs.Parse(args)

	sg := buildGraph(g)
	if f, err := os.Open(g.modelPath); err == nil {
		defer f.Close()
		if err := loadInto(sg, f); err != nil {
			slog.Warn("model load failed, continuing with fresh graph", "path", g.modelPath, "err", err)
		}
	} else {
		slog.Warn("could not open model file, continuing with fresh graph",
			"path", g.modelPath, "err", fmt.Errorf("%w: %v", persistence.ErrIOFailure, err))
	}

	rng := rand.New(rand.NewPCG(uint64(g.seed)+1, uint64(g.seed)+1))
	dispatcher := cpudispatch.New(uint32(*eventsPerPass), g.threads, uint32(g.seed))
	b := brain.New(sg, kernel.Defaults(), dispatcher, rng)

	stim := stimulus.NewBlockSchedule(
		[]stimulus.Block{{Target: 1.0, Passes: 2000}, {Target: 0.0, Passes: 2000}},
		int(g.nInput), int(g.nOutput), 0.001, 5,
	)
	cfg := training.DefaultConfig(uint32(*eventsPerPass), int(g.nOutput))

	traceFile, err := os.Create("trace.m")
	var tracer *tracelog.Tracer
	if err != nil {
		slog.Warn("could not open trace file, continuing without traces",
			"err", fmt.Errorf("%w: %v", persistence.ErrIOFailure, err))
	} else {
		defer traceFile.Close()
		tracer = tracelog.NewTracer(traceFile)
	}

	h := training.New(cfg, b, stim, rng, tracer)

	ctx := context.Background()
	tmr := timer.Time{}
	tmr.Start()

	for i := 0; *passes == 0 || i < *passes; i++ {
		if err := h.Step(ctx); err != nil {
			slog.Error("training step failed", "pass", i, "err", err)
			os.Exit(1)
		}
	}

	tmr.Stop()
	slog.Info("run complete", "passes", *passes, "secs", tmr.TotalSecs())

	if out, err := os.Create(g.modelPath); err != nil {
		slog.Warn("could not save model on exit",
			"path", g.modelPath, "err", fmt.Errorf("%w: %v", persistence.ErrIOFailure, err))
	} else {
		defer out.Close()
		if err := b.Save(out); err != nil {
			slog.Warn("model save failed", "err", err)
		}
	}
}

func saveCmd(args []string) {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	g := bindGraphFlags(fs)
	fs.Parse(args)

	sg := buildGraph(g)
	rng := rand.New(rand.NewPCG(uint64(g.seed)+1, uint64(g.seed)+1))
	b := brain.New(sg, kernel.Defaults(), cpudispatch.New(1000, g.threads, uint32(g.seed)), rng)

	out, err := os.Create(g.modelPath)
	if err != nil {
		slog.Error("save: could not create model file",
			"path", g.modelPath, "err", fmt.Errorf("%w: %v", persistence.ErrIOFailure, err))
		os.Exit(1)
	}
	defer out.Close()
	if err := b.Save(out); err != nil {
		slog.Error("save: write failed", "err", err)
		os.Exit(1)
	}
}

func loadCmd(args []string) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	g := bindGraphFlags(fs)
	fs.Parse(args)

	sg := buildGraph(g)
	f, err := os.Open(g.modelPath)
	if err != nil {
		slog.Error("load: could not open model file",
			"path", g.modelPath, "err", fmt.Errorf("%w: %v", persistence.ErrIOFailure, err))
		os.Exit(1)
	}
	defer f.Close()

	if err := loadInto(sg, f); err != nil {
		slog.Error("load: shape mismatch or corrupt file", "path", g.modelPath, "err", err)
		os.Exit(1)
	}
	slog.Info("model loaded", "path", g.modelPath, "nSyn", sg.NSyn, "n", sg.N)
}

func loadInto(g *synapse.Graph, f *os.File) error {
	rng := rand.New(rand.NewPCG(1, 1))
	b := brain.New(g, kernel.Defaults(), cpudispatch.New(1000, 1, 1), rng)
	return b.Load(f)
}
