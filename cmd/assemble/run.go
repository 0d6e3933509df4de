package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-assembler/assembler"
	"github.com/robert-malhotra/go-assembler/internal/filter"
	"github.com/robert-malhotra/go-assembler/internal/stream"
)

const (
	inputFlag   = "input"
	outputFlag  = "output"
	modeFlag    = "mode"
	workersFlag = "workers"
	filtersFlag = "filters"
)

type runConfig struct {
	Input   string
	Output  string
	Mode    string
	Workers int
	Filters []string
}

type runStats struct {
	Batches  int
	Subjects int
}

func newRunCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Assemble the subjects of a batch stream",
		Long: `Reads a msgpack batch stream, feeds every batch to the selected assembler and
writes each subject as soon as it is assembled, one file per subject.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(v)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			cfg := runConfig{
				Input:   v.GetString("run." + inputFlag),
				Output:  v.GetString("run." + outputFlag),
				Mode:    v.GetString("run." + modeFlag),
				Workers: v.GetInt("run." + workersFlag),
				Filters: v.GetStringSlice("run." + filtersFlag),
			}
			stats, err := runAssemble(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			log.Info("assembly complete", zap.Int("batches", stats.Batches), zap.Int("subjects", stats.Subjects))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String(inputFlag, "", "batch stream to read")
	flags.String(outputFlag, "assembled", "directory receiving one file per subject")
	flags.String(modeFlag, "basic", "assembler: 'basic', 'plane' or 'flat'")
	flags.Int(workersFlag, 0, "concurrent subject writes (0 uses GOMAXPROCS)")
	flags.StringSlice(filtersFlag, nil, "filters applied to subject files, e.g. shuffle,deflate:9,fletcher32")
	for _, name := range []string{inputFlag, outputFlag, modeFlag, workersFlag, filtersFlag} {
		mustBindPFlag(v, "run."+name, flags.Lookup(name))
	}
	return cmd
}

func newAssembler(mode string, log *zap.Logger) (assembler.Assembler, error) {
	switch mode {
	case "basic":
		return assembler.NewBasic(assembler.WithLogger(log)), nil
	case "plane":
		return assembler.NewPlane(assembler.WithLogger(log)), nil
	case "flat":
		return assembler.NewFlat(assembler.WithLogger(log)), nil
	default:
		return nil, fmt.Errorf("unknown assembler mode %q", mode)
	}
}

func runAssemble(ctx context.Context, cfg runConfig, log *zap.Logger) (runStats, error) {
	var stats runStats
	if cfg.Input == "" {
		return stats, errors.New("no input stream given")
	}

	a, err := newAssembler(cfg.Mode, log)
	if err != nil {
		return stats, err
	}
	filters, err := filter.NewPipeline(cfg.Filters...)
	if err != nil {
		return stats, err
	}

	f, err := os.Open(cfg.Input)
	if err != nil {
		return stats, err
	}
	defer f.Close()

	dec := stream.NewDecoder(f)
	sink := stream.NewSink(cfg.Output, cfg.Workers, log, stream.WithFilters(filters))
	sawLast := false
	for {
		rec, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}

		entries, batch, err := rec.Batch()
		if err != nil {
			return stats, fmt.Errorf("batch %d: %w", stats.Batches, err)
		}
		if err := a.AddBatch(entries, batch, rec.Last); err != nil {
			return stats, fmt.Errorf("batch %d: %w", stats.Batches, err)
		}
		stats.Batches++
		sawLast = sawLast || rec.Last

		ready := a.SubjectsReady()
		if len(ready) == 0 {
			continue
		}
		done := make(map[int]assembler.Entries, len(ready))
		for _, subject := range ready {
			if done[subject], err = a.GetAssembledSubject(subject); err != nil {
				return stats, err
			}
		}
		if err := sink.WriteSubjects(ctx, done); err != nil {
			return stats, err
		}
		stats.Subjects += len(done)
		log.Info("wrote subjects", zap.Ints("subjects", ready), zap.Int("batch", stats.Batches-1))
	}

	if stats.Batches > 0 && !sawLast {
		log.Warn("stream ended without a last batch, open subjects were dropped")
	}
	return stats, nil
}
