package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/arnavshah/duty-scheduler-go/internal/config"
	"github.com/arnavshah/duty-scheduler-go/internal/logger"
	"github.com/arnavshah/duty-scheduler-go/internal/metrics"
	"github.com/arnavshah/duty-scheduler-go/pkg/arrangement"
	"github.com/arnavshah/duty-scheduler-go/pkg/database"
	"github.com/arnavshah/duty-scheduler-go/pkg/models"
	"github.com/arnavshah/duty-scheduler-go/pkg/report"
	"github.com/arnavshah/duty-scheduler-go/pkg/roster"
	"github.com/arnavshah/duty-scheduler-go/pkg/scheduler"
)

type rootOptions struct {
	cfgPath    string
	rosterPath string
	after      string
	amWeight   float64
	fillOut    string
	postOut    string
	summaryOut string
	signOut    string
	metricsOut string
	seed       int64
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "podfill <arrangement>",
		Short: "Fill open parent-on-duty spots and print duty reports",
		Long: `podfill reads a duty arrangement and the registration roster.

With --fill it assigns volunteers to the open duties after the cutoff date and
writes the filled arrangement to the given file. --post, --summary and --sign
write reports of the resulting arrangement.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFill(cmd, opts, args[0])
		},
	}
	f := cmd.PersistentFlags()
	f.StringVarP(&opts.cfgPath, "config", "c", "", "configuration file (yaml or json)")
	f.StringVarP(&opts.rosterPath, "roster", "r", "", "registration roster (csv or xlsx); defaults to roster.path")
	cmd.Flags().StringVarP(&opts.after, "after", "a", "", "fill duties and report after this date (YYYY-MM-DD), default today")
	cmd.Flags().Float64Var(&opts.amWeight, "am-weight", 1, "morning pool weight for mixed duties, 0 excludes morning students")
	cmd.Flags().StringVarP(&opts.fillOut, "fill", "f", "", "fill the open duties and write the arrangement to this file")
	cmd.Flags().StringVarP(&opts.postOut, "post", "p", "", "write duties per family sorted by last name")
	cmd.Flags().StringVarP(&opts.summaryOut, "summary", "s", "", "write duties per date with contacts")
	cmd.Flags().StringVarP(&opts.signOut, "sign", "x", "", "write the sign-in workbook (xlsx)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "seed the pool shuffle for a reproducible fill")
	cmd.Flags().StringVar(&opts.metricsOut, "metrics", "", "write fill metrics to this Prometheus textfile, also on failure")

	cmd.AddCommand(newRosterCmd(opts))
	return cmd
}

// setup loads the configuration and points logging at the command's stderr.
func setup(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runFill(cmd *cobra.Command, opts *rootOptions, arrPath string) error {
	cfg, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	log := logger.New("podfill")

	reg, err := loadRegistry(cfg, opts.rosterPath)
	if err != nil {
		return err
	}
	after := arrangement.Day(time.Now())
	if opts.after != "" {
		if after, err = time.Parse(arrangement.DateLayout, opts.after); err != nil {
			return fmt.Errorf("invalid --after %q, want YYYY-MM-DD", opts.after)
		}
	}

	text, err := os.ReadFile(arrPath)
	if err != nil {
		return err
	}

	var (
		snap *arrangement.Snapshot
		outs []output
	)
	if opts.fillOut == "" {
		if snap, err = arrangement.Parse(bytes.NewReader(text), reg, log); err != nil {
			return err
		}
	} else {
		sopts := scheduler.Options{
			After:           after,
			MorningWeight:   cfg.Fill.MorningWeight,
			FairnessCeiling: cfg.Fill.FairnessCeiling,
		}
		if cmd.Flags().Changed("am-weight") {
			if opts.amWeight < 0 {
				return fmt.Errorf("--am-weight must not be negative")
			}
			sopts.MorningWeight = opts.amWeight
		}
		seed := cfg.Fill.Seed
		if opts.seed != 0 {
			seed = opts.seed
		}
		if seed != 0 {
			sopts.Rand = rand.New(rand.NewSource(seed))
		}

		start := time.Now()
		run, err := scheduler.ParseAndFill(reg, bytes.NewReader(text), sopts, log)
		rec := metrics.FillRun{Source: "cli", Err: err, Duration: time.Since(start)}
		if run != nil {
			rec.Dropped = len(run.Arrangement.Dropped)
		}
		if err == nil {
			rec.Assigned = run.Result.Assigned
			rec.Conflicts = len(run.Result.Conflicts)
			rec.Fairness = run.Fairness.Score
		}
		if merr := writeMetrics(opts.metricsOut, rec); merr != nil {
			log.Warnf("write metrics: %v", merr)
		}
		if err != nil {
			return fmt.Errorf("filling duty spots failed, adjust the arrangement and retry: %w", err)
		}
		snap = run.Arrangement
		log.Infof("assigned %d students, %d duties short", run.Result.Assigned, len(run.Result.Conflicts))
		log.Infof("fairness %.1f (mean %.2f duties per family, std dev %.2f)",
			run.Fairness.Score, run.Fairness.Mean, run.Fairness.StdDev)
		log.Debugw("fill run", map[string]any{
			"pools":       run.Result.Pools,
			"left":        run.Result.Left,
			"duration_ms": rec.Duration.Milliseconds(),
		})
		outs = append(outs, output{opts.fillOut, func(w io.Writer) error {
			_, err := snap.WriteTo(w)
			return err
		}})
	}

	if opts.postOut != "" {
		outs = append(outs, output{opts.postOut, func(w io.Writer) error { return report.WritePost(w, snap) }})
	}
	if opts.summaryOut != "" {
		outs = append(outs, output{opts.summaryOut, func(w io.Writer) error { return report.WriteSummary(w, snap, after) }})
	}
	if opts.signOut != "" {
		outs = append(outs, output{opts.signOut, func(w io.Writer) error { return report.WriteSignSheet(w, snap, after) }})
	}
	return writeOutputs(outs)
}

type output struct {
	path   string
	render func(io.Writer) error
}

// writeOutputs renders every output into memory before writing any, so a
// failed render leaves no files behind.
func writeOutputs(outs []output) error {
	bufs := make([]bytes.Buffer, len(outs))
	for i, o := range outs {
		if err := o.render(&bufs[i]); err != nil {
			return fmt.Errorf("%s: %w", o.path, err)
		}
	}
	for i, o := range outs {
		if err := os.WriteFile(o.path, bufs[i].Bytes(), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// writeMetrics stores one pass in the text exposition format, for the
// node_exporter textfile collector.
func writeMetrics(path string, run metrics.FillRun) error {
	if path == "" {
		return nil
	}
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewPromRecorder(reg)
	if err != nil {
		return err
	}
	rec.RecordFill(run)
	return prometheus.WriteToTextfile(path, reg)
}

// loadRegistry reads the roster named on the command line, or the one
// configured under roster.
func loadRegistry(cfg *config.Config, path string) (*roster.Registry, error) {
	source := cfg.Roster.Source
	if path != "" {
		source = config.SourceFor(path)
	} else {
		path = cfg.Roster.Path
	}
	if source == "db" {
		db, err := database.InitDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		return database.LoadRoster(db)
	}
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	return roster.Build(rows)
}

func readRows(path string) ([]models.Registration, error) {
	if path == "" {
		return nil, fmt.Errorf("missing registration roster, use --roster")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".xlsx") || strings.EqualFold(filepath.Ext(path), ".xlsm") {
		return roster.ReadXLSX(f)
	}
	return roster.ReadCSV(f)
}
