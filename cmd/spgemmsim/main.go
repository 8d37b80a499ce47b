// Command spgemmsim drives the SpGEMM accelerator simulator end to end:
// load configuration and a workload, optionally reorder A's rows, run
// the selected dataflow variant through either execution driver, and
// print the console report. Flag registration and the pretty-table
// output follow ja7ad-consumption/cmd/consumption/main.go's cobra
// pattern.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/RuiPMaia/spada-sim/internal/accelerator"
	"github.com/RuiPMaia/spada-sim/internal/cache"
	"github.com/RuiPMaia/spada-sim/internal/config"
	"github.com/RuiPMaia/spada-sim/internal/engine"
	"github.com/RuiPMaia/spada-sim/internal/loader"
	"github.com/RuiPMaia/spada-sim/internal/preprocess"
	"github.com/RuiPMaia/spada-sim/internal/report"
	"github.com/RuiPMaia/spada-sim/internal/result"
	"github.com/RuiPMaia/spada-sim/internal/sched"
	"github.com/RuiPMaia/spada-sim/internal/storage"
	"github.com/RuiPMaia/spada-sim/internal/telemetry"
)

type opts struct {
	configuration string
	workload      string
	category      string
	simulator     string
	acceleratorN  string
	preprocessN   string
	verbose       bool
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "spgemmsim",
		Short: "Cycle-approximate SpGEMM accelerator simulator",
		Long: `spgemmsim simulates a sparse-sparse matrix multiplication accelerator:
a fixed or adaptive block/window scheduler feeds A-element/B-fiber reads
through a shared LRU fiber cache, executing normal-mode accumulate and
merge-mode reduce tasks across pe_num PE slots, then reports traffic and
cache counters alongside the final product.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
	}

	root.Flags().StringVar(&o.configuration, "configuration", "", "path to the simulator configuration file (required)")
	root.Flags().StringVar(&o.workload, "workload", "", "matrix name within the bundled corpus (required)")
	root.Flags().StringVar(&o.category, "category", "NN", "workload category: NN or SS")
	root.Flags().StringVar(&o.simulator, "simulator", "traffic", "execution driver: traffic (round-granular) or accurate (cycle-granular)")
	root.Flags().StringVar(&o.acceleratorN, "accelerator", "Ip", "dataflow variant: Ip, Op, Omega, NewOmega, MultiRow, Spada")
	root.Flags().StringVar(&o.preprocessN, "preprocess", "", "row-reordering strategy: length or affinity (unset disables preprocessing)")
	root.Flags().BoolVar(&o.verbose, "verbose", false, "log at debug level")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(o opts) error {
	if o.configuration == "" {
		return fmt.Errorf("--configuration is required")
	}
	if o.workload == "" {
		return fmt.Errorf("--workload is required")
	}

	level := logrus.InfoLevel
	if o.verbose {
		level = logrus.DebugLevel
	}
	log := telemetry.NewLogrus(level)

	cfg, err := config.Load(o.configuration)
	if err != nil {
		return err
	}

	variant, ok := accelerator.ParseVariant(o.acceleratorN)
	if !ok {
		return fmt.Errorf("unknown --accelerator %q", o.acceleratorN)
	}

	category, ok := loader.ParseCategory(o.category)
	if !ok {
		return fmt.Errorf("unknown --category %q", o.category)
	}
	dir := cfg.NNFilepath
	if category == loader.SS {
		dir = cfg.SSFilepath
	}
	pair, err := loader.Load(dir, o.workload, category)
	if err != nil {
		return err
	}
	a, b := pair.A, pair.B

	if o.preprocessN != "" {
		strategy, ok := preprocess.ParseStrategy(o.preprocessN)
		if !ok {
			return fmt.Errorf("unknown --preprocess %q", o.preprocessN)
		}
		a = preprocess.Reorder(a, strategy)
		log.WithField("strategy", o.preprocessN).Infof("reordered A's rows")
	}

	psum := storage.NewPsumStore(int64(b.Rows))

	var (
		s   *sched.Scheduler
		c   *cache.FiberCache
		res *engine.Result
	)
	if variant.Oracle() {
		s, c, res, _, err = engine.RunOracle(a, b, psum, engine.OracleParams{
			CacheSize: cfg.CacheSize,
			WordByte:  cfg.WordByte,
			LaneNum:   cfg.LaneNum,
			PeNum:     cfg.PeNum,
			VarFactor: cfg.VarFactor,
		}, log)
		if err != nil {
			return err
		}
	} else {
		s = sched.New(a, psum, variant, cfg.LaneNum, cfg.BlockShape, cfg.VarFactor)
		c = cache.New(cfg.CacheSize, cfg.WordByte, int64(b.Rows), b, psum, log)

		driver, derr := buildDriver(o.simulator, s, c, psum, cfg, log)
		if derr != nil {
			return derr
		}
		res, err = driver.Run()
		if err != nil {
			return err
		}
	}

	rows, err := result.Assemble(a, s.Output.Outputs, c, psum)
	if err != nil {
		return err
	}

	rep := &report.Report{
		Matrices: []report.MatrixCounts{
			report.MatrixCountsOf("A", a),
			report.MatrixCountsOf("B", b),
		},
		Cache:  c,
		Result: res,
		Rows:   rows,
	}
	rep.Write(os.Stdout)
	return nil
}

func buildDriver(name string, s *sched.Scheduler, c *cache.FiberCache, psum *storage.PsumStore, cfg *config.Config, log telemetry.Logger) (engine.Driver, error) {
	switch name {
	case "", "traffic":
		return engine.NewTrafficModel(s, c, psum, cfg.PeNum, log), nil
	case "accurate":
		return engine.NewAccurateSimu(s, c, psum, cfg.PeNum, log, engine.LatencyParams{
			MemLatency:          cfg.MemLatency,
			CacheLatency:        cfg.CacheLatency,
			Channel:             cfg.Channel,
			BandwidthPerChannel: cfg.BandwidthPerChannel,
			AtNum:               cfg.AtNum,
		}), nil
	default:
		return nil, fmt.Errorf("unknown --simulator %q", name)
	}
}
