package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kmviz/cfg"
	"kmviz/core/dataset"
	"kmviz/core/eventloop"
	"kmviz/core/logutil"
	"kmviz/core/render"
	"kmviz/pkg/kmeans"
)

// runOptions are the flags of the run command.
type runOptions struct {
	k         int
	strategy  string
	centroids []string

	csvPath   string
	csvHeader bool
	xColumn   int
	yColumn   int

	dataSeed int64
	initSeed int64

	delay  time.Duration
	json   bool
	width  int
	height int
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Cluster a data set in the terminal",
	Long: `Cluster a data set in the terminal, rendering the initial centroids and
every step until convergence.

The data set is generated (data.* of the config) unless --csv is given. With
the manual strategy, centroids come from --centroid x,y (k times).

Examples:
  kmviz run -k 3 -s farthest --delay 300ms
  kmviz run -s manual -k 2 --centroid 0,0 --centroid 10,10
  kmviz run --csv points.csv --header --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var in io.Reader
		if runOpts.csvPath != "" {
			f, err := os.Open(runOpts.csvPath)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		return runKMeans(ctx, cmd.OutOrStdout(), in, globalConfig, runOpts)
	},
}

func init() {
	f := runCmd.Flags()
	f.IntVarP(&runOpts.k, "k", "k", 0, "cluster count (default kmeans.k of the config)")
	f.StringVarP(&runOpts.strategy, "strategy", "s", "", "manual, random, farthest or kmeans++ (default kmeans.strategy of the config)")
	f.StringArrayVar(&runOpts.centroids, "centroid", nil, "manual centroid as x,y, repeatable")
	f.StringVar(&runOpts.csvPath, "csv", "", "read points from a CSV file")
	f.BoolVar(&runOpts.csvHeader, "header", false, "skip the first CSV row")
	f.IntVar(&runOpts.xColumn, "x-column", 0, "CSV column of x")
	f.IntVar(&runOpts.yColumn, "y-column", 1, "CSV column of y")
	f.Int64Var(&runOpts.dataSeed, "data-seed", 0, "seed of the generated data set (default data.seed of the config)")
	f.Int64Var(&runOpts.initSeed, "seed", 0, "seed for centroid initialization, 0 seeds from time")
	f.DurationVar(&runOpts.delay, "delay", 0, "pause between steps (default api.stepDelay of the config, 0 with --json)")
	f.BoolVar(&runOpts.json, "json", false, "one JSON line per step instead of a plot")
	f.IntVar(&runOpts.width, "width", 60, "plot width in cells")
	f.IntVar(&runOpts.height, "height", 20, "plot height in cells")
}

// parsePoint parses "x,y".
func parsePoint(s string) (kmeans.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return kmeans.Point{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return kmeans.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return kmeans.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return kmeans.Point{X: x, Y: y}, nil
}

// runKMeans clusters the data set from csv (generated if nil) and renders
// every step onto out.
func runKMeans(ctx context.Context, out io.Writer, csv io.Reader, c cfg.Config, o runOptions) error {
	kcfg := c.KMeansConfig()
	if o.k != 0 {
		kcfg.K = o.k
	}
	if o.strategy != "" {
		s, err := kmeans.ParseStrategy(o.strategy)
		if err != nil {
			return err
		}
		kcfg.Strategy = s
	}

	var ds kmeans.DataSet
	if csv != nil {
		var err error
		ds, err = dataset.ReadCSV(csv, dataset.CSVOptions{
			XColumn: o.xColumn,
			YColumn: o.yColumn,
			Header:  o.csvHeader,
		})
		if err != nil {
			return err
		}
	} else {
		seed := c.Data.Seed
		if o.dataSeed != 0 {
			seed = o.dataSeed
		}
		ds = dataset.Uniform(c.Data.Size, c.Data.Min, c.Data.Max, seed)
	}

	opts := c.KMeansOptions()
	if o.initSeed != 0 {
		opts = append(opts, kmeans.WithSeed(o.initSeed))
	}
	e, err := kmeans.NewEngine(ds, kcfg, opts...)
	if err != nil {
		return err
	}
	if kcfg.Strategy == kmeans.Manual {
		if len(o.centroids) != kcfg.K {
			return fmt.Errorf("manual strategy: want %d --centroid flags, got %d", kcfg.K, len(o.centroids))
		}
		for _, s := range o.centroids {
			p, err := parsePoint(s)
			if err != nil {
				return err
			}
			if err := e.AddManualCentroid(p); err != nil {
				return err
			}
		}
	}

	var r kmeans.Renderer
	delay := c.API.StepDelay.Std()
	if o.json {
		r = render.NewJSONLines(out)
		delay = 0
	} else {
		r = render.NewScatter(out, o.width, o.height)
	}
	if o.delay != 0 {
		delay = o.delay
	}

	if err := r.Render(e.Snapshot()); err != nil {
		return err
	}

	l := logutil.GetGlobalLogger()
	res := eventloop.Run(ctx, eventloop.EventLoopConfig{
		TimeoutStep: delay,
		MaxSteps:    c.KMeans.MaxSteps,
		L:           eventloop.NewZapLogger(l),
	}, e, r.Render)
	if res.Err != nil {
		return res.Err
	}
	l.Info("done",
		zap.Int("points", len(ds)),
		zap.Int("k", kcfg.K),
		zap.Int("steps", res.Snapshot.StepCount),
	)
	return nil
}
