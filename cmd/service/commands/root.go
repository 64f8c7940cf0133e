package commands

import (
	"github.com/spf13/cobra"

	"kmviz/cfg"
	"kmviz/core/logutil"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Global configuration, loaded before any subcommand runs.
	globalConfig cfg.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kmviz",
	Short: "Step-wise 2-D k-means",
	Long: `kmviz - step-wise k-means clustering over 2-D points.

Every step (assign each point to its nearest centroid, move each centroid to
the mean of its cluster) is observable, either over the HTTP API or rendered
in the terminal.

Examples:
  # Serve the API on the configured address
  kmviz serve --config kmviz.yaml

  # Cluster 100 random points into 4 clusters, kmeans++ init
  kmviz run -k 4 -s kmeans++

  # Cluster a CSV file and print one JSON line per step
  kmviz run --csv points.csv --header --json
`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML), built-in defaults if empty")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
}

func initConfig(*cobra.Command, []string) error {
	c, err := cfg.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		c.Log.Level = "debug"
	}
	if _, err := logutil.Setup(c.Log); err != nil {
		return err
	}
	globalConfig = c
	return nil
}
