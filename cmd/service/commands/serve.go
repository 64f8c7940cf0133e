package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kmviz/core/api"
	"kmviz/core/dataset"
	"kmviz/core/logutil"
	"kmviz/core/session"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the HTTP API.

  GET  /get_data, /new_data           shared data set
  POST /api/sessions                  new session {k, strategy, data?}
  POST /api/sessions/:id/step         one step
  GET  /api/sessions/:id/stream       websocket, one snapshot per step

Stops gracefully on SIGINT / SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := globalConfig
		if serveAddr != "" {
			c.API.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		l := logutil.GetGlobalLogger()
		defer l.Sync()

		err := api.Start(ctx, api.APIConfig{
			Addr:         c.API.Addr,
			ReadTimeout:  c.API.ReadTimeout.Std(),
			WriteTimeout: c.API.WriteTimeout.Std(),
			StepDelay:    c.API.StepDelay.Std(),
			MaxSteps:     c.KMeans.MaxSteps,
			Defaults:     c.KMeansConfig(),
			Source: dataset.NewSource(dataset.SourceConfig{
				Size: c.Data.Size,
				Min:  c.Data.Min,
				Max:  c.Data.Max,
				Seed: c.Data.Seed,
			}),
			Table: session.NewTable(c.KMeansOptions()...),
			L:     l,
		})
		if err != nil {
			return err
		}
		l.Info("api stopped", zap.String("addr", c.API.Addr))
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides api.addr of the config")
}
