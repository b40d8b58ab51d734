package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/recruit-matcher/internal/api"
	"github.com/spigell/recruit-matcher/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matching API over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		if err := runServe(cmd); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDeps(ctx, true)
	if err != nil {
		return err
	}
	defer d.Close()

	explainer, err := newExplainer(ctx, d.config.AI, d.logger)
	if err != nil {
		d.logger.Warn("serving without explanations", zap.Error(err))
		explainer = nil
	}

	registry := session.NewRegistry(d.config.Session.TTL, d.logger)
	if err := registry.Start(d.config.Session.SweepSchedule); err != nil {
		return err
	}
	defer registry.Stop()

	explainTop := 0
	if d.config.AI != nil {
		explainTop = d.config.AI.ExplainTop
	}

	server := api.New(api.Deps{
		Dataset:        d.dataset,
		Engine:         d.engine,
		Sessions:       registry,
		Shortlist:      d.shortlist,
		Explainer:      explainer,
		SessionOptions: d.sessionOptions(),
		ExplainTop:     explainTop,
		Logger:         d.logger,
	})

	d.logger.Info("starting the recruit-matcher api", zap.String("version", version))
	return server.ListenAndServe(ctx, d.config.Server.Addr)
}
