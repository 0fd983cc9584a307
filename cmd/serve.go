package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	apix "github.com/tanpawarit/omega-summarizer/agent/api"
	llmx "github.com/tanpawarit/omega-summarizer/agent/llm"
	configx "github.com/tanpawarit/omega-summarizer/pkg/config"
)

type serverConfig struct {
	Addr         string   `envconfig:"HTTP_ADDR" default:":8080"`
	AllowOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
}

func serveCMD() *cobra.Command {
	var addr string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			srvCfg, err := configx.New[serverConfig]("")
			if err != nil {
				return err
			}
			if addr != "" {
				srvCfg.Addr = addr
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			httpServer := &http.Server{
				Addr: srvCfg.Addr,
				Handler: apix.NewRouter(a.handler, apix.Config{
					Models:       llmx.DecisionModels,
					DefaultModel: a.llm.DefaultDecisionModel(),
					AllowOrigins: srvCfg.AllowOrigins,
				}),
				ReadTimeout:  60 * time.Second,
				WriteTimeout: 10 * time.Minute,
				IdleTimeout:  120 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				log.Info().Msg("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("graceful shutdown")
				}
			}()

			log.Info().Str("addr", srvCfg.Addr).Msg("omega-summarizer listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")

	return serve
}
