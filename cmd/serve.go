package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tanpawarit/hitl-purchase-agent/agent/executor"
	"github.com/tanpawarit/hitl-purchase-agent/agent/interpreter"
	llmx "github.com/tanpawarit/hitl-purchase-agent/agent/llm"
	"github.com/tanpawarit/hitl-purchase-agent/agent/proposer"
	"github.com/tanpawarit/hitl-purchase-agent/api"
	configx "github.com/tanpawarit/hitl-purchase-agent/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat and execute HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	app, err := configx.New[AppConfig]("")
	if err != nil {
		return err
	}
	llmCfg, err := configx.New[llmx.Config]("LLM")
	if err != nil {
		return err
	}

	b, err := openBackend(ctx, *app)
	if err != nil {
		return err
	}
	defer b.Close()

	seeded, err := seedMemoryCatalog(ctx, *app, b)
	if err != nil {
		return err
	}
	if seeded > 0 {
		logger.Info().Int("n", seeded).Msg("seeded in-memory catalog")
	}

	p, err := proposer.New(ctx, *llmCfg)
	if err != nil {
		return err
	}
	interp, err := interpreter.New(p, b.store, interpreter.WithLogger(logger))
	if err != nil {
		return err
	}
	exec, err := executor.New(b.store, executor.WithLogger(logger))
	if err != nil {
		return err
	}

	opts := []api.Option{api.WithLogger(logger)}
	if b.db != nil {
		opts = append(opts, api.WithHealthCheck(b.db))
	}
	srv, err := api.NewServer(interp, exec, b.transcript, opts...)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    app.HTTPAddr,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", app.HTTPAddr).
			Str("store", app.StoreDriver).
			Str("transcript", app.TranscriptDriver).
			Str("llm_backend", string(llmCfg.Backend)).
			Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
