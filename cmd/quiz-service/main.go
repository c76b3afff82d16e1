package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/config"
	"trivia-quiz/internal/httpapi"
	"trivia-quiz/internal/quiz"
)

const (
	releaseVersion = "1.0.0"
	timeout        = 10 * time.Second
	writeTimeout   = time.Minute
)

func main() {
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cobra.CheckErr(newCmd(config.Default()).ExecuteContext(ctx))
}

func newCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "quiz-service",
		Short:         "Serve trivia quiz sessions over HTTP.",
		Args:          cobra.NoArgs,
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ValidateService(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	cfg.RegisterFlags(fs)
	cfg.RegisterServiceFlags(fs)
	cobra.CheckErr(config.BindEnv(fs))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("quiz-service v{{.Version}}\n")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	deps, err := app.New(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer deps.Close()

	logger := deps.Logger
	logger.Printf("START: quiz-service v%s", releaseVersion)

	manager := quiz.NewManager(deps.Source, cfg.SessionTimeout)
	go manager.Run(ctx)

	api := httpapi.NewAPI(httpapi.Config{
		Manager:    manager,
		Profiles:   deps.Profiles,
		Categories: deps.Categories,
		Encoding:   cfg.EncodingValue(),
		Logger:     logger,
		PublicURL:  cfg.PublicURL,
		Version:    releaseVersion,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpapi.NewRouter(api),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		// Session creation may spend several backoff rounds before falling back.
		WriteTimeout: writeTimeout,
	}
	srv.RegisterOnShutdown(api.Shutdown)

	errs := make(chan error, 1)
	go func() {
		logger.Printf("SERVE: Listening on http://%s/", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logger.Printf("STOP: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
