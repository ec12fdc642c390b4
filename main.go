package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	handlers "github.com/rishugupta23/word-guessing-game/api"
	"github.com/rishugupta23/word-guessing-game/config"
	"github.com/rishugupta23/word-guessing-game/db"
	"github.com/rishugupta23/word-guessing-game/logger"
	"github.com/rishugupta23/word-guessing-game/logic"
	"github.com/rishugupta23/word-guessing-game/telemetry"
	"github.com/rishugupta23/word-guessing-game/terminal"
	"github.com/rishugupta23/word-guessing-game/words"
)

const (
	pruneEvery      = 10 * time.Minute
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load(".env", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger.EnableLogging(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Terminal {
		err = runTerminal(ctx)
	} else {
		err = runServer(ctx, cfg)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runTerminal(ctx context.Context) error {
	// log lines would scribble over the screen
	logger.SetOutput(io.Discard)

	picker, err := words.NewDefaultPicker()
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	return terminal.New(screen, logic.NewGameEngine(picker)).Run(ctx)
}

func runServer(ctx context.Context, cfg *config.Config) error {
	shutdownTracing, err := telemetry.Setup(ctx, "wordguess", cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Error("otel shutdown: %v", err)
		}
	}()

	picker, err := words.NewDefaultPicker()
	if err != nil {
		return err
	}

	store, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions := handlers.NewSessions(picker, store)
	go sessions.RunPruner(ctx, cfg.SessionTTL, pruneEvery)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.NewRouter(handlers.NewHandler(sessions)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running at %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
