package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaronzipp/the-mole/internal/config"
	"github.com/aaronzipp/the-mole/internal/game"
	"github.com/aaronzipp/the-mole/internal/handlers"
	"github.com/aaronzipp/the-mole/internal/quiz"
	"github.com/aaronzipp/the-mole/internal/sse"
	"github.com/aaronzipp/the-mole/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, store.Options{
		Dialect:     store.Dialect(cfg.DBDialect),
		SQLitePath:  cfg.SQLitePath,
		PostgresDSN: cfg.PostgresDSNOrURL(),
	})
	if err != nil {
		return err
	}
	defer st.Close()

	bank, err := quiz.LoadDefault()
	if err != nil {
		return err
	}

	app := &handlers.Context{
		Hub:    sse.NewHub(cfg.Debug),
		Config: cfg,
	}
	app.Engine, err = game.New(st, bank,
		game.WithSettings(game.Settings{
			MinPlayers:        cfg.MinPlayers,
			QuestionsPerRound: cfg.QuestionsPerRound,
			QuizTarget:        cfg.QuizTarget,
			Debug:             cfg.Debug,
		}),
		game.WithOnChange(app.Notify),
	)
	if err != nil {
		return err
	}
	if err := app.Engine.Init(ctx); err != nil {
		return err
	}
	log.Printf("Loaded %d mini-games and %d quiz questions", len(app.Engine.Lineup()), bank.Len())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		// Event streams end with the process context so Shutdown can drain.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (db=%s)", cfg.Addr, st.Dialect())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
