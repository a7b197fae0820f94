package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"parcelflow/auth"
	"parcelflow/config"
	"parcelflow/db"
	"parcelflow/httpapi"
	"parcelflow/job"
	"parcelflow/locker"
	"parcelflow/user"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("api: exited")
	}
}

func run() error {
	configPath := flag.String("config", "parcelflow.yml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := user.NewRepository(pool)
	jobRepo := job.NewRepository(pool)
	lockerRepo := locker.NewRepository(pool)

	reputation := user.NewReputationService(userRepo, jobRepo)
	jobService := job.NewService(jobRepo, reputation)
	authService := auth.NewService(userRepo, auth.SimulatedVerifier{}, cfg.JWTSecret)
	lockerService := locker.NewService(lockerRepo)

	api := httpapi.NewServer(log, jobService, authService, lockerService)

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.Listen).Info("api: listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("api: shutting down")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
