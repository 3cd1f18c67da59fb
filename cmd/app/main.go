package main

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tictacgo/internal/app"
	"tictacgo/internal/cli"
	"tictacgo/internal/config"
	httpServer "tictacgo/internal/http"
	"tictacgo/internal/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("open client state failed", "backend", cfg.StoreBackend, "error", err)
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		logger.Warn("restore session failed", "error", err)
	}
	logger.Info("client started", "api", cfg.APIBaseURL, "ws", cfg.WSBaseURL, "store", cfg.StoreBackend)

	shell := cli.NewShell(a, os.Stdout)
	g, gctx := errgroup.WithContext(ctx)

	// stdin stays outside the group: a blocked read cannot be interrupted
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-gctx.Done():
				return
			}
		}
	}()

	g.Go(func() error {
		defer stop()
		return shell.Run(gctx, lines)
	})
	g.Go(func() error {
		return shell.Render(gctx)
	})

	if cfg.StatusAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		r := gin.New()
		r.Use(gin.Recovery())
		httpServer.RegisterRoutes(r, a, version)

		srv := &http.Server{
			Addr:    cfg.StatusAddr,
			Handler: r,
		}

		g.Go(func() error {
			logger.Info("status server started", "addr", cfg.StatusAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("client stopped with error", "error", err)
	}
	logger.Info("client exited")
}
