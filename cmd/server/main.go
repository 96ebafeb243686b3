package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"faqdesk/internal/bootstrap"
	"faqdesk/internal/pkg/logger"
	httptransport "faqdesk/internal/transport/http"
)

func main() {
	ctx := context.Background()

	// Configure logging before anything can log; the config file may still
	// change the env, so re-init once it is loaded.
	logger.Init(os.Getenv("APP_ENV"))

	app, err := bootstrap.New(ctx)
	if err != nil {
		logrus.Fatalf("bootstrap failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logrus.Warnf("close resources failed: %v", err)
		}
	}()

	logger.Init(app.Config.App.Env)

	router := httptransport.NewRouter(app)
	server := &http.Server{
		Addr:              app.Config.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logrus.Infof("server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	waitForShutdown(server)
}

func waitForShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Warnf("server shutdown failed: %v", err)
	}
}
