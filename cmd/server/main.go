package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsgate/fsgate/internal/config"
	"github.com/fsgate/fsgate/internal/logging"
	"github.com/fsgate/fsgate/internal/server"
)

func main() {
	flags, err := config.ParseFlags("fsgate", os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	resolver := config.NewResolver(flags)
	resolution := resolver.Resolve()

	logger, err := buildLogger(flags, resolution.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	srv, err := server.NewServer(server.Config{
		Host:     flags.Host,
		Port:     flags.Port,
		Resolver: resolver,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}

func buildLogger(flags *config.Flags, settings config.LogSettings) (*logging.Logger, error) {
	if flags.Dev {
		return logging.New(logging.DevelopmentConfig())
	}
	cfg := logging.DefaultConfig()
	cfg.Level = settings.Level
	switch settings.Destination {
	case "stderr":
		cfg.OutputPaths = []string{"stderr"}
	case "file":
		cfg = logging.FileConfig(settings.Level, settings.File)
	}
	return logging.New(cfg)
}
