package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/wiki-exporter/internal/config"
	"github.com/jonathan/wiki-exporter/internal/event"
	"github.com/jonathan/wiki-exporter/internal/export"
	"github.com/jonathan/wiki-exporter/internal/github"
	"github.com/jonathan/wiki-exporter/internal/jobs"
	"github.com/jonathan/wiki-exporter/internal/pipeline"
	"github.com/jonathan/wiki-exporter/internal/repository"
	"github.com/jonathan/wiki-exporter/internal/server"
	"github.com/jonathan/wiki-exporter/internal/storage"
	"github.com/jonathan/wiki-exporter/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that accepts export jobs and runs them in the background.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	pool, err := repository.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	if err := repository.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	jobRepo := repository.NewPostgresJobRepository(pool)
	fileRepo := repository.NewPostgresFileRepository(pool)

	blobs, err := storage.NewMinioStorage(ctx, cfg.Minio)
	if err != nil {
		return fmt.Errorf("failed to connect to object storage: %w", err)
	}

	var publisher event.Publisher
	if cfg.RedisURL != "" {
		redisPub, err := event.NewRedisPublisher(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		publisher = redisPub
	} else {
		log.Warn("REDIS_URL not set, events will only be logged")
		publisher = event.LogPublisher{Log: log}
	}

	source := github.NewClient(github.ClientOptions{Token: cfg.GitHubToken, Log: log})
	service := jobs.NewService(jobRepo, fileRepo, blobs, publisher, log)
	processor := pipeline.NewProcessor(pipeline.Options{
		Source: source,
		Renderers: []export.Renderer{
			export.MarkdownRenderer{},
			export.PDFRenderer{ChromeDisabled: cfg.DisableChrome, Log: log},
			export.EPUBRenderer{Log: log},
		},
		Jobs:      jobRepo,
		Files:     fileRepo,
		Storage:   blobs,
		Publisher: publisher,
		Log:       log,
	})
	dispatcher := worker.NewDispatcher(service, processor, int64(cfg.MaxConcurrentJobs), log)

	srv := server.New(server.Config{Host: cfg.Host, Port: cfg.Port}, service, dispatcher, log)
	if err := srv.Start(); err != nil {
		return err
	}

	// Let in-flight pipeline runs finish before the process exits.
	dispatcher.Wait()
	return nil
}
