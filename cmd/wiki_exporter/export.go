package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/wiki-exporter/internal/event"
	"github.com/jonathan/wiki-exporter/internal/export"
	"github.com/jonathan/wiki-exporter/internal/github"
	"github.com/jonathan/wiki-exporter/internal/jobs"
	"github.com/jonathan/wiki-exporter/internal/model"
	"github.com/jonathan/wiki-exporter/internal/observability"
	"github.com/jonathan/wiki-exporter/internal/pipeline"
	"github.com/jonathan/wiki-exporter/internal/repository"
	"github.com/jonathan/wiki-exporter/internal/storage"
)

var (
	exportOutputDir string
	exportNoChrome  bool
	exportVerbose   bool
)

var exportCmd = &cobra.Command{
	Use:   "export <repository-url>",
	Short: "Export one repository's wiki to local files",
	Long:  `Run a single export synchronously, without a server or external services, and write the artifacts to a local directory.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOutputDir, "output", "exports", "Directory to write artifacts into")
	exportCmd.Flags().BoolVar(&exportNoChrome, "no-chrome", false, "Skip headless browser PDF rendering and emit styled HTML instead")
	exportCmd.Flags().BoolVar(&exportVerbose, "verbose", false, "Print per-checkpoint progress")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	if !exportVerbose {
		log.SetLevel(logrus.WarnLevel)
	}

	jobRepo, fileRepo := repository.NewMemory()
	blobs, err := storage.NewLocalStorage(exportOutputDir)
	if err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}
	publisher := event.LogPublisher{Log: log}

	source := github.NewClient(github.ClientOptions{Token: os.Getenv("GITHUB_TOKEN"), Log: log})
	service := jobs.NewService(jobRepo, fileRepo, blobs, publisher, log)
	processor := pipeline.NewProcessor(pipeline.Options{
		Source: source,
		Renderers: []export.Renderer{
			export.MarkdownRenderer{},
			export.PDFRenderer{ChromeDisabled: exportNoChrome, Log: log},
			export.EPUBRenderer{Log: log},
		},
		Jobs:      jobRepo,
		Files:     fileRepo,
		Storage:   blobs,
		Publisher: publisher,
		Log:       log,
	})

	ctx := cmd.Context()
	jobID, err := service.Create(ctx, args[0])
	if err != nil {
		return err
	}
	if err := service.Start(ctx, jobID); err != nil {
		return err
	}
	if err := processor.ProcessJob(ctx, jobID); err != nil {
		job, getErr := service.GetJob(ctx, jobID)
		if getErr == nil && job.Status == model.StatusFailed {
			return fmt.Errorf("export failed: %s", job.ErrorMessage)
		}
		return err
	}

	files, err := service.ListFiles(ctx, jobID)
	if err != nil {
		return err
	}
	if exportVerbose {
		printer := observability.NewPrinter(cmd.OutOrStdout())
		job, err := service.GetJob(ctx, jobID)
		if err != nil {
			return err
		}
		printer.PrintJobSummary(job)
		printer.PrintExportFiles(files)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Export complete:")
	for _, f := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\t%s\n", f.Format, filepath.Join(exportOutputDir, f.StoragePath))
	}
	return nil
}
