package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/amankumarsingh77/slidecast/internal/config"
	exportRepository "github.com/amankumarsingh77/slidecast/internal/export/repository"
	exportUsecase "github.com/amankumarsingh77/slidecast/internal/export/usecase"
	"github.com/amankumarsingh77/slidecast/internal/jobs"
	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/amankumarsingh77/slidecast/internal/server"
	"github.com/amankumarsingh77/slidecast/internal/worker"
	"github.com/amankumarsingh77/slidecast/pkg/logger"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export one deck to MP4 and wait for the result",
	Long:  "Runs the export pipeline in-process, printing progress. Ctrl-C cancels at the next checkpoint.",
	RunE:  runExport,
}

var (
	exportPresentation string
	exportInput        string
	exportTheme        string
	exportVoice        string
	exportSpeed        float64
	exportDuration     float64
)

func init() {
	exportCmd.Flags().StringVarP(&exportPresentation, "presentation", "p", "", "Presentation id, used to name the output file (required)")
	exportCmd.Flags().StringVarP(&exportInput, "input", "i", "", "Path to the Marp markdown deck (required)")
	exportCmd.Flags().StringVar(&exportTheme, "theme", "", "Theme name or path to a .css theme")
	exportCmd.Flags().StringVar(&exportVoice, "voice", "", "edge-tts voice")
	exportCmd.Flags().Float64Var(&exportSpeed, "speed", 0, "Speech rate multiplier in [0.5, 2]")
	exportCmd.Flags().Float64Var(&exportDuration, "duration", 0, "Seconds per slide without narration, in [1, 30]")

	if err := exportCmd.MarkFlagRequired("presentation"); err != nil {
		panic(fmt.Sprintf("failed to mark presentation flag as required: %v", err))
	}
	if err := exportCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, appLogger, err := loadApp()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(exportInput)
	if err != nil {
		return fmt.Errorf("failed to read deck: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job, err := exportDeck(ctx, cfg, server.NewExportPipeline(cfg, appLogger), appLogger, cmd.OutOrStdout(), &models.ExportInput{
		PresentationID:  exportPresentation,
		Content:         string(content),
		Theme:           exportTheme,
		Voice:           exportVoice,
		Speed:           exportSpeed,
		DefaultDuration: exportDuration,
	})
	if err != nil {
		return err
	}
	switch job.Status {
	case models.JobStatusCompleted:
		fmt.Fprintf(cmd.OutOrStdout(), "Video written to %s\n", exportRepository.NewArtifactRepo(cfg, nil, appLogger).OutputPath(job.PresentationID))
		return nil
	case models.JobStatusCancelled:
		return fmt.Errorf("export %s was cancelled", job.JobID)
	default:
		return fmt.Errorf("export %s failed: %s", job.JobID, job.Error)
	}
}

// exportDeck submits input through the same use case as the HTTP API and
// blocks until the job is terminal. Cancelling ctx requests cancellation.
func exportDeck(ctx context.Context, cfg *config.Config, exporter worker.Exporter, log logger.Logger, out io.Writer, input *models.ExportInput) (*models.ExportJob, error) {
	registry := jobs.NewRegistry(cfg.Export.Retention).WithObserver(newProgressPrinter(out).Observe)
	executor := worker.NewUnbounded()
	artifacts := exportRepository.NewArtifactRepo(cfg, nil, log)
	history := exportRepository.NewExportRepo(nil)
	runner := worker.NewRunner(registry, exporter, executor, artifacts, history, log)
	exportUC := exportUsecase.NewExportUseCase(cfg, registry, runner, artifacts, history, nil, log)

	job, err := exportUC.SubmitExport(ctx, input)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			if _, err := exportUC.CancelJob(context.Background(), job.JobID); err == nil {
				fmt.Fprintln(out, "Cancelling...")
			}
		case <-done:
		}
	}()
	err = executor.Shutdown(context.Background())
	close(done)
	if err != nil {
		return nil, err
	}
	return exportUC.GetJob(context.Background(), job.JobID)
}

type progressPrinter struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out}
}

// Observe prints one line per visible change of the job.
func (p *progressPrinter) Observe(job models.ExportJob) {
	line := formatProgress(job)
	p.mu.Lock()
	defer p.mu.Unlock()
	if line == p.last {
		return
	}
	p.last = line
	fmt.Fprintln(p.out, line)
}

func formatProgress(job models.ExportJob) string {
	line := fmt.Sprintf("[%3d%%] %s", job.Progress, job.Stage)
	if job.Stage == "" {
		line = fmt.Sprintf("[%3d%%] %s", job.Progress, job.Status)
	}
	if job.TotalSlides > 0 && job.Phase == models.PhaseBuildingSegments {
		line += fmt.Sprintf(" (%d/%d)", job.ProcessedSlides, job.TotalSlides)
	}
	if job.Status == models.JobStatusFailed && job.Error != "" {
		line += ": " + job.Error
	}
	return line
}
