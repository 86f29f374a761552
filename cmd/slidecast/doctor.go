package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/amankumarsingh77/slidecast/internal/server"
	"github.com/amankumarsingh77/slidecast/internal/tools"
	"github.com/spf13/cobra"
)

var errMissingTools = errors.New("required tools are missing")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that marp, edge-tts, ffmpeg and ffprobe are installed",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg, appLogger, err := loadApp()
	if err != nil {
		return err
	}
	report := tools.Diagnose(cmd.Context(), server.NewExportPipeline(cfg, appLogger).Tools()...)
	if err := printReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if report.HasFailures {
		return errMissingTools
	}
	return nil
}

func printReport(w io.Writer, report models.DependencyReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range report.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", item.Status, item.Name, item.Message)
	}
	return tw.Flush()
}
