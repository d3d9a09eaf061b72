package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pqms/internal/bootstrap"
	"pqms/internal/bootstrap/logging"
	"pqms/internal/errs"
	"pqms/internal/usecase/quality"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect execution progress",
}

var progressExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the progress aggregate of a process sheet",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *quality.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		sheetID, _ := cmd.Flags().GetUint64("process-sheet")
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		format = strings.ToLower(strings.TrimSpace(format))
		if format == "" {
			format = "json"
		}
		if !isProgressExportFormat(format) {
			return fmt.Errorf("unsupported format %q (expected: json, jsonl, yaml or toml)", format)
		}

		progress, err := svc.ProcessSheetProgress(ctx, sheetID)
		if err != nil {
			logging.Error(ctx, "load process sheet progress failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "load process sheet progress")
		}

		payload, err := marshalProgressExport(progress, format)
		if err != nil {
			return err
		}

		writer, closeFn, err := resolveExportWriter(cmd, outPath)
		if err != nil {
			return err
		}
		if _, err := writer.Write(payload); err != nil {
			_ = closeFn()
			return errs.Wrap(err, "write progress export output")
		}
		if err := closeFn(); err != nil {
			return errs.Wrap(err, "close progress export output")
		}

		logging.Info(ctx, "progress exported",
			slog.Uint64("process_sheet_id", sheetID),
			slog.String("format", format),
			slog.Int("executions", len(progress.Executions)),
		)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.AddCommand(progressExportCmd)

	progressExportCmd.Flags().Uint64("process-sheet", 0, "Process sheet id")
	progressExportCmd.Flags().String("format", "json", "Output format: json|jsonl|yaml|toml")
	progressExportCmd.Flags().String("out", "", "Output file path (default: stdout)")
	_ = progressExportCmd.MarkFlagRequired("process-sheet")
}

func isProgressExportFormat(format string) bool {
	switch format {
	case "json", "jsonl", "yaml", "toml":
		return true
	default:
		return false
	}
}

// marshalProgressExport encodes the aggregate. jsonl writes one execution summary per line.
func marshalProgressExport(progress quality.ProcessSheetProgress, format string) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "json", "jsonl":
		encoder := json.NewEncoder(&buf)
		encoder.SetEscapeHTML(false)
		if format == "json" {
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(progress); err != nil {
				return nil, errs.Wrap(err, "encode progress as json")
			}
			break
		}
		for _, summary := range progress.Executions {
			if err := encoder.Encode(summary); err != nil {
				return nil, errs.Wrap(err, "encode progress as jsonl")
			}
		}
	case "yaml":
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(progress); err != nil {
			return nil, errs.Wrap(err, "encode progress as yaml")
		}
		if err := encoder.Close(); err != nil {
			return nil, errs.Wrap(err, "flush yaml encoder")
		}
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(progress); err != nil {
			return nil, errs.Wrap(err, "encode progress as toml")
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	return buf.Bytes(), nil
}

func resolveExportWriter(cmd *cobra.Command, outPath string) (io.Writer, func() error, error) {
	trimmed := strings.TrimSpace(outPath)
	if trimmed == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	f, err := os.Create(trimmed)
	if err != nil {
		return nil, nil, errs.Wrapf(err, "open output file %q", trimmed)
	}
	return f, f.Close, nil
}
