package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/theirongolddev/finproj/internal/export"
	"github.com/theirongolddev/finproj/internal/projection"

	"github.com/spf13/cobra"
)

var flagFormat string

var exportCmd = &cobra.Command{
	Use:   "export [PATH]",
	Short: "Write the projection to CSV, JSON or SQLite",
	Long: "Write the month-by-month projection to a file. The format comes from --format,\n" +
		"then the file extension, then the config default. Without PATH a timestamped\n" +
		"file is written to the configured export directory.",
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "Output format: csv, json or sqlite")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sc, err := resolveScenario(cmd, cfg)
	if err != nil {
		return err
	}
	input, err := projectionInput(sc)
	if err != nil {
		return err
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	format, err := exportFormat(path, flagFormat, cfg.Export.Format)
	if err != nil {
		return err
	}
	if path == "" {
		path = filepath.Join(cfg.Export.Dir, export.DefaultFilename(format, time.Now()))
	}

	res, err := projection.Project(input)
	if err != nil {
		return err
	}
	if err := export.WriteFile(path, format, export.NewRun(input, res)); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "  Exported %d months to %s (%s)\n", len(res.Records), path, format)
	return nil
}

// exportFormat picks the explicit flag, then the path extension, then the
// configured default.
func exportFormat(path, flag, fallback string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if path != "" {
		if f, err := export.DetectFormat(path); err == nil {
			return f, nil
		}
	}
	return export.ParseFormat(fallback)
}
