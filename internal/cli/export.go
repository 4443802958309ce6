package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/taskr/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write tasks to a CSV, JSON or XLSX file",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("format", "f", string(export.FormatCSV), "Output format: csv, json, xlsx")
	exportCmd.Flags().StringP("output", "o", "", "Output path (default taskr-export-<date>.<ext> in the current directory)")
}

func runExport(cmd *cobra.Command, args []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	path, _ := cmd.Flags().GetString("output")

	f, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	e, err := openEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	mgr, err := e.manager(context.Background())
	if err != nil {
		return userError(err)
	}

	if path == "" {
		path = export.DefaultPath(".", f, time.Now())
	}
	if err := export.Write(f, mgr.Tasks(), mgr.Stats(), path); err != nil {
		return err
	}
	e.log.Info().Str("format", string(f)).Str("path", path).Int("count", len(mgr.Tasks())).Msg("exported tasks")
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(mgr.Tasks()), path)
	return nil
}
