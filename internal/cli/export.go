package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/corhyn/internal/export"
)

func (a *app) exportCmd() *cobra.Command {
	var format, period, date string
	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Export time entries to CSV, JSON or YAML",
		Long: `Export time entries, oldest first. The format is taken from --format, then
from the file extension, then from export.format in the config.`,
		Example: `  corhyn export entries.csv
  corhyn export march.json --period month --date 2026-03-01`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if format == "" {
				format = export.FormatFromPath(path, a.cfg.Export.Format)
			}
			sink, err := export.ForFormat(format)
			if err != nil {
				return err
			}
			filter, err := a.bucket(period, date)
			if err != nil {
				return err
			}
			n, err := a.stats.ExportEntries(path, sink, filter)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", n, path)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: csv, json or yaml")
	cmd.Flags().StringVar(&period, "period", "", "Only entries in this period: day, week, month or year")
	cmd.Flags().StringVar(&date, "date", "", "Reference date for --period (YYYY-MM-DD)")
	return cmd
}
