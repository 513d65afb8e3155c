package cmd

import (
	"bytes"
	"os"

	"statdash/adapters/tabular"
	"statdash/internal"
	"statdash/internal/errors"
	"statdash/internal/render"

	"github.com/spf13/cobra"
)

var (
	reportColumns []string
	reportOut     string
	reportHead    int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the PDF chart grid for columns of a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := readOptions()
		if err != nil {
			return err
		}
		t, err := tabular.ReadFile(inputFile, opts)
		if err != nil {
			return err
		}
		cols := reportColumns
		if len(cols) == 0 {
			cols = t.Names()
		}

		var buf bytes.Buffer
		if err := render.NewRenderer().PDFGrid(&buf, t, cols, reportHead); err != nil {
			return err
		}
		if err := os.WriteFile(reportOut, buf.Bytes(), 0o644); err != nil {
			return errors.Wrapf(err, "failed to write report %s", reportOut)
		}
		internal.DefaultLogger.Info("[Report] wrote %s (%d columns)", reportOut, len(cols))
		return nil
	},
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&inputFile, "file", "f", "", "CSV or XLSX file")
	f.StringSliceVarP(&reportColumns, "columns", "c", nil, "columns to chart (default all)")
	f.StringVarP(&reportOut, "out", "o", "report.pdf", "output PDF path")
	f.IntVar(&reportHead, "head", 10, "values drawn in each line chart")
	addReadFlags(reportCmd)
	_ = reportCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(reportCmd)
}
