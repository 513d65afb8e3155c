package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"statdash/adapters/tabular"
	"statdash/internal"
	"statdash/internal/analysis"
	"statdash/internal/errors"
	"statdash/internal/presentation"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	inputFile   string
	procedure   string
	columns     []string
	mu          float64
	charts      []string
	swapAxes    bool
	encoding    string
	delimiter   string
	inputFormat string
	outFormat   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one procedure on a file and print the result",
	Example: `  statdash analyze --file scores.csv --procedure welch_ttest --columns before,after
  statdash analyze --file data.xlsx --procedure descriptive --columns height --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := readOptions()
		if err != nil {
			return err
		}
		t, err := tabular.ReadFile(inputFile, opts)
		if err != nil {
			return err
		}

		req := analysis.Request{
			Procedure: analysis.Procedure(procedure),
			Columns:   columns,
			Mu:        mu,
			Charts:    charts,
			SwapAxes:  swapAxes,
		}
		a, err := analysis.NewEngine(internal.DefaultLogger).Run(t, req)
		if err != nil {
			return err
		}
		return writePresentation(cmd.OutOrStdout(), presentation.Present(a, presentation.Options{}), outFormat)
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&inputFile, "file", "f", "", "CSV or XLSX file to analyze")
	f.StringVarP(&procedure, "procedure", "p", "", "procedure: "+procedureNames())
	f.StringSliceVarP(&columns, "columns", "c", nil, "columns to use, comma separated")
	f.Float64Var(&mu, "mu", 0, "hypothesised mean for the one-sample t-test")
	f.StringSliceVar(&charts, "charts", nil, "chart kinds for the charts procedure")
	f.BoolVar(&swapAxes, "swap-axes", false, "swap the covariance scatter axes")
	f.StringVar(&outFormat, "format", "text", "output format: text, json or yaml")
	addReadFlags(analyzeCmd)
	_ = analyzeCmd.MarkFlagRequired("file")
	_ = analyzeCmd.MarkFlagRequired("procedure")
	rootCmd.AddCommand(analyzeCmd)
}

func addReadFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&encoding, "encoding", "", "text encoding: utf-8 or latin-1 (default DEFAULT_ENCODING)")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "field delimiter; empty sniffs it, \"tab\" for tabs")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "csv or xlsx (default from the file extension)")
}

func readOptions() (tabular.Options, error) {
	enc := encoding
	if enc == "" {
		enc = cfg.Data.DefaultEncoding
	}
	opts := tabular.Options{
		Encoding: enc,
		Format:   inputFormat,
		MaxRows:  cfg.Data.MaxRows,
	}
	switch delimiter {
	case "":
	case "tab", `\t`:
		opts.Delimiter = '\t'
	default:
		if utf8.RuneCountInString(delimiter) != 1 {
			return opts, errors.InvalidInput(fmt.Sprintf("delimiter %q must be a single character", delimiter))
		}
		opts.Delimiter, _ = utf8.DecodeRuneInString(delimiter)
	}
	return opts, nil
}

func procedureNames() string {
	names := make([]string, len(analysis.Procedures))
	for i, p := range analysis.Procedures {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func writePresentation(w io.Writer, p *presentation.Presentation, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		_, err := io.WriteString(w, p.Markdown)
		for _, warn := range p.Warnings {
			fmt.Fprintf(w, "warning: %s\n", warn)
		}
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(p)
	default:
		return errors.InvalidInput(fmt.Sprintf("unknown output format %q", format))
	}
}
