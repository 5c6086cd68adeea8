package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fdg312/fuel-planner/internal/exports"
	"github.com/fdg312/fuel-planner/internal/planner"
	"github.com/fdg312/fuel-planner/internal/plans"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fuelplan",
		Short:         "Weekly nutrition and hydration planner for adolescent athletes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newPlanCmd(), newTaperCmd(), newGroceryCmd(), newExportCmd())
	return root
}

// generate loads a YAML request file and builds its week. Generation does
// not touch storage.
func generate(path string) (*plans.GenerateResponse, error) {
	req, err := plans.LoadGenerateRequestFile(path)
	if err != nil {
		return nil, err
	}
	return plans.NewService(nil, 0, nil).Generate(req)
}

func newPlanCmd() *cobra.Command {
	var file, out string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a week plan from a YAML request file",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := generate(file)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')
			return writeOutput(cmd.OutOrStdout(), out, data)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "request YAML file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write JSON here instead of stdout")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newTaperCmd() *cobra.Command {
	var start string
	cmd := &cobra.Command{
		Use:   "taper",
		Short: "Print the seven-day pre-competition checklist",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := planner.BuildTaper(start)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(w, "%s  %s\n", e.Date, e.DayLabel)
				for _, tip := range e.Guidance {
					fmt.Fprintf(w, "  - %s\n", tip)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", planner.DefaultCompetitionStart, "competition start date (YYYY-MM-DD)")
	return cmd
}

func newGroceryCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "grocery",
		Short: "Print the aggregated shopping list for a request file",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := generate(file)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ITEM\tGRAMS\tKCAL")
			for _, row := range planner.Aggregate(resp.Plan) {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", row.Name, row.Grams, row.Kcal)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "request YAML file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newExportCmd() *cobra.Command {
	var file, format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a request file's week as pdf, csv, grocery_csv or ics",
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			resp, err := generate(file)
			if err != nil {
				return err
			}
			data, err := exports.Render(format, resp.Plan, resp.Taper, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			if out == "" {
				week := ""
				if len(resp.Plan.Days) > 0 {
					week = resp.Plan.Days[0].Date
				}
				out = exports.Filename(format, week)
			}
			if err := writeOutput(cmd.OutOrStdout(), out, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "request YAML file")
	cmd.Flags().StringVar(&format, "format", exports.FormatPDF, "one of "+strings.Join(exports.Formats, ", "))
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default derived from format and week)")
	cmd.MarkFlagRequired("file")
	return cmd
}

// writeOutput writes to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
