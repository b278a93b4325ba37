// Package main provides the command-line entry point for xlquery.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/javajack/xlquery"
	"github.com/spf13/cobra"
)

var (
	asJSON    bool
	verbose   bool
	marker    string
	separator string
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xlquery",
		Short: "Read, filter and update xlsx worksheets",
		Long: `xlquery addresses worksheet cells by column letter, heading or row
condition and reads or writes them in place.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print the response as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Trace operations to stderr")
	rootCmd.PersistentFlags().StringVar(&marker, "marker", xlquery.DefaultMarker, "Prefix marking explicit row and column ordinals")
	rootCmd.PersistentFlags().StringVar(&separator, "sep", ",", "Separator for column, value and update lists")

	rootCmd.AddCommand(
		opCmd("read-cell FILE SHEET ROW COLUMN", "Read one cell, or a column of the first matching row", 4,
			func(a []string) xlquery.Request {
				return xlquery.Request{Kind: xlquery.OpReadCell, File: a[0], Sheet: a[1], Row: a[2], Column: a[3]}
			}),
		opCmd("read-row FILE SHEET ROW [COLUMNS]", "Read a row, or the first row matching a condition", 3,
			func(a []string) xlquery.Request {
				return xlquery.Request{Kind: xlquery.OpReadRow, File: a[0], Sheet: a[1], Row: a[2], Columns: optArg(a, 3)}
			}),
		opCmd("read-update FILE SHEET ROW UPDATES [COLUMNS]", "Update cells of a row and read it back", 4,
			func(a []string) xlquery.Request {
				return xlquery.Request{Kind: xlquery.OpReadAndUpdate, File: a[0], Sheet: a[1], Row: a[2], Updates: a[3], Columns: optArg(a, 4)}
			}),
		opCmd("append FILE SHEET VALUES", "Append a row of values", 3,
			func(a []string) xlquery.Request {
				return xlquery.Request{Kind: xlquery.OpAppend, File: a[0], Sheet: a[1], Values: a[2]}
			}),
		opCmd("write FILE SHEET ROW COLUMN VALUE", "Write one cell, creating it when absent", 5,
			func(a []string) xlquery.Request {
				return xlquery.Request{Kind: xlquery.OpWriteCell, File: a[0], Sheet: a[1], Row: a[2], Column: a[3], Value: a[4]}
			}),
		describeCmd(),
		checkCmd(),
	)
	return rootCmd
}

func optArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func options(stderr io.Writer) []xlquery.Option {
	opts := []xlquery.Option{
		xlquery.WithRowMarker(marker),
		xlquery.WithListSeparator(separator),
	}
	if verbose {
		h := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, xlquery.WithLogger(slog.New(h)))
	}
	return opts
}

// opCmd builds a sub-command that dispatches one request. minArgs is the
// number of required arguments; the usage string carries any optional ones.
func opCmd(use, short string, minArgs int, build func([]string) xlquery.Request) *cobra.Command {
	maxArgs := len(strings.Fields(use)) - 1
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.RangeArgs(minArgs, maxArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := xlquery.NewQuerier(options(cmd.ErrOrStderr())...)
			req := build(args)
			resp := q.Dispatch(req)
			if err := printResponse(cmd.OutOrStdout(), req.Kind, resp); err != nil {
				return err
			}
			if resp.Err != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), resp.Err)
				return fmt.Errorf("%s", resp.Err)
			}
			return nil
		},
	}
}

func printResponse(w io.Writer, kind xlquery.OperationKind, resp xlquery.Response) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	if resp.Err != "" {
		return nil
	}
	switch kind {
	case xlquery.OpReadAndUpdate:
		fmt.Fprintf(w, "updated=%t\n", resp.Updated)
	case xlquery.OpAppend:
		fmt.Fprintf(w, "row %d\n", resp.RowNumber)
	case xlquery.OpWriteCell:
		fmt.Fprintln(w, "ok")
	}
	for _, v := range resp.Values {
		fmt.Fprintln(w, v)
	}
	return nil
}

func describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE [SHEET]",
		Short: "Summarise sheets, headings and cell kinds",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := xlquery.Describe(args[0], optArg(args, 1), options(cmd.ErrOrStderr())...)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE SHEET CONDITION",
		Short: "Validate a row condition against a sheet's headings",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			issues, err := xlquery.ValidateCondition(args[0], args[1], args[2], options(cmd.ErrOrStderr())...)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			failed := false
			for _, issue := range issues {
				fmt.Fprintln(cmd.OutOrStdout(), issue)
				failed = failed || issue.Severity == xlquery.SeverityError
			}
			if failed {
				return fmt.Errorf("condition has errors")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
