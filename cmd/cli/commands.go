package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"irps-content-analyzer/internal/analyzer"
	"irps-content-analyzer/internal/bootstrap"
	"irps-content-analyzer/internal/config"
	"irps-content-analyzer/internal/ioformats"
)

type cliState struct {
	cfgPath string
	app     *bootstrap.App
}

func newRootCmd() *cobra.Command {
	st := &cliState{}
	root := &cobra.Command{
		Use:           "irps",
		Short:         "Fetch, classify and route web content",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(st.cfgPath)
			if err != nil {
				return err
			}
			l, err := bootstrap.NewLogger(cfg)
			if err != nil {
				return err
			}
			st.app, err = bootstrap.Build(cmd.Context(), cfg, l)
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if st.app == nil {
				return nil
			}
			_ = st.app.Logger.Sync()
			return st.app.Close()
		},
	}
	root.PersistentFlags().StringVar(&st.cfgPath, "config", "", "path to a YAML config file")
	root.AddCommand(newAnalyzeCmd(st), newBatchCmd(st))
	return root
}

func newAnalyzeCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze a single URL and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := analyzer.NormalizeURL(args[0])
			if err != nil {
				return err
			}
			res, err := st.app.Service.Analyze(cmd.Context(), u)
			if errors.Is(err, analyzer.ErrInvalidURL) {
				return err
			}
			// a persistence error still prints the analysis
			if encErr := printJSON(cmd.OutOrStdout(), res); encErr != nil {
				return encErr
			}
			return err
		},
	}
}

func newBatchCmd(st *cliState) *cobra.Command {
	var in, out, xlsx string
	var concurrency int
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze every URL in a CSV, XLSX or NDJSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			urls, err := ioformats.ReadURLs(in)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			items := st.app.Service.AnalyzeBatch(cmd.Context(), urls, concurrency)

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := ioformats.WriteNDJSON(w, items); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			if xlsx != "" {
				f, err := os.Create(xlsx)
				if err != nil {
					return fmt.Errorf("create report: %w", err)
				}
				defer f.Close()
				if err := ioformats.WriteXLSXReport(f, items); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}
			st.app.Logger.Infof("analyzed %d urls", len(items))
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "input", "", "input file (csv/xlsx with 'url' column, or ndjson)")
	cmd.Flags().StringVar(&out, "output", "", "output NDJSON file (default stdout)")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "also write an XLSX report to this path")
	cmd.Flags().IntVar(&concurrency, "concurrency", analyzer.DefaultBatchConcurrency, "worker concurrency")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
