package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rulebridge/rulebridge-go/cmd/rulebridge/commands"
)

func newTraceCommand() *cobra.Command {
	opts := &commands.FilterOptions{}
	cmd := &cobra.Command{
		Use:   "trace [file]",
		Short: "Inspect trace files",
		Long:  "Inspect trace files. With a file and no subcommand the events are printed as by \"trace view\".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			filter, err := opts.Filter()
			if err != nil {
				return err
			}
			return commands.RunView(args[0], filter, cmd.OutOrStdout())
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.Node, "node", "", "filter by recording node")
	flags.StringVar(&opts.Peer, "peer", "", "filter by remote node")
	flags.StringVar(&opts.MessageID, "msg-id", "", "filter by message id")
	flags.StringVar(&opts.Direction, "direction", "", "filter by direction (in, out, local)")
	flags.StringVar(&opts.Category, "category", "", "filter by category (message, drop, execution, reply, guard, pin, error)")
	flags.StringVar(&opts.TimeStart, "time-start", "", "filter by start time (RFC3339)")
	flags.StringVar(&opts.TimeEnd, "time-end", "", "filter by end time (RFC3339)")

	var (
		format string
		output string
	)

	view := &cobra.Command{
		Use:   "view <file>",
		Short: "View a trace file in human-readable form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.Filter()
			if err != nil {
				return err
			}
			return commands.RunView(args[0], filter, cmd.OutOrStdout())
		},
	}

	export := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a trace file as JSON lines or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.Filter()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}
			return commands.RunExport(args[0], filter, format, w)
		},
	}
	export.Flags().StringVar(&format, "format", commands.FormatJSONL, "output format (jsonl, csv)")
	export.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	filterCmd := &cobra.Command{
		Use:   "filter <file>",
		Short: "Write matching events to a new trace file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("output file (-o) required")
			}
			filter, err := opts.Filter()
			if err != nil {
				return err
			}
			count, err := commands.RunFilter(args[0], filter, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Filtered %d events to %s\n", count, output)
			return nil
		},
	}
	filterCmd.Flags().StringVarP(&output, "output", "o", "", "output file")

	stats := &cobra.Command{
		Use:   "stats <file>",
		Short: "Show statistics about a trace file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunStats(args[0], cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(view, export, filterCmd, stats)
	return cmd
}
