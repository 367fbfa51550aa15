package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rulebridge/rulebridge-go/pkg/config"
	"github.com/rulebridge/rulebridge-go/pkg/gpio"
	"github.com/rulebridge/rulebridge-go/pkg/pin"
)

func newPinsCommand() *cobra.Command {
	var (
		board string
		probe bool
	)
	cmd := &cobra.Command{
		Use:   "pins",
		Short: "Show the pin table of a board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				table pin.Table
				err   error
			)
			if board != "" {
				table, err = pin.BoardTable(board)
			} else {
				var cfg config.Config
				if cfg, err = loadConfig(); err == nil {
					table, err = cfg.PinTable()
				}
			}
			if err != nil {
				return fmt.Errorf("%w (boards: %s)", err, strings.Join(pin.Boards(), ", "))
			}

			var driver *gpio.Periph
			if probe {
				if driver, err = gpio.NewPeriph(); err != nil {
					return err
				}
			}

			byLine := make(map[pin.Line][]string)
			for _, name := range table.Names() {
				line, _ := table.Lookup(name)
				byLine[line] = append(byLine[line], name)
			}
			lines := make([]pin.Line, 0, len(byLine))
			for l := range byLine {
				lines = append(lines, l)
			}
			sort.Slice(lines, func(i, j int) bool { return lines[i] < lines[j] })

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			if probe {
				fmt.Fprintln(tw, "LINE\tNAMES\tFUNCTION")
			} else {
				fmt.Fprintln(tw, "LINE\tNAMES")
			}
			for _, l := range lines {
				names := strings.Join(byLine[l], ", ")
				if !probe {
					fmt.Fprintf(tw, "%d\t%s\n", l, names)
					continue
				}
				fn, err := driver.Function(l)
				if err != nil {
					fn = err.Error()
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", l, names, fn)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&board, "board", "", "board name (default: gpio.board from config)")
	cmd.Flags().BoolVar(&probe, "probe", false, "query each line's current function from the host")
	return cmd
}
