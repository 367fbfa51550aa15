package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rulebridge/rulebridge-go/pkg/discovery"
	"github.com/rulebridge/rulebridge-go/pkg/version"
)

func newDiscoverCommand() *cobra.Command {
	var (
		timeout time.Duration
		iface   string
	)
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List nodes advertising on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := discovery.DefaultBrowserConfig()
			cfg.BrowseTimeout = timeout
			cfg.Interface = iface

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			browser := discovery.NewMDNSBrowser(cfg)
			defer browser.Stop()

			results, err := browser.Browse(ctx)
			if err != nil {
				return err
			}
			services := discovery.Collect(results)
			sort.Slice(services, func(i, j int) bool { return services[i].NodeID < services[j].NodeID })

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NODE\tBOARD\tBROKER\tTOPIC\tVERSION\tADDRESSES")
			for _, svc := range services {
				ver := svc.Version
				if ok, _ := version.CompatibleWith(svc.Version); !ok {
					ver += " (incompatible)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					svc.NodeID, svc.Board, svc.Broker, svc.Topic, ver, strings.Join(svc.Addresses, ","))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if len(services) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no nodes found")
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", discovery.BrowseTimeout, "browse duration")
	cmd.Flags().StringVar(&iface, "interface", "", "network interface (default all)")
	return cmd
}
