package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rulebridge/rulebridge-go/pkg/discovery"
	"github.com/rulebridge/rulebridge-go/pkg/identity"
	"github.com/rulebridge/rulebridge-go/pkg/message"
	"github.com/rulebridge/rulebridge-go/pkg/transport"
	"github.com/rulebridge/rulebridge-go/pkg/version"
)

type sendOptions struct {
	from     string
	noReply  bool
	wait     time.Duration
	discover bool
}

func newSendCommand() *cobra.Command {
	opts := &sendOptions{}
	cmd := &cobra.Command{
		Use:   "send <node-id|ALL> <command...>",
		Short: "Publish one command and print the replies",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd.Context(), opts, args[0], strings.Join(args[1:], " "), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.from, "from", "", "source identity (default: this host's identity with a -cli suffix)")
	cmd.Flags().BoolVar(&opts.noReply, "no-reply", false, "do not request a reply")
	cmd.Flags().DurationVar(&opts.wait, "wait", 3*time.Second, "how long to collect replies")
	cmd.Flags().BoolVar(&opts.discover, "discover", false, "look up the node's broker and topic via mDNS")
	return cmd
}

func runSend(ctx context.Context, opts *sendOptions, dst, body string, out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	from := opts.from
	if from == "" {
		id, err := identity.Resolve(cfg.Node.ID, identity.Options{})
		if err != nil {
			return err
		}
		from = id + "-cli"
	}
	if err := identity.Validate(from); err != nil {
		return err
	}

	if opts.discover && dst != message.Broadcast {
		svc, err := findNode(ctx, cfg.Discovery.Interface, dst)
		if err != nil {
			return err
		}
		if ok, _ := version.CompatibleWith(svc.Version); !ok {
			fmt.Fprintf(os.Stderr, "warning: %s speaks protocol %s\n", dst, svc.Version)
		}
		cfg.MQTT.Broker = svc.Broker
		cfg.MQTT.Topic = svc.Topic
	}

	cfg.MQTT.ClientID = from + "-" + uuid.NewString()[:8]
	tr := newMQTT(cfg, from, logger)

	m := message.New(from, dst, body, !opts.noReply)
	if err := m.Validate(); err != nil {
		return err
	}

	replies := make(chan *message.Message, 16)
	tr.Subscribe(func(payload []byte) {
		r, err := message.Decode(payload)
		if err != nil || r.Dst != from || r.ID != m.ID {
			return
		}
		select {
		case replies <- r:
		default:
		}
	})

	if err := tr.Connect(ctx); err != nil {
		return err
	}
	defer tr.Close()

	payload, err := m.Encode()
	if err != nil {
		return err
	}
	if err := tr.Publish(ctx, payload); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if opts.noReply {
		fmt.Fprintln(out, m.ID)
		return nil
	}

	timer := time.NewTimer(opts.wait)
	defer timer.Stop()
	for {
		select {
		case r := <-replies:
			fmt.Fprintf(out, "[%s] %s\n", r.Src, r.Body)
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func findNode(ctx context.Context, iface, nodeID string) (*discovery.NodeService, error) {
	cfg := discovery.DefaultBrowserConfig()
	cfg.Interface = iface

	ctx, cancel := context.WithTimeout(ctx, cfg.BrowseTimeout)
	defer cancel()

	browser := discovery.NewMDNSBrowser(cfg)
	defer browser.Stop()

	svc, err := browser.FindNode(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", nodeID, err)
	}
	return svc, nil
}
