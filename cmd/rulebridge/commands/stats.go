package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rulebridge/rulebridge-go/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents       int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Peers             map[string]*PeerStats
	DropReasons       map[string]int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// PeerStats holds statistics for one remote node.
type PeerStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Drops     int
}

// CollectStats reads the whole trace file.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Peers:             make(map[string]*PeerStats),
		DropReasons:       make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		stats.EventsByDirection[event.Direction]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if event.Peer != "" {
			peer, ok := stats.Peers[event.Peer]
			if !ok {
				peer = &PeerStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
				stats.Peers[event.Peer] = peer
			}
			peer.Events++
			if event.Timestamp.After(peer.LastSeen) {
				peer.LastSeen = event.Timestamp
			}
			if event.Drop != nil {
				peer.Drops++
			}
		}

		if event.Drop != nil {
			stats.DropReasons[event.Drop.Reason]++
		}
		if event.Error != nil {
			stats.Errors++
		}
	}
	return stats, nil
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Rule Bridge Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for c := log.CategoryMessage; c <= log.CategoryError; c++ {
		if count := stats.EventsByCategory[c]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", c.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut, log.DirectionLocal} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}

	if len(stats.DropReasons) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Drops:")
		reasons := make([]string, 0, len(stats.DropReasons))
		for r := range stats.DropReasons {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Fprintf(w, "  %-24s %d\n", r+":", stats.DropReasons[r])
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Peers: %d\n", len(stats.Peers))
	if len(stats.Peers) > 0 {
		ids := make([]string, 0, len(stats.Peers))
		for id := range stats.Peers {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return stats.Peers[ids[i]].FirstSeen.Before(stats.Peers[ids[j]].FirstSeen)
		})
		for _, id := range ids {
			p := stats.Peers[id]
			fmt.Fprintf(w, "  [%s] %d events, %d dropped, active %s\n",
				id, p.Events, p.Drops, p.LastSeen.Sub(p.FirstSeen).Round(time.Millisecond))
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
