package discovery

import (
	"context"
	"time"
)

// Browser provides mDNS service browsing capabilities.
type Browser interface {
	// Browse searches for nodes. Each node is emitted once; the channel is
	// closed when ctx ends.
	Browse(ctx context.Context) (<-chan *NodeService, error)

	// FindNode searches for one node by identity.
	FindNode(ctx context.Context, nodeID string) (*NodeService, error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout is the default timeout for Collect when ctx has no
	// deadline. Default: 5 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}

// Collect drains a browse channel into a slice until it closes.
func Collect(in <-chan *NodeService) []*NodeService {
	var out []*NodeService
	for svc := range in {
		out = append(out, svc)
	}
	return out
}

// aggregator merges entries that describe the same instance seen on several
// interfaces.
type aggregator struct {
	services map[string]*NodeService
}

func newAggregator() *aggregator {
	return &aggregator{services: make(map[string]*NodeService)}
}

// add records svc and reports whether it is new.
func (a *aggregator) add(svc *NodeService) bool {
	existing, found := a.services[svc.InstanceName]
	if found {
		existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
		return false
	}
	a.services[svc.InstanceName] = svc
	return true
}

// remove drops addresses that disappeared; the instance is forgotten once
// none are left.
func (a *aggregator) remove(instance string, gone []string) {
	existing, found := a.services[instance]
	if !found {
		return
	}
	existing.Addresses = removeAddresses(existing.Addresses, gone)
	if len(existing.Addresses) == 0 {
		delete(a.services, instance)
	}
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range added {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses filters gone out of addresses.
func removeAddresses(addresses, gone []string) []string {
	toRemove := make(map[string]bool, len(gone))
	for _, addr := range gone {
		toRemove[addr] = true
	}
	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}
