package discovery

import (
	"context"
	"sync"
	"time"
)

// Advertiser provides mDNS service advertising capabilities.
type Advertiser interface {
	// Advertise registers the node, replacing an earlier registration.
	Advertise(ctx context.Context, info *NodeInfo) error

	// Stop withdraws the registration.
	Stop() error
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		Interface: "",
		TTL:       120 * time.Second,
	}
}

// PresenceState is the advertising state of a node.
type PresenceState uint8

const (
	// PresenceUnregistered means nothing is advertised.
	PresenceUnregistered PresenceState = iota

	// PresenceAdvertising means the node service is registered.
	PresenceAdvertising
)

// String returns the state name.
func (s PresenceState) String() string {
	switch s {
	case PresenceUnregistered:
		return "UNREGISTERED"
	case PresenceAdvertising:
		return "ADVERTISING"
	default:
		return "UNKNOWN"
	}
}

// Presence keeps a node's advertisement in line with its connection state.
type Presence struct {
	mu sync.RWMutex

	state      PresenceState
	advertiser Advertiser
	info       *NodeInfo

	onStateChange func(old, new PresenceState)
}

// NewPresence creates a presence manager over advertiser.
func NewPresence(advertiser Advertiser, info NodeInfo) *Presence {
	if info.State == "" {
		info.State = StateOnline
	}
	return &Presence{
		state:      PresenceUnregistered,
		advertiser: advertiser,
		info:       &info,
	}
}

// State returns the current presence state.
func (p *Presence) State() PresenceState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Info returns a copy of the advertised node info.
func (p *Presence) Info() NodeInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return *p.info
}

// OnStateChange sets a callback for state changes.
func (p *Presence) OnStateChange(fn func(old, new PresenceState)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onStateChange = fn
}

// Start advertises the node. Starting twice re-registers.
func (p *Presence) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ValidateNodeInfo(p.info); err != nil {
		return err
	}
	if err := p.advertiser.Advertise(ctx, p.info); err != nil {
		return err
	}
	p.setState(PresenceAdvertising)
	return nil
}

// Stop withdraws the advertisement.
func (p *Presence) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == PresenceUnregistered {
		return nil
	}
	err := p.advertiser.Stop()
	p.setState(PresenceUnregistered)
	return err
}

func (p *Presence) setState(s PresenceState) {
	old := p.state
	p.state = s
	if p.onStateChange != nil && old != s {
		p.onStateChange(old, s)
	}
}
