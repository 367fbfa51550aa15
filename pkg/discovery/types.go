package discovery

import (
	"errors"
	"time"
)

const (
	// ServiceType is the DNS-SD service type of bridge nodes.
	ServiceType = "_rulebridge._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is advertised when the node info carries no port.
	// It is the broker port; nodes do not accept connections themselves.
	DefaultPort = 1883
)

// TXT record keys.
const (
	TXTKeyNodeID  = "id"
	TXTKeyTopic   = "topic"
	TXTKeyBroker  = "broker"
	TXTKeyBoard   = "board"
	TXTKeyVersion = "ver"
	TXTKeyState   = "state"
)

// StateOnline is published in the state key while a node runs.
const StateOnline = "online"

const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 5 * time.Second

	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// MaxTXTRecordSize is the maximum total TXT record size.
	MaxTXTRecordSize = 400
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrTXTTooLarge         = errors.New("TXT record exceeds size limit")
	ErrNotFound            = errors.New("service not found")
)

// NodeInfo is what a node advertises about itself.
type NodeInfo struct {
	NodeID  string
	Topic   string
	Broker  string
	Board   string
	Version string
	State   string
	Port    uint16
}

// NodeService is a node found on the network.
type NodeService struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string

	NodeID  string
	Topic   string
	Broker  string
	Board   string
	Version string
	State   string
}

// ServiceEntry is a resolved mDNS entry independent of the mDNS library.
type ServiceEntry struct {
	Instance string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

// ToNodeService converts the entry, validating its TXT record.
func (e *ServiceEntry) ToNodeService() (*NodeService, error) {
	info, err := DecodeNodeTXT(StringsToTXTRecords(e.Text))
	if err != nil {
		return nil, err
	}
	return &NodeService{
		InstanceName: e.Instance,
		Host:         e.Host,
		Port:         e.Port,
		Addresses:    e.Addrs,
		NodeID:       info.NodeID,
		Topic:        info.Topic,
		Broker:       info.Broker,
		Board:        info.Board,
		Version:      info.Version,
		State:        info.State,
	}, nil
}
