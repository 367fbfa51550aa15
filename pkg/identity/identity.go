package identity

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/rulebridge/rulebridge-go/pkg/message"
)

// Prefix starts every derived identity.
const Prefix = "node-"

// idBytes is the number of hash bytes kept in a derived identity.
const idBytes = 6

// DefaultMachineIDPaths are tried in order.
var DefaultMachineIDPaths = []string{"/etc/machine-id", "/var/lib/dbus/machine-id"}

// hashKey separates our identities from other users of the machine id.
var hashKey = []byte("rulebridge node identity v1")

// Identity errors.
var (
	ErrNoSource  = errors.New("no identity source available")
	ErrInvalidID = errors.New("invalid node identity")
)

// Options controls Derive. Zero values use the host defaults.
type Options struct {
	// MachineIDPaths overrides DefaultMachineIDPaths.
	MachineIDPaths []string

	// Interfaces lists network interfaces for the fallback.
	Interfaces func() ([]net.Interface, error)
}

// Derive returns the identity of this host.
func Derive(opts Options) (string, error) {
	paths := opts.MachineIDPaths
	if paths == nil {
		paths = DefaultMachineIDPaths
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if id := bytes.TrimSpace(data); len(id) > 0 {
			return FromSeed(id)
		}
	}

	list := opts.Interfaces
	if list == nil {
		list = net.Interfaces
	}
	ifaces, err := list()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSource, err)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		return FromSeed(iface.HardwareAddr)
	}
	return "", ErrNoSource
}

// FromSeed hashes seed into an identity.
func FromSeed(seed []byte) (string, error) {
	h, err := blake2b.New(idBytes, hashKey)
	if err != nil {
		return "", err
	}
	h.Write(seed)
	return Prefix + hex.EncodeToString(h.Sum(nil)), nil
}

// Validate checks a configured or derived identity. The broadcast address,
// empty strings, whitespace and MQTT wildcard characters are rejected.
func Validate(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty", ErrInvalidID)
	case strings.EqualFold(id, message.Broadcast):
		return fmt.Errorf("%w: %q is the broadcast address", ErrInvalidID, id)
	case strings.ContainsAny(id, " \t\r\n+#/"):
		return fmt.Errorf("%w: %q contains reserved characters", ErrInvalidID, id)
	}
	return nil
}

// Resolve returns configured when set, otherwise a derived identity. The
// result is validated either way.
func Resolve(configured string, opts Options) (string, error) {
	id := configured
	if id == "" {
		var err error
		if id, err = Derive(opts); err != nil {
			return "", err
		}
	}
	if err := Validate(id); err != nil {
		return "", err
	}
	return id, nil
}
