// Package version provides bridge protocol version parsing and comparison.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the bridge protocol version implemented by this module. It is
// advertised in the "ver" TXT record.
const Current = "1.0"

// Build identifies the binary. Overridden at link time with
// -ldflags "-X github.com/rulebridge/rulebridge-go/pkg/version.Build=...".
var Build = "dev"

// ProtocolVersion represents a parsed "major.minor" protocol version.
type ProtocolVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (ProtocolVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return ProtocolVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return ProtocolVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return ProtocolVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return ProtocolVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v ProtocolVersion) Compatible(other ProtocolVersion) bool {
	return v.Major == other.Major
}

// CompatibleWith reports whether a peer advertising remote can exchange
// messages with this node. An empty remote is treated as compatible since
// older nodes do not advertise a version.
func CompatibleWith(remote string) (bool, error) {
	if remote == "" {
		return true, nil
	}
	rv, err := Parse(remote)
	if err != nil {
		return false, err
	}
	current, _ := Parse(Current)
	return current.Compatible(rv), nil
}

// String returns the protocol and build identifiers for display.
func String() string {
	return fmt.Sprintf("rulebridge %s (protocol %s)", Build, Current)
}
