// Package discovery advertises and finds bridge nodes with mDNS/DNS-SD.
//
// Every running node registers one instance of _rulebridge._tcp named after
// its node identity. The TXT record tells peers how to reach the node over
// the message bus:
//
//	id      node identity (required)
//	topic   MQTT topic the node listens on (required)
//	broker  broker URL (optional)
//	board   pin table in use (optional)
//	ver     software version (optional)
//	state   online while the node runs (optional)
//
// Discovery is informational. Message delivery never depends on it.
package discovery
