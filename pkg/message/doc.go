// Package message defines the network message exchanged between nodes and
// its JSON wire form:
//
//	{"src":"node-a","dst":"ALL","msg":"(digital-read D5)","msg_id":"...","reply_me":"true"}
//
// msg_id is an opaque correlation token chosen by the sender. A reply
// reuses it, swaps src and dst and never requests a reply itself.
package message
