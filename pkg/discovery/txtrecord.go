package discovery

import (
	"fmt"
	"sort"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeNodeTXT creates the TXT record for a node.
func EncodeNodeTXT(info *NodeInfo) TXTRecordMap {
	txt := TXTRecordMap{
		TXTKeyNodeID: info.NodeID,
		TXTKeyTopic:  info.Topic,
	}

	optional := map[string]string{
		TXTKeyBroker:  info.Broker,
		TXTKeyBoard:   info.Board,
		TXTKeyVersion: info.Version,
		TXTKeyState:   info.State,
	}
	for k, v := range optional {
		if v != "" {
			txt[k] = v
		}
	}
	return txt
}

// DecodeNodeTXT parses a node TXT record.
func DecodeNodeTXT(txt TXTRecordMap) (*NodeInfo, error) {
	info := &NodeInfo{}

	var ok bool
	if info.NodeID, ok = txt[TXTKeyNodeID]; !ok || info.NodeID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyNodeID)
	}
	if info.Topic, ok = txt[TXTKeyTopic]; !ok || info.Topic == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyTopic)
	}

	info.Broker = txt[TXTKeyBroker]
	info.Board = txt[TXTKeyBoard]
	info.Version = txt[TXTKeyVersion]
	info.State = txt[TXTKeyState]
	return info, nil
}

// ValidateNodeInfo checks that info can be advertised.
func ValidateNodeInfo(info *NodeInfo) error {
	if err := ValidateInstanceName(info.NodeID); err != nil {
		return err
	}
	if info.Topic == "" {
		return fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyTopic)
	}
	size := 0
	for _, s := range TXTRecordsToStrings(EncodeNodeTXT(info)) {
		size += len(s) + 1
	}
	if size > MaxTXTRecordSize {
		return fmt.Errorf("%w: %d bytes", ErrTXTTooLarge, size)
	}
	return nil
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
// A key without "=" is a boolean flag with an empty value.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, found := strings.Cut(s, "=")
		if !found && k == "" {
			continue
		}
		txt[k] = v
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrMissingRequired)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
