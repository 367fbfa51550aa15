package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/rulebridge/rulebridge-go/pkg/log"
)

// Export formats.
const (
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

// RunExport writes matching events to w in the given format.
func RunExport(path string, filter log.Filter, format string, w io.Writer) error {
	if format != FormatJSONL && format != FormatCSV {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	if format == FormatCSV {
		return exportCSV(reader, w)
	}
	return exportJSONL(reader, w)
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "node", "direction", "category", "peer", "msg_id", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		row := []string{
			event.Timestamp.UTC().Format(timestampLayout),
			event.NodeID,
			event.Direction.String(),
			event.Category.String(),
			event.Peer,
			event.MessageID,
			detail(event),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return cw.Error()
}

// detail is a one-field summary of the type-specific payload.
func detail(event log.Event) string {
	switch {
	case event.Message != nil:
		return event.Message.Body
	case event.Drop != nil:
		return event.Drop.Reason
	case event.Execution != nil:
		return event.Execution.Completion + " replies=" + strconv.Itoa(event.Execution.Replies)
	case event.Guard != nil:
		return event.Guard.NewState
	case event.Pin != nil:
		return event.Pin.Op + " " + event.Pin.Name
	case event.Error != nil:
		return event.Error.Message
	default:
		return ""
	}
}
