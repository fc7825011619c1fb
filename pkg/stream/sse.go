package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
)

// WriteSSE encodes one event as a Server-Sent-Events record:
// "event:<name>\n" followed by one data line per newline in the JSON
// encoding, then a blank line.
func WriteSSE(w *bufio.Writer, ev Event) error {
	if _, err := fmt.Fprintf(w, "event:%s\n", ev.Name); err != nil {
		return err
	}
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("sse marshal: %w", err)
	}
	for _, line := range strings.Split(string(payload), "\n") {
		if _, err := fmt.Fprintf(w, "data:%s\n", line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprint(w, "\n"); err != nil {
		return err
	}
	return w.Flush()
}
