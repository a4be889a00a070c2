package aiclient

import (
	"bufio"
	"io"
	"strings"
)

// readSSE walks a text/event-stream body and calls onData with the payload
// of every data: line. It stops at EOF or on the first onData error.
func readSSE(body io.Reader, onData func(data string) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if err := onData(data); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// errStopStream signals a clean end of stream from inside an onData callback.
type stopStream struct{}

func (stopStream) Error() string { return "stop stream" }
