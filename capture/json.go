// ABOUTME: JSON capture decoder
// ABOUTME: Reads captures with object, class, and root records in JSON form

package capture

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/prateek/heapdiff/graph"
)

// JSON decodes JSON captures. The format is a single document with
// "objects", "classes", and "roots" arrays.
type JSON struct{}

// CanParse checks if the input looks like a JSON capture
func (p *JSON) CanParse(r io.Reader) bool {
	buf := make([]byte, 1024)
	n, err := r.Read(buf)
	if err != nil && err != io.EOF {
		return false
	}
	if n == 0 {
		return false
	}

	// The preview may cut off mid-document, so only probe for the
	// presence of an "objects" key.
	var test struct {
		Objects json.RawMessage `json:"objects"`
	}
	if err := json.Unmarshal(buf[:n], &test); err != nil {
		// A truncated document still starts with '{'.
		for _, c := range buf[:n] {
			switch c {
			case ' ', '\t', '\r', '\n':
				continue
			case '{':
				return true
			default:
				return false
			}
		}
		return false
	}
	return test.Objects != nil
}

// Parse reads the JSON capture and builds a frozen graph
func (p *JSON) Parse(r io.Reader) (graph.Graph, error) {
	var dump Dump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, fmt.Errorf("failed to decode JSON capture: %w", err)
	}
	return dump.Build()
}

// init registers the JSON decoder
func init() {
	Register(&JSON{})
}
