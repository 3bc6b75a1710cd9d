// ABOUTME: Registry for raw capture decoders
// ABOUTME: Manages decoder plugins and selects the right one for a capture

package capture

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/prateek/heapdiff/graph"
)

var (
	// ErrNoParser is returned when no decoder can handle the capture format
	ErrNoParser = errors.New("no parser found for capture format")
)

// parserRegistry holds registered parsers
type parserRegistry struct {
	mu      sync.RWMutex
	parsers []Parser
}

// Global registry instance
var registry = &parserRegistry{
	parsers: make([]Parser, 0),
}

// Register adds a parser to the registry
func Register(p Parser) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.parsers = append(registry.parsers, p)
}

// Open reads a raw capture and returns a frozen graph.
// It tries each registered parser to find one that can handle the format
func Open(r io.Reader) (graph.Graph, error) {
	// Read some bytes for format detection.
	// We need to buffer since we'll try multiple parsers
	detectBuf := make([]byte, 4096)
	n, err := io.ReadFull(r, detectBuf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}

	registry.mu.RLock()
	defer registry.mu.RUnlock()

	for _, parser := range registry.parsers {
		// Fresh preview reader for the CanParse check
		checkReader := bytes.NewReader(detectBuf[:n])
		if parser.CanParse(checkReader) {
			// Fresh reader for the actual parse
			parseReader := io.MultiReader(bytes.NewReader(detectBuf[:n]), r)
			return parser.Parse(parseReader)
		}
	}

	return nil, ErrNoParser
}
