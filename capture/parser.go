// ABOUTME: Parser interface for raw heap capture formats
// ABOUTME: Defines the contract for pluggable capture decoders

package capture

import (
	"io"

	"github.com/prateek/heapdiff/graph"
)

// Parser is the interface for raw capture decoders
type Parser interface {
	// CanParse checks if this parser can handle the given capture format.
	// The reader should be treated as a preview - implementations should
	// read a small amount to detect format and not consume the entire stream
	CanParse(r io.Reader) bool

	// Parse reads the capture and builds a frozen graph.
	// The reader will be a fresh reader positioned at the start
	Parse(r io.Reader) (graph.Graph, error)
}
