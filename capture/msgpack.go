// ABOUTME: Msgpack capture decoder for compact binary captures
// ABOUTME: Wraps the Dump payload in a versioned envelope with a magic prefix

package capture

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/prateek/heapdiff/graph"
)

// msgpackMagic prefixes binary captures so the registry can detect the
// format without decoding the body.
var msgpackMagic = []byte("HDMP")

// Current schema version - increment when the Dump format changes
const msgpackSchemaVersion uint16 = 1

// Msgpack decodes binary captures written by EncodeMsgpack.
type Msgpack struct{}

type msgpackEnvelope struct {
	Schema uint16 `msgpack:"schema"`
	Dump   Dump   `msgpack:"dump"`
}

// CanParse checks for the binary magic prefix
func (p *Msgpack) CanParse(r io.Reader) bool {
	buf := make([]byte, len(msgpackMagic))
	if _, err := io.ReadFull(r, buf); err != nil {
		return false
	}
	return bytes.Equal(buf, msgpackMagic)
}

// Parse reads the binary capture and builds a frozen graph
func (p *Msgpack) Parse(r io.Reader) (graph.Graph, error) {
	magic := make([]byte, len(msgpackMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read capture header: %w", err)
	}
	if !bytes.Equal(magic, msgpackMagic) {
		return nil, fmt.Errorf("not a msgpack capture")
	}

	var env msgpackEnvelope
	if err := msgpack.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode msgpack capture: %w", err)
	}
	if env.Schema != msgpackSchemaVersion {
		return nil, fmt.Errorf("unsupported capture schema %d", env.Schema)
	}
	return env.Dump.Build()
}

// EncodeMsgpack writes a Dump in the binary capture format.
func EncodeMsgpack(w io.Writer, dump *Dump) error {
	if _, err := w.Write(msgpackMagic); err != nil {
		return err
	}
	enc := msgpack.NewEncoder(w)
	return enc.Encode(&msgpackEnvelope{Schema: msgpackSchemaVersion, Dump: *dump})
}

// init registers the msgpack decoder
func init() {
	Register(&Msgpack{})
}
