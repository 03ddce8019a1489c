package documents

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Encode serializes doc into the compact JSON body sent to the registry.
// Output is deterministic: keys follow the struct field order.
func Encode(doc *Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document %q: %w", doc.DocID, err)
	}
	return data, nil
}

// DecodeDocument reads a single document. Unknown fields are rejected.
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := decodeStrict(r, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

// DecodeEnvelope reads a document/signature envelope. Unknown fields are
// rejected.
func DecodeEnvelope(r io.Reader) (*Envelope, error) {
	var env Envelope
	if err := decodeStrict(r, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return &env, nil
}

// LoadEnvelope reads an envelope from a file.
func LoadEnvelope(path string) (*Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read envelope %q: %w", path, err)
	}

	env, err := DecodeEnvelope(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return env, nil
}

func decodeStrict(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}
