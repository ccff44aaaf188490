// pkg/codec/json.go
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	ContentType() string
}

// JSON is the default wire codec: unknown fields tolerated, HTML left
// unescaped so upstream payloads survive a round trip byte-for-byte
// where possible.
var JSON Codec = jsonCodec{strict: false}

// JSONStrict rejects unknown fields and trailing content. Used where a
// payload must match a declared shape exactly (SDK response decode).
var JSONStrict Codec = jsonCodec{strict: true}

type jsonCodec struct{ strict bool }

func (c jsonCodec) Marshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (c jsonCodec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if c.strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	// Anything after the first value is a malformed request.
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return fmt.Errorf("json trailing content")
	}
	return nil
}

func (c jsonCodec) ContentType() string { return "application/json" }
