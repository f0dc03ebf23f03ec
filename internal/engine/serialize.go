package engine

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mvp-joe/astdigest/internal/keymap"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON       Format = "json"
	FormatJSONIndent Format = "json-indent"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatJSONIndent:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Frame is an optional transport wrapping of serialized output.
type Frame string

const (
	FrameNone       Frame = "none"
	FrameGzipBase64 Frame = "gzip+base64"
)

// ParseFrame validates a frame name. The empty string means FrameNone.
func ParseFrame(s string) (Frame, error) {
	switch Frame(s) {
	case "", FrameNone:
		return FrameNone, nil
	case FrameGzipBase64:
		return FrameGzipBase64, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFrame, s)
}

// Serialize encodes doc. With a legend the document is key-mapped and
// wrapped as {key_mapping, data}.
func Serialize(doc *Document, format Format, legend *keymap.Legend) ([]byte, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if legend == nil {
		return marshal(doc, format)
	}

	raw, err := marshal(doc, FormatJSON)
	if err != nil {
		return nil, err
	}
	generic, err := decodeGeneric(raw)
	if err != nil {
		return nil, err
	}
	return marshal(legend.Wrap(generic), format)
}

// Encode serializes doc with the engine's key-mapping setting.
func (e *Engine) Encode(doc *Document, format Format) ([]byte, error) {
	var legend *keymap.Legend
	if e.opts.UseKeyMapping {
		legend = keymap.Default()
	}
	return Serialize(doc, format, legend)
}

func marshal(v any, format Format) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if format == FormatJSONIndent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func decodeGeneric(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return v, nil
}

// Restore reverses key mapping on serialized output, returning the generic
// JSON value of the original document.
func Restore(data []byte) (any, error) {
	v, err := decodeGeneric(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	mapping, hasLegend := m["key_mapping"].(map[string]any)
	if !hasLegend {
		return v, nil
	}
	long := make(map[string]string, len(mapping))
	for k, s := range mapping {
		short, ok := s.(string)
		if !ok {
			return nil, fmt.Errorf("key_mapping[%q] is not a string", k)
		}
		long[k] = short
	}
	legend, err := keymap.New(long)
	if err != nil {
		return nil, err
	}
	return legend.Restore(m["data"]), nil
}

// ApplyFrame wraps serialized output in the given frame.
func ApplyFrame(data []byte, frame Frame) ([]byte, error) {
	switch frame {
	case "", FrameNone:
		return data, nil
	case FrameGzipBase64:
		var buf bytes.Buffer
		zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(data); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		out := make([]byte, base64.StdEncoding.EncodedLen(buf.Len()))
		base64.StdEncoding.Encode(out, buf.Bytes())
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFrame, frame)
}

// Unframe decodes gzip+base64 framed output.
func Unframe(data []byte) ([]byte, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	n, err := base64.StdEncoding.Decode(raw, bytes.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw[:n]))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return out, nil
}
