package index

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Format is the encoding of a serialized index
type Format int

const (
	FormatJSON Format = iota
	FormatMsgpack
	// FormatJS is a JSON index wrapped in a script assignment,
	// e.g. `window.searchIndex = {...};`
	FormatJS
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	case FormatJS:
		return "js"
	default:
		return "unknown"
	}
}

// Compression is the outer compression of a serialized index file
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

var (
	// ErrUnknownFormat is returned when a file extension maps to no known format
	ErrUnknownFormat = errors.New("unknown index format")
	// ErrNotAvailable is returned by sources that have no index yet
	ErrNotAvailable = errors.New("search index not available")
)

// Serialized is an elasticlunr-compatible serialized index as emitted by
// static site generators. Only the document store is consumed; the inverted
// index is rebuilt on load and is dropped when decoding.
type Serialized struct {
	Version       string        `json:"version" msgpack:"version"`
	Fields        []string      `json:"fields" msgpack:"fields"`
	Ref           string        `json:"ref" msgpack:"ref"`
	DocumentStore DocumentStore `json:"documentStore" msgpack:"documentStore"`
	Pipeline      []string      `json:"pipeline,omitempty" msgpack:"pipeline,omitempty"`
	Lang          string        `json:"lang,omitempty" msgpack:"lang,omitempty"`
}

// DocumentStore holds the stored documents keyed by ref
type DocumentStore struct {
	Save   bool                      `json:"save" msgpack:"save"`
	Docs   map[string]map[string]any `json:"docs" msgpack:"docs"`
	Length int                       `json:"length" msgpack:"length"`
}

// DetectFile returns the format and compression implied by a file name
func DetectFile(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))
	compression := CompressionNone
	switch {
	case strings.HasSuffix(name, ".gz"):
		compression = CompressionGzip
		name = strings.TrimSuffix(name, ".gz")
	case strings.HasSuffix(name, ".zst"):
		compression = CompressionZstd
		name = strings.TrimSuffix(name, ".zst")
	}

	switch filepath.Ext(name) {
	case ".json":
		return FormatJSON, compression, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, compression, nil
	case ".js":
		return FormatJS, compression, nil
	default:
		return 0, compression, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ReadFile reads and decodes a serialized index, choosing the decoder from
// the file name
func ReadFile(path string) (*Serialized, error) {
	format, compression, err := DetectFile(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotAvailable, path)
		}
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer f.Close()

	r, closeFn, err := decompress(f, compression)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return Decode(r, format)
}

// Decode decodes a serialized index from r
func Decode(r io.Reader, format Format) (*Serialized, error) {
	var s Serialized
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode json index: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode msgpack index: %w", err)
		}
	case FormatJS:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read js index: %w", err)
		}
		payload, err := unwrapScript(data)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &s); err != nil {
			return nil, fmt.Errorf("failed to decode js index: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
	return &s, nil
}

// unwrapScript extracts the object literal from `<lhs> = {...};`
func unwrapScript(data []byte) ([]byte, error) {
	start := bytes.IndexByte(data, '{')
	end := bytes.LastIndexByte(data, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("failed to decode js index: no object literal found")
	}
	return data[start : end+1], nil
}

func decompress(r io.Reader, compression Compression) (io.Reader, func(), error) {
	switch compression {
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return zr, func() { zr.Close() }, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return zr, zr.Close, nil
	default:
		return r, func() {}, nil
	}
}
