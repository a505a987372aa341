package index

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Encode writes s as msgpack, optionally zstd-compressed. Only the fields
// Load consumes are written.
func Encode(w io.Writer, s *Serialized, compression Compression) error {
	switch compression {
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("failed to create compressor: %w", err)
		}
		if err := msgpack.NewEncoder(zw).Encode(s); err != nil {
			zw.Close()
			return fmt.Errorf("failed to encode index: %w", err)
		}
		return zw.Close()
	case CompressionGzip:
		zw := gzip.NewWriter(w)
		if err := msgpack.NewEncoder(zw).Encode(s); err != nil {
			zw.Close()
			return fmt.Errorf("failed to encode index: %w", err)
		}
		return zw.Close()
	default:
		if err := msgpack.NewEncoder(w).Encode(s); err != nil {
			return fmt.Errorf("failed to encode index: %w", err)
		}
		return nil
	}
}

// PackFile converts the index at in to msgpack at out. The output name must
// carry a msgpack extension; a trailing .zst or .gz selects compression.
func PackFile(in, out string) (docs int, err error) {
	s, err := ReadFile(in)
	if err != nil {
		return 0, err
	}
	if !s.DocumentStore.Save {
		return 0, ErrNotStored
	}

	format, compression, err := DetectFile(out)
	if err != nil {
		return 0, err
	}
	if format != FormatMsgpack {
		return 0, fmt.Errorf("%w: pack output must be msgpack, got %s", ErrUnknownFormat, format)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp := out + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Encode(f, s, compression); err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp, out); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to write output file: %w", err)
	}

	return len(s.DocumentStore.Docs), nil
}
