package format

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arloliu/onebrc/errs"
)

// CompressionType identifies the compression of an input file or snapshot payload.
type CompressionType uint8

const (
	CompressionAuto CompressionType = 0x0 // CompressionAuto detects input compression from the file extension.
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionAuto:
		return "Auto"
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Valid reports whether c names a concrete compression (Auto excluded).
func (c CompressionType) Valid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}

// ParseCompression converts a case-insensitive name ("auto", "none", "zstd",
// "s2", "lz4") into a CompressionType. The empty string means auto.
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return CompressionAuto, nil
	case "none":
		return CompressionNone, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return CompressionAuto, fmt.Errorf("%w: %q", errs.ErrUnsupportedCompression, name)
	}
}

// CompressionFromPath infers the compression of a file from its extension.
// Unknown extensions mean an uncompressed file.
func CompressionFromPath(path string) CompressionType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return CompressionZstd
	case ".s2", ".sz":
		return CompressionS2
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Resolve returns c, or the compression inferred from path when c is Auto.
func (c CompressionType) Resolve(path string) CompressionType {
	if c == CompressionAuto {
		return CompressionFromPath(path)
	}

	return c
}
