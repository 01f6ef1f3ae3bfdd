package snapshot

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/onebrc/errs"
	"github.com/arloliu/onebrc/format"
)

const (
	// HeaderSize is the size of the fixed snapshot header in bytes.
	HeaderSize = 24
	// Version is the snapshot format version written by Encode.
	Version = 1
	// Magic identifies a snapshot file.
	Magic = "OBRC"
)

// Header describes a snapshot payload.
type Header struct {
	Version     uint8
	Compression format.CompressionType
	EntryCount  uint32
	RawSize     uint32 // Payload length before compression
	PayloadSize uint32 // Stored payload length
	Checksum    uint32 // CRC32-IEEE of the stored payload
}

// Bytes serializes the header.
func (h Header) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, HeaderSize))
}

// AppendTo appends the serialized header to dst.
func (h Header) AppendTo(dst []byte) []byte {
	dst = append(dst, Magic...)
	dst = append(dst, h.Version, byte(h.Compression), 0, 0)
	dst = binary.LittleEndian.AppendUint32(dst, h.EntryCount)
	dst = binary.LittleEndian.AppendUint32(dst, h.RawSize)
	dst = binary.LittleEndian.AppendUint32(dst, h.PayloadSize)
	dst = binary.LittleEndian.AppendUint32(dst, h.Checksum)

	return dst
}

// String returns a one-line human readable description.
func (h Header) String() string {
	return fmt.Sprintf("version=%d compression=%s entries=%d raw=%d payload=%d crc32=%08x",
		h.Version, h.Compression, h.EntryCount, h.RawSize, h.PayloadSize, h.Checksum)
}

// ParseHeader parses and validates the header at the start of data.
//
// Parameters:
//   - data: Snapshot bytes, at least HeaderSize long
//
// Returns:
//   - Header: Parsed header
//   - error: errs.ErrInvalidSnapshot for a short buffer, bad magic, unknown
//     version or compression
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes, header needs %d", errs.ErrInvalidSnapshot, len(data), HeaderSize)
	}
	if string(data[0:4]) != Magic {
		return Header{}, fmt.Errorf("%w: bad magic %q", errs.ErrInvalidSnapshot, data[0:4])
	}

	h := Header{
		Version:     data[4],
		Compression: format.CompressionType(data[5]),
		EntryCount:  binary.LittleEndian.Uint32(data[8:12]),
		RawSize:     binary.LittleEndian.Uint32(data[12:16]),
		PayloadSize: binary.LittleEndian.Uint32(data[16:20]),
		Checksum:    binary.LittleEndian.Uint32(data[20:24]),
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidSnapshot, h.Version)
	}
	if !h.Compression.Valid() {
		return Header{}, fmt.Errorf("%w: unknown compression %d", errs.ErrInvalidSnapshot, data[5])
	}

	return h, nil
}
