package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"

	"github.com/arloliu/onebrc/compress"
	"github.com/arloliu/onebrc/errs"
	"github.com/arloliu/onebrc/format"
	"github.com/arloliu/onebrc/internal/options"
	"github.com/arloliu/onebrc/internal/pool"
	"github.com/arloliu/onebrc/stats"
)

type config struct {
	compression format.CompressionType
}

// Option configures Encode and WriteFile.
type Option = options.Option[*config]

// WithCompression sets the payload compression. The default is
// format.CompressionNone; format.CompressionAuto is rejected.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *config) error {
		if !ct.Valid() {
			return fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, ct)
		}
		c.compression = ct

		return nil
	})
}

// Encode serializes every key of table.
//
// Parameters:
//   - table: Table to serialize; it is not modified
//   - opts: Encoding options
//
// Returns:
//   - []byte: Header followed by the stored payload
//   - error: Option, compression or size error
func Encode(table *stats.Table, opts ...Option) ([]byte, error) {
	cfg := &config{compression: format.CompressionNone}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	pairs := table.SortedPairs()
	if uint64(len(pairs)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d entries", errs.ErrInvalidSnapshot, len(pairs))
	}

	bb := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(bb)

	for _, p := range pairs {
		bb.Grow(len(p.Key) + 4*binary.MaxVarintLen64)
		bb.B = appendEntry(bb.B, p)
	}
	if uint64(bb.Len()) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: payload of %d bytes", errs.ErrInvalidSnapshot, bb.Len())
	}

	payload, err := codec.Compress(bb.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress snapshot payload: %w", err)
	}

	h := Header{
		Version:     Version,
		Compression: cfg.compression,
		EntryCount:  uint32(len(pairs)),
		RawSize:     uint32(bb.Len()),
		PayloadSize: uint32(len(payload)),
		Checksum:    crc32.ChecksumIEEE(payload),
	}

	out := make([]byte, 0, HeaderSize+len(payload))
	out = h.AppendTo(out)

	return append(out, payload...), nil
}

func appendEntry(dst []byte, p stats.Pair) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(p.Key)))
	dst = append(dst, p.Key...)
	dst = binary.AppendVarint(dst, p.Aggregate.MinScaled)
	dst = binary.AppendVarint(dst, p.Aggregate.MaxScaled)
	dst = binary.AppendVarint(dst, p.Aggregate.SumScaled)

	return binary.AppendUvarint(dst, uint64(p.Aggregate.Count))
}

// Decode parses a snapshot into a new table.
//
// Parameters:
//   - data: Snapshot bytes as produced by Encode
//
// Returns:
//   - *stats.Table: Decoded table
//   - Header: Snapshot header
//   - error: errs.ErrInvalidSnapshot for structural damage,
//     errs.ErrSnapshotChecksum when the payload checksum does not match
func Decode(data []byte) (*stats.Table, Header, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, Header{}, err
	}

	stored := data[HeaderSize:]
	if uint64(len(stored)) != uint64(h.PayloadSize) {
		return nil, Header{}, fmt.Errorf("%w: payload is %d bytes, header says %d",
			errs.ErrInvalidSnapshot, len(stored), h.PayloadSize)
	}
	if sum := crc32.ChecksumIEEE(stored); sum != h.Checksum {
		return nil, Header{}, fmt.Errorf("%w: got %08x, want %08x", errs.ErrSnapshotChecksum, sum, h.Checksum)
	}

	codec, err := compress.GetCodec(h.Compression)
	if err != nil {
		return nil, Header{}, err
	}
	raw, err := codec.Decompress(stored)
	if err != nil {
		return nil, Header{}, fmt.Errorf("%w: %w", errs.ErrInvalidSnapshot, err)
	}
	if uint64(len(raw)) != uint64(h.RawSize) {
		return nil, Header{}, fmt.Errorf("%w: raw payload is %d bytes, header says %d",
			errs.ErrInvalidSnapshot, len(raw), h.RawSize)
	}

	table, err := decodeEntries(raw, h.EntryCount)
	if err != nil {
		return nil, Header{}, err
	}

	return table, h, nil
}

func decodeEntries(raw []byte, count uint32) (*stats.Table, error) {
	table := stats.NewTable()
	d := decoder{buf: raw}

	var prev string
	for i := range count {
		keyLen := d.uvarint()
		key := d.bytes(keyLen)
		agg := stats.Aggregate{
			MinScaled: d.varint(),
			MaxScaled: d.varint(),
			SumScaled: d.varint(),
		}
		n := d.uvarint()
		if d.err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", errs.ErrInvalidSnapshot, i, d.err)
		}

		switch {
		case len(key) == 0:
			return nil, fmt.Errorf("%w: entry %d has an empty key", errs.ErrInvalidSnapshot, i)
		case i > 0 && string(key) <= prev:
			return nil, fmt.Errorf("%w: entry %d key %q out of order", errs.ErrInvalidSnapshot, i, key)
		case n == 0 || n > math.MaxUint32:
			return nil, fmt.Errorf("%w: entry %d count %d", errs.ErrInvalidSnapshot, i, n)
		case agg.MinScaled > agg.MaxScaled:
			return nil, fmt.Errorf("%w: entry %d min %d above max %d", errs.ErrInvalidSnapshot, i, agg.MinScaled, agg.MaxScaled)
		}
		agg.Count = uint32(n)
		prev = string(key)

		table.LookupOrCreate(key).Merge(agg)
	}
	if len(d.buf) != 0 {
		return nil, fmt.Errorf("%w: %d trailing payload bytes", errs.ErrInvalidSnapshot, len(d.buf))
	}

	return table, nil
}

var errMalformedVarint = errors.New("malformed varint")

// decoder reads varint fields and keeps the first error.
type decoder struct {
	buf []byte
	err error
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.buf)
	if n <= 0 {
		d.err = errMalformedVarint
		return 0
	}
	d.buf = d.buf[n:]

	return v
}

func (d *decoder) varint() int64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Varint(d.buf)
	if n <= 0 {
		d.err = errMalformedVarint
		return 0
	}
	d.buf = d.buf[n:]

	return v
}

func (d *decoder) bytes(n uint64) []byte {
	if d.err != nil {
		return nil
	}
	if n > uint64(len(d.buf)) {
		d.err = fmt.Errorf("key of %d bytes exceeds remaining %d", n, len(d.buf))
		return nil
	}
	b := d.buf[:n]
	d.buf = d.buf[n:]

	return b
}

// WriteFile encodes table and writes it to path with mode 0644.
func WriteFile(path string, table *stats.Table, opts ...Option) error {
	data, err := Encode(table, opts...)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint: gosec
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}

// ReadFile reads and decodes the snapshot at path.
func ReadFile(path string) (*stats.Table, Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Header{}, fmt.Errorf("read snapshot: %w", err)
	}

	table, h, err := Decode(data)
	if err != nil {
		return nil, Header{}, fmt.Errorf("%s: %w", path, err)
	}

	return table, h, nil
}

// ReadHeader reads only the header of the snapshot at path.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("read snapshot: %w", err)
	}
	defer f.Close()

	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Header{}, fmt.Errorf("read snapshot: %w", err)
	}

	return ParseHeader(buf[:n])
}
