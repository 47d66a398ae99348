package snapshot

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"fableweave.dev/internal/sim/fault"
)

type Options struct {
	Encoding    Encoding
	Compression Compression
}

// Encode writes the header line followed by the body in the requested
// encoding, compressing the body only. The header always stays plain
// text so Decode (and humans) can identify any snapshot with one read.
func Encode(snap SnapshotV1, opts Options) ([]byte, error) {
	if opts.Encoding == "" {
		opts.Encoding = EncodingGob
	}
	if opts.Compression == "" {
		opts.Compression = CompressionNone
	}
	snap.Header = Header{
		Version:     FormatVersion,
		Encoding:    opts.Encoding,
		Compression: opts.Compression,
		Minute:      snap.ClockMinute,
		Ticks:       snap.Ticks,
		Seed:        snap.Seed,
	}

	var buf bytes.Buffer
	hb, err := json.Marshal(snap.Header)
	if err != nil {
		return nil, err
	}
	buf.Write(hb)
	buf.WriteByte('\n')

	var body io.Writer = &buf
	var enc *zstd.Encoder
	if opts.Compression == CompressionZstd {
		enc, err = zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		body = enc
	}

	switch opts.Encoding {
	case EncodingJSON:
		je := json.NewEncoder(body)
		je.SetIndent("", "  ")
		err = je.Encode(&snap)
	case EncodingGob:
		err = gob.NewEncoder(body).Encode(&snap)
	default:
		return nil, fault.New(fault.InvalidArgument, "unknown snapshot encoding %q", opts.Encoding)
	}
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Decode validates the header (VERSION_MISMATCH for unsupported
// versions) and decodes the body per the header's declared encoding and
// compression. Body failures surface as CORRUPT_DATA.
func Decode(b []byte) (SnapshotV1, error) {
	var snap SnapshotV1

	br := bufio.NewReader(bytes.NewReader(b))
	headerLine, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fault.Wrap(fault.CorruptData, err, "read snapshot header")
	}
	var hdr Header
	if err := json.Unmarshal(headerLine, &hdr); err != nil {
		return snap, fault.Wrap(fault.CorruptData, err, "parse snapshot header")
	}
	if hdr.Version != FormatVersion {
		return snap, fault.New(fault.VersionMismatch, "snapshot version %d, supported %d", hdr.Version, FormatVersion)
	}

	var body io.Reader = br
	if hdr.Compression == CompressionZstd {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return snap, fault.Wrap(fault.CorruptData, err, "open zstd body")
		}
		defer dec.Close()
		body = dec
	}

	switch hdr.Encoding {
	case EncodingJSON:
		err = json.NewDecoder(body).Decode(&snap)
	case EncodingGob:
		err = gob.NewDecoder(body).Decode(&snap)
	default:
		return snap, fault.New(fault.CorruptData, "unknown snapshot encoding %q", hdr.Encoding)
	}
	if err != nil {
		return snap, fault.Wrap(fault.CorruptData, err, "decode snapshot body")
	}
	snap.Header = hdr
	return snap, nil
}
