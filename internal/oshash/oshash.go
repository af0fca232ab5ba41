package oshash

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"

	"subfetch/internal/services"
)

// ChunkSize is the window length the catalog hashes at each end of a file.
const ChunkSize = 65536

// Fingerprint identifies a media file to the subtitle catalog.
type Fingerprint struct {
	Size uint64
	Hash uint64
}

// HexHash renders the hash the way the catalog search expects it:
// sixteen lowercase hex digits, zero padded.
func (f Fingerprint) HexHash() string {
	return fmt.Sprintf("%016x", f.Hash)
}

// SizeString renders the byte size as the decimal string used in queries.
func (f Fingerprint) SizeString() string {
	return strconv.FormatUint(f.Size, 10)
}

// FromFile computes the catalog fingerprint for path: the file size plus the
// wraparound sums of the leading and trailing 64 KiB windows, everything
// modulo 2^64. The two windows overlap for files shorter than 128 KiB; that
// is part of the published algorithm, not a bug.
//
// Files smaller than one window are rejected. The catalog holds no entries
// for them and a short head read would otherwise hash uninitialized data.
func FromFile(path string) (Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, services.Wrap(services.ErrIO, "fingerprint", "open", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Fingerprint{}, services.Wrap(services.ErrIO, "fingerprint", "stat", path, err)
	}
	size := uint64(info.Size())
	if size < ChunkSize {
		return Fingerprint{}, services.Wrap(services.ErrIO, "fingerprint", "head window",
			fmt.Sprintf("%s is %d bytes, need at least %d", path, size, ChunkSize), nil)
	}

	head, err := sumWindow(file)
	if err != nil {
		return Fingerprint{}, services.Wrap(services.ErrIO, "fingerprint", "head window", path, err)
	}

	if _, err := file.Seek(int64(size-ChunkSize), io.SeekStart); err != nil {
		return Fingerprint{}, services.Wrap(services.ErrIO, "fingerprint", "seek tail window", path, err)
	}
	tail, err := sumWindow(file)
	if err != nil {
		return Fingerprint{}, services.Wrap(services.ErrIO, "fingerprint", "tail window", path, err)
	}

	return Fingerprint{Size: size, Hash: size + head + tail}, nil
}

// sumWindow reads exactly one window and sums it as 8192 little-endian
// 64-bit words with wraparound. Decoding words explicitly keeps the result
// identical on every platform regardless of host endianness.
func sumWindow(r io.Reader) (uint64, error) {
	buf := make([]byte, ChunkSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	var sum uint64
	for i := 0; i < ChunkSize; i += 8 {
		sum += binary.LittleEndian.Uint64(buf[i : i+8])
	}
	return sum, nil
}
