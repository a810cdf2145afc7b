package stream

import (
	"encoding/hex"
	"hash/crc32"

	"lukechampine.com/blake3"
)

var crcTable = crc32.MakeTable(crc32.IEEE)

// ComputeCRC computes CRC-32 IEEE of the given bytes.
func ComputeCRC(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// TextDigest computes the BLAKE3-256 digest of the UTF-8 text.
func TextDigest(text string) [32]byte {
	return blake3.Sum256([]byte(text))
}

// DigestToHex converts a digest to lowercase hex.
func DigestToHex(d [32]byte) string {
	return hex.EncodeToString(d[:])
}

// HexToDigest parses a 64-character hex string.
func HexToDigest(s string) ([32]byte, bool) {
	var d [32]byte
	if len(s) != 2*len(d) {
		return d, false
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, false
	}
	return d, true
}
