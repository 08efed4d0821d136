package rules

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// DeriveSeed gives every named RNG stream its own seed from the world seed,
// so adding a kind profile does not shift the rolls of the others.
func DeriveSeed(worldSeed int64, stream string) int64 {
	buf := binary.LittleEndian.AppendUint64(make([]byte, 0, 8+len(stream)), uint64(worldSeed))
	sum := blake2b.Sum256(append(buf, stream...))
	return int64(binary.LittleEndian.Uint64(sum[:8]) & (1<<63 - 1))
}
