package chunk

import (
	"golang.org/x/crypto/blake2b"
)

// Hash returns a BLAKE2b-256 digest of c's encoded wire bytes, for a
// companion ".chunk.sha" integrity sidecar written alongside a
// persisted chunk file — NOT part of the wire format itself, which
// spec.md §6 pins exactly with no hash or version byte.
func Hash(c *Chunk) [32]byte {
	return blake2b.Sum256(c.Encode())
}
