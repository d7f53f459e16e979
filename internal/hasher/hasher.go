package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"
)

// PathHash computes the xxHash64 of a slash-separated relative path and
// returns a hex string truncated to hexLen (0 keeps all 16 chars). Used to
// build collision-free cache keys for nested source layouts.
func PathHash(relPath string, hexLen int) string {
	return truncate(xxhash.Sum64String(relPath), hexLen)
}

// ContentHashReader computes xxHash64 from a reader, streaming.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return truncate(h.Sum64(), hexLen), nil
}

func truncate(sum uint64, hexLen int) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], sum)
	full := hex.EncodeToString(b[:])
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
