package documents

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

var idSeq atomic.Uint64

// NewDocID builds a document id from a wall-clock timestamp component, a
// process-local sequence number and the first 16 hex chars of the content's
// SHA-256. The timestamp+sequence part makes identical content stored twice
// yield distinct ids; the hash part binds the id to the stored bytes.
// Ids sort lexically in creation order.
func NewDocID(content []byte, now time.Time) DocID {
	sum := sha256.Sum256(content)
	ts := now.UTC().Format("20060102T150405.000000000")
	n := idSeq.Add(1) % 1000000
	return DocID(fmt.Sprintf("%s_%06d_%s", ts, n, hex.EncodeToString(sum[:8])))
}

// Checksum returns the hex SHA-256 digest of content.
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
