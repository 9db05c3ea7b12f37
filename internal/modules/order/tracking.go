package order

import "crypto/rand"

const (
	trackingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	trackingLength   = 5
	trackingPrefix   = "TRX-"
)

// NewTrackingCode returns the short human-facing order identifier. Codes are
// not checked for uniqueness up front; the unique index on tracking_id turns
// the (rare) collision into a write error instead of a silent duplicate.
func NewTrackingCode() string {
	var b [trackingLength]byte
	_, _ = rand.Read(b[:])
	out := make([]byte, 0, len(trackingPrefix)+trackingLength)
	out = append(out, trackingPrefix...)
	for _, v := range b {
		out = append(out, trackingAlphabet[int(v)%len(trackingAlphabet)])
	}
	return string(out)
}
