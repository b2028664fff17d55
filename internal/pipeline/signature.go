package pipeline

import "fmt"

// Signature fingerprints a raw batch: its length plus a rolling hash over the
// bytes. Cheap by design — it only guards a polling loop against reprocessing
// an unmodified inbox, not against adversarial collisions.
func Signature(raw string) string {
	var h uint32
	for i := 0; i < len(raw); i++ {
		h = h*31 + uint32(raw[i])
	}
	return fmt.Sprintf("%d:%08x", len(raw), h)
}
