package orders

import (
	"math/rand"
	"strings"
)

const (
	trackingPrefix   = "ORD-"
	trackingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	trackingLength   = 8
)

// GenerateTrackingID draws a customer-facing tracking id of the form
// ORD-XXXXXXXX. Ids are short by design, so collisions are possible; the
// service checks the store and redraws.
func GenerateTrackingID() string {
	var b strings.Builder
	b.Grow(len(trackingPrefix) + trackingLength)
	b.WriteString(trackingPrefix)
	for i := 0; i < trackingLength; i++ {
		b.WriteByte(trackingAlphabet[rand.Intn(len(trackingAlphabet))])
	}
	return b.String()
}
