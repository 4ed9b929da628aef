package tracking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// tokenSuffixLen is the number of random base36 characters appended to the
// timestamp. 9 chars carry ~46.5 bits of entropy, enough that concurrent
// callers never need coordination and tokens cannot be enumerated.
const tokenSuffixLen = 9

// NewTrackingID mints an opaque, URL-safe tracking identifier in the same
// format the browser extension generates: track_<unix-millis>_<random>.
// It has no side effects; the caller is responsible for registering the id.
func NewTrackingID() string {
	return newTrackingIDAt(time.Now())
}

func newTrackingIDAt(now time.Time) string {
	buf := make([]byte, tokenSuffixLen)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken;
			// nothing sensible to do but panic, same as uuid.New.
			panic(fmt.Sprintf("tracking: rand failed: %v", err))
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return fmt.Sprintf("track_%d_%s", now.UnixMilli(), string(buf))
}
