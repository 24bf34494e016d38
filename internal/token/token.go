package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
)

// Rotation windows. LAB QR tokens rotate every 15 seconds so a screen
// recording goes stale almost immediately; THEORY PINs rotate on the
// 5 minute cadence of the rotation scheduler.
const (
	LabWindowMillis    int64 = 15_000
	TheoryWindowMillis int64 = 300_000
)

// Derive computes the rotating token for a secret at a point in time.
// It is pure: every caller that agrees on the secret and the window
// derives the same lowercase hex digest, so the token never has to be
// stored. The displayed QR payload and the verifier both call this.
func Derive(secret string, nowMillis, windowMillis int64) string {
	step := nowMillis / windowMillis
	sum := sha256.Sum256([]byte(secret + strconv.FormatInt(step, 10)))
	return hex.EncodeToString(sum[:])
}

// Matches reports whether presented equals the token for the current
// window or for one of the skewWindows immediately preceding windows.
// Accepting the prior window absorbs a few seconds of client clock
// drift and network latency without widening the replay surface much.
func Matches(secret, presented string, nowMillis, windowMillis int64, skewWindows int) bool {
	if presented == "" {
		return false
	}
	for i := 0; i <= skewWindows; i++ {
		at := nowMillis - int64(i)*windowMillis
		if at < 0 {
			break
		}
		expected := Derive(secret, at, windowMillis)
		if subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1 {
			return true
		}
	}
	return false
}
