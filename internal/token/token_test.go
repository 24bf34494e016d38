package token

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestDeriveStableWithinWindow(t *testing.T) {
	secret := "k3yzq8w7x1v5p9r2m4n6"

	// Any two instants inside the same 15s window derive the same token.
	base := int64(1_700_000_010_000)
	windowStart := (base / LabWindowMillis) * LabWindowMillis
	a := Derive(secret, windowStart, LabWindowMillis)
	b := Derive(secret, windowStart+LabWindowMillis-1, LabWindowMillis)
	if a != b {
		t.Fatalf("tokens differ within one window: %s vs %s", a, b)
	}
}

func TestDeriveChangesAcrossWindows(t *testing.T) {
	secret := "k3yzq8w7x1v5p9r2m4n6"
	base := int64(1_700_000_010_000)
	windowStart := (base / LabWindowMillis) * LabWindowMillis

	cur := Derive(secret, windowStart, LabWindowMillis)
	next := Derive(secret, windowStart+LabWindowMillis, LabWindowMillis)
	if cur == next {
		t.Fatalf("adjacent windows derived the same token %s", cur)
	}
}

func TestDeriveWireFormat(t *testing.T) {
	secret := "secret"
	now := int64(45_000) // step 3 at the 15s window
	got := Derive(secret, now, LabWindowMillis)

	sum := sha256.Sum256([]byte("secret3"))
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Fatalf("Derive(%q, %d) = %s, want %s", secret, now, got, want)
	}
	if len(got) != 64 || got != strings.ToLower(got) {
		t.Fatalf("token is not a lowercase hex sha256 digest: %s", got)
	}
}

func TestMatchesAcceptsPreviousWindow(t *testing.T) {
	secret := "k3yzq8w7x1v5p9r2m4n6"
	now := int64(1_700_000_010_000)

	stale := Derive(secret, now-LabWindowMillis, LabWindowMillis)
	if !Matches(secret, stale, now, LabWindowMillis, 1) {
		t.Fatal("token from the immediately preceding window should be accepted")
	}
}

func TestMatchesRejectsOlderWindows(t *testing.T) {
	secret := "k3yzq8w7x1v5p9r2m4n6"
	now := int64(1_700_000_010_000)

	old := Derive(secret, now-2*LabWindowMillis, LabWindowMillis)
	if Matches(secret, old, now, LabWindowMillis, 1) {
		t.Fatal("token two windows old should be rejected")
	}
	if Matches(secret, "", now, LabWindowMillis, 1) {
		t.Fatal("empty token should never match")
	}
	if Matches(secret, "not-a-token", now, LabWindowMillis, 1) {
		t.Fatal("garbage token should be rejected")
	}
}
