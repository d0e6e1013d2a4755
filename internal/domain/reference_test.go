package domain

import (
	"strings"
	"testing"
	"time"
)

func TestNewReferenceFormat(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	ref := NewReference(RefPrefixCommande, now)

	if !strings.HasPrefix(ref, "CMD260314-") {
		t.Fatalf("unexpected reference prefix: %s", ref)
	}
	suffix := strings.TrimPrefix(ref, "CMD260314-")
	if len(suffix) != 4 {
		t.Fatalf("unexpected suffix length: %s", suffix)
	}
	for _, r := range suffix {
		if !strings.ContainsRune(refAlphabet, r) {
			t.Fatalf("suffix character outside alphabet: %c", r)
		}
	}
}

func TestNewReferencePrefixes(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	for _, prefix := range []string{RefPrefixCommande, RefPrefixAvoir, RefPrefixVente, RefPrefixTransfert} {
		ref := NewReference(prefix, now)
		if !strings.HasPrefix(ref, prefix+"260102-") {
			t.Fatalf("prefix %s: unexpected reference %s", prefix, ref)
		}
	}
}
