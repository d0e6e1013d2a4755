package session

import (
	"errors"
	"testing"
	"time"

	"officine/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManagerWithClock("test-secret", time.Hour, nil)
	token, err := m.Issue("subject-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	subject, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "subject-1" {
		t.Fatalf("unexpected subject: %s", subject)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewManagerWithClock("test-secret", time.Minute, func() time.Time { return issued })
	token, err := issuer.Issue("subject-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	later := NewManagerWithClock("test-secret", time.Minute, func() time.Time {
		return issued.Add(2 * time.Minute)
	})
	if _, err := later.Verify(token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := NewManagerWithClock("secret-a", time.Hour, nil)
	token, err := m.Issue("subject-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other := NewManagerWithClock("secret-b", time.Hour, nil)
	if _, err := other.Verify(token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := NewManagerWithClock("test-secret", time.Hour, nil)
	for _, token := range []string{"", "   ", "not-a-token", "a.b.c"} {
		if _, err := m.Verify(token); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("token %q: expected ErrUnauthenticated, got %v", token, err)
		}
	}
}

func TestIssueRequiresSubject(t *testing.T) {
	m := NewManagerWithClock("test-secret", time.Hour, nil)
	if _, err := m.Issue(""); err == nil {
		t.Fatal("expected error for empty subject")
	}
}
