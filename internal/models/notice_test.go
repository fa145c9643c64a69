package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusPending, StatusPaid) {
		t.Fatal("expected pending -> paid to be allowed")
	}
	if !CanTransition(StatusPending, StatusExpired) {
		t.Fatal("expected pending -> expired to be allowed")
	}
	if !CanTransition(StatusPending, StatusFailed) {
		t.Fatal("expected pending -> failed to be allowed")
	}
	if !CanTransition(StatusPending, StatusCancelled) {
		t.Fatal("expected pending -> cancelled to be allowed")
	}
	if CanTransition(StatusPaid, StatusPending) {
		t.Fatal("paid must never regress to pending")
	}
	if CanTransition(StatusPaid, StatusExpired) {
		t.Fatal("paid must never move to expired")
	}
	if CanTransition(StatusExpired, StatusPaid) {
		t.Fatal("expired must never move to paid")
	}
	if !CanTransition(StatusPaid, StatusPaid) {
		t.Fatal("re-delivery of the same terminal status must be allowed as a no-op")
	}
	if CanTransition("unknown", StatusPaid) {
		t.Fatal("unknown source status must not transition")
	}
}

func TestIsTerminalStatus(t *testing.T) {
	terminal := []string{StatusPaid, StatusExpired, StatusFailed, StatusCancelled}
	for _, s := range terminal {
		if !IsTerminalStatus(s) {
			t.Errorf("expected %q to be terminal", s)
		}
	}
	if IsTerminalStatus(StatusPending) {
		t.Error("pending must not be terminal")
	}
	if IsTerminalStatus("") {
		t.Error("empty status must not be terminal")
	}
}

func TestNoticeExternalID(t *testing.T) {
	id := uuid.MustParse("6a9f9d2e-7c3b-4f25-9b53-1f6d8d2a1c10")
	got := NoticeExternalID(id)
	want := "notice_6a9f9d2e-7c3b-4f25-9b53-1f6d8d2a1c10"
	if got != want {
		t.Fatalf("external id mismatch: got %q, want %q", got, want)
	}
	n := PaymentNotice{ID: id}
	if n.ExternalID() != want {
		t.Fatalf("notice external id mismatch: got %q", n.ExternalID())
	}
}
