package confirmations

import (
	"strings"
	"testing"
	"time"
)

func TestQRPayloadRoundTrip(t *testing.T) {
	issued := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	payload := qrPayload("appt-123", "user-9", issued)

	if !strings.HasPrefix(payload, "appt-123|user-9|") {
		t.Fatalf("payload = %q, want appointment and user prefix", payload)
	}

	got, err := VerifyQRPayload(payload)
	if err != nil {
		t.Fatalf("VerifyQRPayload: %v", err)
	}
	if got != "appt-123" {
		t.Errorf("appointment id = %q, want appt-123", got)
	}
}

func TestVerifyQRPayloadRejectsTampering(t *testing.T) {
	payload := qrPayload("appt-123", "user-9", time.Now())
	forged := strings.Replace(payload, "appt-123", "appt-999", 1)
	if _, err := VerifyQRPayload(forged); err == nil {
		t.Error("tampered payload should fail verification")
	}
}

func TestVerifyQRPayloadRejectsGarbage(t *testing.T) {
	for _, p := range []string{"", "a|b", "a|b|c|d|e"} {
		if _, err := VerifyQRPayload(p); err == nil {
			t.Errorf("payload %q should fail verification", p)
		}
	}
}
