package payments

import (
	"testing"
	"time"
)

func TestValidatePaymentRequest(t *testing.T) {
	base := paymentRequest{AppointmentID: "a1", Amount: 50, PaymentMethod: "cash", PaymentType: "deposit"}
	if err := base.validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []paymentRequest{
		{Amount: 50, PaymentMethod: "cash", PaymentType: "deposit"},
		{AppointmentID: "a1", Amount: 0, PaymentMethod: "cash", PaymentType: "deposit"},
		{AppointmentID: "a1", Amount: -10, PaymentMethod: "cash", PaymentType: "deposit"},
		{AppointmentID: "a1", Amount: 50, PaymentMethod: "bitcoin", PaymentType: "deposit"},
		{AppointmentID: "a1", Amount: 50, PaymentMethod: "cash", PaymentType: "tip"},
	}
	for i, c := range cases {
		if err := c.validate(); err == nil {
			t.Errorf("case %d: expected validation error, got none", i)
		}
	}
}

func TestAppointmentPaymentUpdate(t *testing.T) {
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	dep := appointmentPaymentUpdate("deposit", at)
	if dep["pricing.depositPaid"] != true {
		t.Errorf("deposit should mark pricing.depositPaid")
	}
	if dep["payment.status"] != "deposit_paid" {
		t.Errorf("deposit status = %v, want deposit_paid", dep["payment.status"])
	}
	if _, ok := dep["payment.paidAt"]; ok {
		t.Errorf("deposit must not set payment.paidAt")
	}

	for _, pt := range []string{"remaining", "full"} {
		u := appointmentPaymentUpdate(pt, at)
		if u["payment.status"] != "fully_paid" {
			t.Errorf("%s status = %v, want fully_paid", pt, u["payment.status"])
		}
		if u["payment.paidAt"] != at {
			t.Errorf("%s should set payment.paidAt", pt)
		}
		if _, ok := u["pricing.depositPaid"]; ok {
			t.Errorf("%s must not touch pricing.depositPaid", pt)
		}
	}
}
