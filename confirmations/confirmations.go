package confirmations

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tattootime/apperr"
	"tattootime/db"
	"tattootime/globals"
	"tattootime/models"
	"tattootime/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// qrPayload builds the signed check-in string:
// appointmentId|userId|timestamp|signature. The front desk scanner verifies
// the signature against the same secret.
func qrPayload(appointmentID, userID string, issuedAt time.Time) string {
	data := fmt.Sprintf("%s|%s|%d", appointmentID, userID, issuedAt.Unix())
	h := hmac.New(sha256.New, globals.QRSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyQRPayload checks the signature on a scanned payload and returns the
// appointment id it was issued for.
func VerifyQRPayload(payload string) (string, error) {
	parts := bytes.Split([]byte(payload), []byte("|"))
	if len(parts) != 4 {
		return "", errors.New("malformed payload")
	}
	data := bytes.Join(parts[:3], []byte("|"))
	h := hmac.New(sha256.New, globals.QRSecret)
	h.Write(data)
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if !hmac.Equal([]byte(want), parts[3]) {
		return "", errors.New("signature mismatch")
	}
	return string(parts[0]), nil
}

// PrintConfirmation serves the appointment confirmation as a PDF with a
// signed QR code for studio check-in. Owners and admins only.
func PrintConfirmation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		apperr.Respond(w, apperr.E(apperr.Unauthenticated, "Sign in required"))
		return
	}
	appointmentID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var appt models.Appointment
	err := db.AppointmentsCollection.FindOne(ctx, bson.M{"id": appointmentID}).Decode(&appt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apperr.Respond(w, apperr.E(apperr.NotFound, "The requested appointment does not exist"))
		return
	}
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to load appointment", err))
		return
	}
	if appt.UserID != userID && !utils.IsAdmin(r) {
		apperr.Respond(w, apperr.E(apperr.PermissionDenied, "This is not your appointment"))
		return
	}

	qrPNG, err := qrcode.Encode(qrPayload(appt.ID, appt.UserID, time.Now()), qrcode.Medium, 256)
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to generate QR code", err))
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, globals.StudioName)
	pdf.Ln(14)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Appointment Confirmation")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Booking ID: %s", appt.ID))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Name: %s", appt.ClientName))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Service: %s", appt.ServiceType))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s at %s", appt.Date, appt.Time))
	pdf.Ln(8)
	if appt.Pricing != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f EUR (deposit %.2f EUR)", appt.Pricing.TotalPrice, appt.Pricing.DepositAmount))
		pdf.Ln(8)
	}
	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 10)
	pdf.Cell(0, 8, "Show the QR code at the front desk when you arrive.")

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to generate PDF", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=confirmation-"+appt.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
