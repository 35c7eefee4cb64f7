package booking

import (
	"fmt"
	"strings"

	"tattootime/models"
)

func customerConfirmationHTML(appt *models.Appointment, slot *models.Slot, studioName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hello %s,</p>", appt.ClientName)
	fmt.Fprintf(&b, "<p>Thank you for booking with %s!</p>", studioName)
	fmt.Fprintf(&b, "<p>Your appointment on <strong>%s</strong> at <strong>%s - %s</strong>.</p>",
		slot.Date, slot.StartTime, slot.EndTime)

	if p := appt.Pricing; p != nil {
		b.WriteString("<h3>Price overview:</h3><ul>")
		fmt.Fprintf(&b, "<li><strong>Total price:</strong> %.2f€</li>", p.TotalPrice)
		fmt.Fprintf(&b, "<li><strong>Deposit:</strong> %.2f€</li>", p.DepositAmount)
		fmt.Fprintf(&b, "<li><strong>Remaining:</strong> %.2f€</li>", p.TotalPrice-p.DepositAmount)
		b.WriteString("</ul><p>Please pay the deposit to secure your appointment.</p>")
	}
	if appt.Notes != "" {
		fmt.Fprintf(&b, "<p><strong>Notes:</strong> %s</p>", appt.Notes)
	}
	fmt.Fprintf(&b, "<p>We look forward to seeing you!</p><p>Best regards,</p><p>Your %s team</p>", studioName)
	return b.String()
}

func adminNotificationHTML(appt *models.Appointment, slot *models.Slot) string {
	var b strings.Builder
	b.WriteString("<p>Hello Admin,</p><p>A new appointment was booked:</p><ul>")
	fmt.Fprintf(&b, "<li><strong>Client:</strong> %s</li>", appt.ClientName)
	fmt.Fprintf(&b, "<li><strong>Email:</strong> %s</li>", appt.ClientEmail)
	fmt.Fprintf(&b, "<li><strong>Service:</strong> %s</li>", appt.ServiceType)
	fmt.Fprintf(&b, "<li><strong>Date:</strong> %s</li>", slot.Date)
	fmt.Fprintf(&b, "<li><strong>Time:</strong> %s - %s</li>", slot.StartTime, slot.EndTime)
	if appt.BodyPart != "" {
		fmt.Fprintf(&b, "<li><strong>Body part:</strong> %s</li>", appt.BodyPart)
	}
	if appt.TattooStyle != "" {
		fmt.Fprintf(&b, "<li><strong>Style:</strong> %s</li>", appt.TattooStyle)
	}
	if appt.Pricing != nil {
		fmt.Fprintf(&b, "<li><strong>Price:</strong> %.2f€</li>", appt.Pricing.TotalPrice)
	}
	if appt.Notes != "" {
		fmt.Fprintf(&b, "<li><strong>Notes:</strong> %s</li>", appt.Notes)
	}
	b.WriteString("</ul>")
	return b.String()
}
