// Package label maps raw interaction events to human-readable timeline lines.
// It is pure presentation logic for the debrief and must stay total: every
// event gets a label, known type or not.
package label

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/okian/decoy/internal/domain/model"
)

// ForEvent returns the timeline label for an event.
func ForEvent(e model.Event) string {
	p := e.Payload

	switch e.Type {
	case "view-inbox":
		return fmt.Sprintf("Opened email inbox (%v emails)", field(p, "emailCount", 0))
	case "open-email":
		return fmt.Sprintf("Opened email: %q", field(p, "messageId", ""))
	case "hover-link":
		return fmt.Sprintf("Hovered over link: %v", field(p, "url", ""))
	case "click-link":
		return fmt.Sprintf("Clicked link: %v", field(p, "url", ""))
	case "inspect-sender":
		return fmt.Sprintf("Inspected sender: %v", field(p, "fromAddress", ""))
	case "inspect-url":
		return fmt.Sprintf("Inspected URL/certificate: %v", field(p, "url", ""))
	case "report-email":
		return "Reported email as phishing"
	case "submit-login":
		return "Entered credentials on login page"
	case "view-product":
		return "Viewed product details"
	case "add-to-cart":
		return "Added item to cart"
	case "click-buy-now":
		return `Clicked "Buy Now" button`
	case "start-checkout":
		return "Started checkout process"
	case "submit-card":
		return "Submitted card payment details"
	case "send-chat":
		return fmt.Sprintf("Sent chat message: %q", field(p, "text", ""))
	case "scan-qr":
		return fmt.Sprintf("Scanned QR code (₹%v)", amount(p))
	case "approve-upi":
		return fmt.Sprintf("Approved UPI payment (₹%v)", amount(p))
	case "decline-upi":
		return "Declined UPI payment"
	case "exit-chat":
		return "Exited chat conversation"
	default:
		return titleCase(e.Type)
	}
}

// field returns the payload value for key, or fallback when absent.
func field(p map[string]any, key string, fallback any) any {
	if p == nil {
		return fallback
	}
	v, ok := p[key]
	if !ok || v == nil {
		return fallback
	}
	return v
}

// amount formats the payload amount without a trailing ".0" for whole values.
func amount(p map[string]any) any {
	v := field(p, "amount", 0)
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return int64(f)
	}
	return v
}

// titleCase turns an unknown event type into a generic label: separators
// become spaces and each word is capitalized, e.g. "close-tab" -> "Close Tab".
func titleCase(t string) string {
	t = strings.ReplaceAll(t, "-", " ")
	t = strings.ReplaceAll(t, "_", " ")
	words := strings.Fields(t)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
