package label_test

import (
	"testing"

	"github.com/okian/decoy/internal/domain/label"
	"github.com/okian/decoy/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestForEvent(t *testing.T) {
	Convey("Given the event labeler", t, func() {
		Convey("When labeling known event types", func() {
			So(label.ForEvent(model.Event{
				Type:    "view-inbox",
				Payload: map[string]any{"emailCount": 5.0},
			}), ShouldEqual, "Opened email inbox (5 emails)")

			So(label.ForEvent(model.Event{
				Type:    "click-link",
				Payload: map[string]any{"url": "http://secure-bank.example"},
			}), ShouldEqual, "Clicked link: http://secure-bank.example")

			So(label.ForEvent(model.Event{
				Type:    "inspect-sender",
				Payload: map[string]any{"fromAddress": "alerts@bank.example"},
			}), ShouldEqual, "Inspected sender: alerts@bank.example")

			So(label.ForEvent(model.Event{Type: "report-email"}), ShouldEqual, "Reported email as phishing")
			So(label.ForEvent(model.Event{Type: "submit-card"}), ShouldEqual, "Submitted card payment details")
			So(label.ForEvent(model.Event{Type: "decline-upi"}), ShouldEqual, "Declined UPI payment")
		})

		Convey("When labeling payment events with amounts", func() {
			So(label.ForEvent(model.Event{
				Type:    "scan-qr",
				Payload: map[string]any{"amount": 500.0},
			}), ShouldEqual, "Scanned QR code (₹500)")

			So(label.ForEvent(model.Event{
				Type:    "approve-upi",
				Payload: map[string]any{"amount": 499.5},
			}), ShouldEqual, "Approved UPI payment (₹499.5)")
		})

		Convey("When the payload is missing", func() {
			Convey("Then the label still renders with fallbacks", func() {
				So(label.ForEvent(model.Event{Type: "view-inbox"}), ShouldEqual, "Opened email inbox (0 emails)")
				So(label.ForEvent(model.Event{Type: "scan-qr"}), ShouldEqual, "Scanned QR code (₹0)")
			})
		})

		Convey("When labeling unknown event types", func() {
			Convey("Then separators become spaces and words are title-cased", func() {
				So(label.ForEvent(model.Event{Type: "close-browser-tab"}), ShouldEqual, "Close Browser Tab")
				So(label.ForEvent(model.Event{Type: "copy_otp"}), ShouldEqual, "Copy Otp")
				So(label.ForEvent(model.Event{Type: "refresh"}), ShouldEqual, "Refresh")
			})

			Convey("Then multibyte first runes are upper-cased intact", func() {
				So(label.ForEvent(model.Event{Type: "étape-un"}), ShouldEqual, "Étape Un")
			})
		})
	})
}
