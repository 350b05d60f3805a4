package model_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/decoy/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTriggerCodec(t *testing.T) {
	Convey("Given authored trigger JSON", t, func() {
		Convey("When decoding a simple pattern with field equalities", func() {
			var tr model.Trigger
			err := json.Unmarshal([]byte(`{"type":"click-link","messageId":"bank-kyc-phish"}`), &tr)

			Convey("Then type and fields are split out", func() {
				So(err, ShouldBeNil)
				So(tr.Type, ShouldEqual, "click-link")
				So(tr.IsDerived(), ShouldBeFalse)
				So(tr.Fields["messageId"], ShouldEqual, "bank-kyc-phish")
			})
		})

		Convey("When decoding a bare type-only pattern", func() {
			var tr model.Trigger
			err := json.Unmarshal([]byte(`{"type":"inspect-url"}`), &tr)

			Convey("Then no fields are required", func() {
				So(err, ShouldBeNil)
				So(tr.Type, ShouldEqual, "inspect-url")
				So(tr.Fields, ShouldBeNil)
			})
		})

		Convey("When decoding a derived rule", func() {
			var tr model.Trigger
			err := json.Unmarshal([]byte(`{"type":"derived","rule":"no-inspect-url-before-submit-card"}`), &tr)

			Convey("Then the rule name is captured", func() {
				So(err, ShouldBeNil)
				So(tr.IsDerived(), ShouldBeTrue)
				So(tr.Rule, ShouldEqual, "no-inspect-url-before-submit-card")
			})
		})

		Convey("When the trigger has no string type", func() {
			var tr model.Trigger
			err := json.Unmarshal([]byte(`{"rule":"x"}`), &tr)

			Convey("Then decoding fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When round-tripping a trigger", func() {
			var tr model.Trigger
			So(json.Unmarshal([]byte(`{"type":"scan-qr","amount":500}`), &tr), ShouldBeNil)

			out, err := json.Marshal(tr)
			So(err, ShouldBeNil)

			var back model.Trigger
			So(json.Unmarshal(out, &back), ShouldBeNil)

			Convey("Then type and fields survive", func() {
				So(back.Type, ShouldEqual, "scan-qr")
				So(back.Fields["amount"], ShouldEqual, 500.0)
			})
		})
	})
}

func TestLabDefinitionDecoding(t *testing.T) {
	Convey("Given a full authored lab definition", t, func() {
		raw := `{
			"id": "phishing-email-basic",
			"name": "Urgent KYC Email",
			"type": "phishing-email",
			"difficulty": "beginner",
			"summary": "Spot the fake bank email.",
			"environment": {"inbox": [{"id": "bank-kyc-phish"}]},
			"traps": [
				{
					"id": "clicked-phish",
					"category": "action",
					"description": "Clicked the phishing link",
					"severity": 40,
					"triggerEvents": [{"type": "click-link", "messageId": "bank-kyc-phish"}]
				}
			],
			"debrief": {
				"realWorldConsequences": ["Account takeover"],
				"preventionTips": ["Check the sender domain"],
				"redFlagHints": {"clicked-phish": "The URL was not your bank's domain"}
			}
		}`

		var lab model.LabDefinition
		err := json.Unmarshal([]byte(raw), &lab)

		Convey("Then all sections decode", func() {
			So(err, ShouldBeNil)
			So(lab.ID, ShouldEqual, "phishing-email-basic")
			So(lab.Traps, ShouldHaveLength, 1)
			So(lab.Traps[0].Severity, ShouldEqual, 40)
			So(lab.Traps[0].TriggerEvents[0].Fields["messageId"], ShouldEqual, "bank-kyc-phish")
			So(lab.Debrief.RedFlagHints["clicked-phish"], ShouldNotBeEmpty)
			So(string(lab.Environment), ShouldContainSubstring, "inbox")
		})
	})
}
