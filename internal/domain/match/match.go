// Package match decides whether a trap's trigger conditions are satisfied by
// a session's event stream. All functions are pure and deterministic.
package match

import "github.com/okian/decoy/internal/domain/model"

// Derived rule identifiers recognized by the matcher. Any other identifier is
// treated as unsatisfied, never as an error.
const (
	// RuleClickedPhishNoInspect: clicked the known-malicious link and at no
	// point inspected the sender or the URL.
	RuleClickedPhishNoInspect = "clicked-phishing-link-without-any-inspect"
	// RuleCardWithoutURLInspect: submitted card details without ever
	// inspecting the URL.
	RuleCardWithoutURLInspect = "no-inspect-url-before-submit-card"
)

// phishMessageID identifies the malicious email the phishing rule keys on.
const phishMessageID = "bank-kyc-phish"

// Triggered reports whether any of the trap's trigger specifications is
// satisfied by the event stream (OR semantics). A trap triggers at most once
// regardless of how many events match.
func Triggered(trap model.Trap, events []model.Event) bool {
	for _, trigger := range trap.TriggerEvents {
		if satisfied(trigger, events) {
			return true
		}
	}
	return false
}

func satisfied(trigger model.Trigger, events []model.Event) bool {
	if trigger.IsDerived() {
		return derived(trigger.Rule, events)
	}

	for _, e := range events {
		if matchesPattern(trigger, e) {
			return true
		}
	}
	return false
}

// matchesPattern checks a simple pattern: the event type must equal the
// trigger type and every declared field must be equal under two-step lookup.
func matchesPattern(trigger model.Trigger, e model.Event) bool {
	if e.Type != trigger.Type {
		return false
	}
	for key, want := range trigger.Fields {
		got, ok := lookupField(e, key)
		if !ok || !valueEqual(got, want) {
			return false
		}
	}
	return true
}

// lookupField resolves a trigger field against an event: the payload is
// consulted first, then the event's own top-level fields.
func lookupField(e model.Event, key string) (any, bool) {
	if e.Payload != nil {
		if v, ok := e.Payload[key]; ok {
			return v, true
		}
	}
	switch key {
	case "type":
		return e.Type, true
	case "ts":
		return e.TS, true
	}
	return nil, false
}

// valueEqual compares scalar values: strings, booleans, and numbers. Numbers
// are compared as float64 since JSON decoding produces float64 while events
// carry int64 timestamps. No wildcards, no ranges.
func valueEqual(got, want any) bool {
	if gf, ok := asFloat(got); ok {
		wf, ok := asFloat(want)
		return ok && gf == wf
	}
	switch g := got.(type) {
	case string:
		w, ok := want.(string)
		return ok && g == w
	case bool:
		w, ok := want.(bool)
		return ok && g == w
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// derived evaluates a named rule over the entire event stream. Both rules are
// deliberately order-insensitive: they check presence and absence only, not
// the temporal relationship between the risky action and the inspection.
func derived(rule string, events []model.Event) bool {
	switch rule {
	case RuleClickedPhishNoInspect:
		clicked := false
		for _, e := range events {
			if e.Type == "click-link" && e.Payload != nil {
				if id, _ := e.Payload["messageId"].(string); id == phishMessageID {
					clicked = true
					break
				}
			}
		}
		if !clicked {
			return false
		}
		return !anyOfType(events, "inspect-sender", "inspect-url")
	case RuleCardWithoutURLInspect:
		if !anyOfType(events, "submit-card") {
			return false
		}
		return !anyOfType(events, "inspect-url")
	default:
		return false
	}
}

func anyOfType(events []model.Event, types ...string) bool {
	for _, e := range events {
		for _, t := range types {
			if e.Type == t {
				return true
			}
		}
	}
	return false
}
