// Package model contains the domain types shared between the catalog,
// session store, matcher, and evaluator.
package model

import (
	"encoding/json"
	"fmt"
)

// TriggerTypeDerived marks a trigger whose satisfaction is decided by a named
// rule instead of field matching.
const TriggerTypeDerived = "derived"

// Trigger is one condition attached to a trap. Either a simple pattern
// (an event type plus required field equalities) or a derived rule.
type Trigger struct {
	// Type is the event type to match, or "derived".
	Type string
	// Rule names the derived predicate when Type == "derived".
	Rule string
	// Fields holds the required field equalities for simple patterns.
	// Keys are looked up in the event payload first, then on the event itself.
	Fields map[string]any
}

// IsDerived reports whether the trigger is a derived rule.
func (t Trigger) IsDerived() bool {
	return t.Type == TriggerTypeDerived
}

// UnmarshalJSON decodes the authored trigger shape, where every key other
// than "type" (and "rule" on derived triggers) is a required field equality.
func (t *Trigger) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode trigger: %w", err)
	}

	typ, ok := raw["type"].(string)
	if !ok {
		return fmt.Errorf("decode trigger: missing string type")
	}
	t.Type = typ
	delete(raw, "type")

	if t.Type == TriggerTypeDerived {
		rule, _ := raw["rule"].(string)
		t.Rule = rule
		delete(raw, "rule")
	}

	if len(raw) > 0 {
		t.Fields = raw
	} else {
		t.Fields = nil
	}
	return nil
}

// MarshalJSON emits the flat authored shape.
func (t Trigger) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(t.Fields)+2)
	for k, v := range t.Fields {
		raw[k] = v
	}
	raw["type"] = t.Type
	if t.Type == TriggerTypeDerived && t.Rule != "" {
		raw["rule"] = t.Rule
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode trigger: %w", err)
	}
	return b, nil
}

// Trap is a declarative rule describing a risky action (positive severity)
// or a protective action (negative severity). A negative-severity trap that
// never triggers is reported as a missed red flag.
type Trap struct {
	ID            string    `json:"id"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Severity      int       `json:"severity"`
	TriggerEvents []Trigger `json:"triggerEvents"`
}

// DebriefContent is the static authored guidance attached to a lab.
type DebriefContent struct {
	RealWorldConsequences []string          `json:"realWorldConsequences"`
	PreventionTips        []string          `json:"preventionTips"`
	RedFlagHints          map[string]string `json:"redFlagHints"`
}

// LabDefinition is one simulated scam scenario. Immutable once loaded.
type LabDefinition struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Difficulty string          `json:"difficulty"`
	Summary    string          `json:"summary"`
	// Environment is opaque configuration consumed only by the presentation
	// layer; the engine passes it through untouched.
	Environment json.RawMessage `json:"environment,omitempty"`
	Traps       []Trap          `json:"traps"`
	Debrief     DebriefContent  `json:"debrief"`
}

// Event is one recorded trainee interaction. TS is unix milliseconds.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
	TS      int64          `json:"ts"`
}

// Session is one trainee's run through a lab. Events are append-only until
// completion; after EndedAt is set the record is logically read-only.
type Session struct {
	ID        string  `json:"id"`
	LabID     string  `json:"labId"`
	StartedAt int64   `json:"startedAt"`
	EndedAt   *int64  `json:"endedAt"`
	Events    []Event `json:"events"`
}

// RiskBand is the three-tier classification of a clamped risk score.
type RiskBand string

// Risk band values.
const (
	BandSafe      RiskBand = "Safe"
	BandRisky     RiskBand = "Risky"
	BandDangerous RiskBand = "Dangerous"
)

// Mistake is a triggered trap with positive severity.
type Mistake struct {
	TrapID      string `json:"trapId"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Severity    int    `json:"severity"`
}

// GoodAction is a triggered trap with negative severity.
type GoodAction struct {
	TrapID      string `json:"trapId"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Bonus       int    `json:"bonus"`
}

// MissedRedFlag is a protective trap the trainee never triggered.
type MissedRedFlag struct {
	TrapID      string `json:"trapId"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// TimelineEntry is one labeled event in the chronological debrief view.
type TimelineEntry struct {
	TS            int64          `json:"ts"`
	OffsetSeconds int            `json:"offsetSeconds"`
	Type          string         `json:"type"`
	Label         string         `json:"label"`
	Payload       map[string]any `json:"payload"`
}

// Debrief is the computed outcome of a completed session. It is recomputed
// on each evaluation, never stored.
type Debrief struct {
	RiskScore             int               `json:"riskScore"`
	RiskBand              RiskBand          `json:"riskBand"`
	Mistakes              []Mistake         `json:"mistakes"`
	MissedRedFlags        []MissedRedFlag   `json:"missedRedFlags"`
	GoodActions           []GoodAction      `json:"goodActions"`
	Timeline              []TimelineEntry   `json:"timeline"`
	LearningSummary       string            `json:"learningSummary"`
	RealWorldConsequences []string          `json:"realWorldConsequences"`
	PreventionTips        []string          `json:"preventionTips"`
	RedFlagHints          map[string]string `json:"redFlagHints"`
}
