// Package evaluate turns a completed session and its lab definition into a
// scored debrief. Evaluation is pure: identical inputs yield identical
// debriefs, and no I/O happens here.
package evaluate

import (
	"math"
	"sort"

	"github.com/okian/decoy/internal/domain/label"
	"github.com/okian/decoy/internal/domain/match"
	"github.com/okian/decoy/internal/domain/model"
)

// Score bounds and classification thresholds. These are fixed constants of
// the training domain, not per-lab configuration.
const (
	minRiskScore = 0
	maxRiskScore = 100

	dangerousThreshold = 70
	riskyThreshold     = 40
	// awarenessThreshold adds a fourth tier for the learning summary only.
	// The band classification stays three-tiered; the two sets of cut points
	// are intentionally independent.
	awarenessThreshold = 20
)

// The four canned learning summaries, keyed by score tier.
const (
	summaryDangerous = "You fell for several traps in this simulation. This is a learning experience - review the red flags and prevention tips carefully."
	summaryRisky     = "You showed some caution but still engaged with risky elements. Focus on verifying before acting."
	summaryAware     = "Good awareness! You avoided most traps but there is still room for improvement."
	summarySafe      = "Excellent scam awareness! You recognized the warning signs and protected yourself."
)

// Session evaluates every trap in the lab against the session's event
// stream and assembles the full debrief.
func Session(lab model.LabDefinition, session model.Session) model.Debrief {
	mistakes := []model.Mistake{}
	goodActions := []model.GoodAction{}
	missed := []model.MissedRedFlag{}
	triggered := make(map[string]bool, len(lab.Traps))

	rawScore := 0
	for _, trap := range lab.Traps {
		if !match.Triggered(trap, session.Events) {
			continue
		}
		triggered[trap.ID] = true
		rawScore += trap.Severity

		switch {
		case trap.Severity > 0:
			mistakes = append(mistakes, model.Mistake{
				TrapID:      trap.ID,
				Category:    trap.Category,
				Description: trap.Description,
				Severity:    trap.Severity,
			})
		case trap.Severity < 0:
			goodActions = append(goodActions, model.GoodAction{
				TrapID:      trap.ID,
				Category:    trap.Category,
				Description: trap.Description,
				Bonus:       -trap.Severity,
			})
		}
		// Zero-severity traps count as triggered but appear nowhere.
	}

	// Protective traps the trainee never took are missed opportunities.
	for _, trap := range lab.Traps {
		if trap.Severity < 0 && !triggered[trap.ID] {
			missed = append(missed, model.MissedRedFlag{
				TrapID:      trap.ID,
				Category:    trap.Category,
				Description: trap.Description,
			})
		}
	}

	riskScore := clamp(rawScore)

	return model.Debrief{
		RiskScore:             riskScore,
		RiskBand:              classify(riskScore),
		Mistakes:              mistakes,
		MissedRedFlags:        missed,
		GoodActions:           goodActions,
		Timeline:              buildTimeline(session),
		LearningSummary:       learningSummary(riskScore),
		RealWorldConsequences: orEmpty(lab.Debrief.RealWorldConsequences),
		PreventionTips:        orEmpty(lab.Debrief.PreventionTips),
		RedFlagHints:          orEmptyMap(lab.Debrief.RedFlagHints),
	}
}

// TriggeredCount returns how many of the debrief's traps fired; used for
// metrics at the call site.
func TriggeredCount(d model.Debrief) int {
	return len(d.Mistakes) + len(d.GoodActions)
}

func clamp(raw int) int {
	if raw < minRiskScore {
		return minRiskScore
	}
	if raw > maxRiskScore {
		return maxRiskScore
	}
	return raw
}

func classify(score int) model.RiskBand {
	switch {
	case score >= dangerousThreshold:
		return model.BandDangerous
	case score >= riskyThreshold:
		return model.BandRisky
	default:
		return model.BandSafe
	}
}

// learningSummary selects one of four canned messages. Its tiers share the
// 70/40 cut points with the band but add a 20 tier; the two outputs must not
// be unified.
func learningSummary(score int) string {
	switch {
	case score >= dangerousThreshold:
		return summaryDangerous
	case score >= riskyThreshold:
		return summaryRisky
	case score >= awarenessThreshold:
		return summaryAware
	default:
		return summarySafe
	}
}

// buildTimeline sorts events chronologically and labels each one. Insertion
// order is irrelevant here; client-supplied timestamps decide the order.
func buildTimeline(session model.Session) []model.TimelineEntry {
	events := make([]model.Event, len(session.Events))
	copy(events, session.Events)
	sort.SliceStable(events, func(i, j int) bool { return events[i].TS < events[j].TS })

	timeline := make([]model.TimelineEntry, 0, len(events))
	for _, e := range events {
		offset := math.Round(float64(e.TS-session.StartedAt) / 1000)
		if offset < 0 {
			offset = 0
		}
		payload := e.Payload
		if payload == nil {
			payload = map[string]any{}
		}
		timeline = append(timeline, model.TimelineEntry{
			TS:            e.TS,
			OffsetSeconds: int(offset),
			Type:          e.Type,
			Label:         label.ForEvent(e),
			Payload:       payload,
		})
	}
	return timeline
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
