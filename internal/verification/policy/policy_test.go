package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gatekeeper/internal/verification/models"
)

func raw(valid, age, ofac bool) models.RawResult {
	return models.RawResult{IsValidDetails: models.ValidityDetails{
		IsValid:           valid,
		IsMinimumAgeValid: age,
		IsOfacValid:       ofac,
	}}
}

func TestEvaluate_Precedence(t *testing.T) {
	p := Default()

	tests := []struct {
		name     string
		input    models.RawResult
		accepted bool
		reason   models.ReasonCode
	}{
		{"validity checked first", raw(false, false, true), false, models.ReasonInvalidProof},
		{"invalid proof alone", raw(false, true, false), false, models.ReasonInvalidProof},
		{"age before sanctions", raw(true, false, true), false, models.ReasonAgeBelowMinimum},
		{"age alone", raw(true, false, false), false, models.ReasonAgeBelowMinimum},
		{"sanctions before success", raw(true, true, true), false, models.ReasonSanctionsMatch},
		{"accepted", raw(true, true, false), true, models.ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Evaluate(tt.input)
			assert.Equal(t, models.Outcome{Accepted: tt.accepted, Reason: tt.reason}, got)
		})
	}
}

func TestEvaluate_AllCombinations(t *testing.T) {
	p := Default()
	for _, valid := range []bool{false, true} {
		for _, age := range []bool{false, true} {
			for _, ofac := range []bool{false, true} {
				got := p.Evaluate(raw(valid, age, ofac))
				assert.Equal(t, valid && age && !ofac, got.Accepted)
				assert.Equal(t, got.Accepted, got.Reason == models.ReasonNone)
			}
		}
	}
}

func TestEvaluate_SanctionsNotEnforced(t *testing.T) {
	p := Policy{MinimumAge: 18, RejectSanctioned: false}

	assert.True(t, p.Evaluate(raw(true, true, true)).Accepted)
	assert.Equal(t, models.ReasonAgeBelowMinimum, p.Evaluate(raw(true, false, true)).Reason)
}

func TestEvaluate_IgnoresDisclosedAttributes(t *testing.T) {
	r := raw(true, true, false)
	r.DiscloseOutput = map[string]any{"nationality": "FRA", "olderThan": "18"}
	assert.True(t, Default().Evaluate(r).Accepted)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "Verification failed", Reason(models.ReasonInvalidProof))
	assert.Equal(t, "Minimum age verification failed", Reason(models.ReasonAgeBelowMinimum))
	assert.Equal(t, "User is in OFAC sanctions list", Reason(models.ReasonSanctionsMatch))
	assert.Empty(t, Reason(models.ReasonNone))
}
