package services

import (
	"testing"

	"cloud.google.com/go/recaptchaenterprise/v2/apiv1/recaptchaenterprisepb"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAssessment(t *testing.T) {
	response := &recaptchaenterprisepb.Assessment{
		TokenProperties: &recaptchaenterprisepb.TokenProperties{Valid: true, Action: "signup"},
		RiskAnalysis: &recaptchaenterprisepb.RiskAnalysis{
			Score:   0.9,
			Reasons: []recaptchaenterprisepb.RiskAnalysis_ClassificationReason{recaptchaenterprisepb.RiskAnalysis_AUTOMATION},
		},
	}

	result, err := evaluateAssessment(response, "signup", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "signup", result.Action)
	assert.InDelta(t, 0.9, result.Score, 0.0001)
	assert.Equal(t, []string{"AUTOMATION"}, result.Reasons)
}

func TestEvaluateAssessmentRejects(t *testing.T) {
	invalid := &recaptchaenterprisepb.Assessment{
		TokenProperties: &recaptchaenterprisepb.TokenProperties{
			Valid:         false,
			InvalidReason: recaptchaenterprisepb.TokenProperties_EXPIRED,
		},
	}
	_, err := evaluateAssessment(invalid, "", zerolog.Nop())
	assert.ErrorIs(t, err, ErrCaptchaRejected)

	_, err = evaluateAssessment(&recaptchaenterprisepb.Assessment{}, "", zerolog.Nop())
	assert.ErrorIs(t, err, ErrCaptchaRejected)

	mismatch := &recaptchaenterprisepb.Assessment{
		TokenProperties: &recaptchaenterprisepb.TokenProperties{Valid: true, Action: "login"},
	}
	_, err = evaluateAssessment(mismatch, "signup", zerolog.Nop())
	assert.ErrorIs(t, err, ErrCaptchaRejected)
}
