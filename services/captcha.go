package services

import (
	"context"
	"fmt"
	"storefront/config"
	"storefront/dto"

	recaptcha "cloud.google.com/go/recaptchaenterprise/v2/apiv1"
	"cloud.google.com/go/recaptchaenterprise/v2/apiv1/recaptchaenterprisepb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

type CaptchaEvent struct {
	Token     string
	Action    string
	UserIP    string
	UserAgent string
}

// CaptchaVerifier returns ErrCaptchaRejected when the token is invalid or was minted
// for a different action.
type CaptchaVerifier interface {
	Assess(ctx context.Context, event CaptchaEvent) (*dto.AssessmentResult, error)
}

type RecaptchaVerifier struct {
	client    *recaptcha.Client
	projectID string
	siteKey   string
	log       zerolog.Logger
}

func NewRecaptchaVerifier(ctx context.Context, cfg config.RecaptchaConfig, log zerolog.Logger) (*RecaptchaVerifier, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := recaptcha.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating reCAPTCHA client: %w", err)
	}
	return &RecaptchaVerifier{client: client, projectID: cfg.ProjectID, siteKey: cfg.SiteKey, log: log}, nil
}

func (v *RecaptchaVerifier) Close() error {
	return v.client.Close()
}

func (v *RecaptchaVerifier) Assess(ctx context.Context, event CaptchaEvent) (*dto.AssessmentResult, error) {
	req := &recaptchaenterprisepb.CreateAssessmentRequest{
		Parent: fmt.Sprintf("projects/%s", v.projectID),
		Assessment: &recaptchaenterprisepb.Assessment{
			Event: &recaptchaenterprisepb.Event{
				Token:         event.Token,
				SiteKey:       v.siteKey,
				UserIpAddress: event.UserIP,
				UserAgent:     event.UserAgent,
			},
		},
	}

	response, err := v.client.CreateAssessment(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}
	return evaluateAssessment(response, event.Action, v.log)
}

func evaluateAssessment(response *recaptchaenterprisepb.Assessment, action string, log zerolog.Logger) (*dto.AssessmentResult, error) {
	props := response.GetTokenProperties()
	if props == nil || !props.GetValid() {
		log.Warn().Str("reason", props.GetInvalidReason().String()).Msg("captcha token invalid")
		return nil, ErrCaptchaRejected
	}
	if action != "" && props.GetAction() != action {
		log.Warn().Str("expected", action).Str("got", props.GetAction()).Msg("captcha action mismatch")
		return nil, ErrCaptchaRejected
	}

	result := &dto.AssessmentResult{Action: props.GetAction()}
	if risk := response.GetRiskAnalysis(); risk != nil {
		result.Score = risk.GetScore()
		for _, reason := range risk.GetReasons() {
			result.Reasons = append(result.Reasons, reason.String())
		}
	}
	return result, nil
}
