package services

import "errors"

var (
	ErrEmailInUse         = errors.New("email-already-in-use")
	ErrUserNotFound       = errors.New("user-not-found")
	ErrInvalidCredentials = errors.New("invalid-credentials")
	ErrUnsupported        = errors.New("operation not supported by this provider")

	ErrBannerNotFound = errors.New("banner not found")

	ErrInFlight       = errors.New("request already in flight")
	ErrSessionExpired = errors.New("session expired or revoked")

	ErrCaptchaRejected = errors.New("captcha verification failed")
)

// ProviderError carries the provider's own message for failures that have no curated mapping.
type ProviderError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
