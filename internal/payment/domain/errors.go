package domain

import "errors"

var (
	ErrProviderNotFound   = errors.New("provider_not_found")
	ErrInvalidSignature   = errors.New("invalid_signature")
	ErrInvalidPayload     = errors.New("invalid_payload")
	ErrEventIgnored       = errors.New("event_ignored")
	ErrVerificationFailed = errors.New("verification_failed")
	ErrPaymentNotSettled  = errors.New("payment_not_settled")
	ErrNotSupported       = errors.New("not_supported")
)
