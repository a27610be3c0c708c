package domain

import "errors"

var (
	ErrInvalidSignature  = errors.New("invalid_signature")
	ErrInvalidPayload    = errors.New("invalid_payload")
	ErrUnsupportedEvent  = errors.New("unsupported_event")
	ErrMissingField      = errors.New("missing_field")
	ErrInvalidEvent      = errors.New("invalid_event")
	ErrDuplicateDelivery = errors.New("duplicate_delivery")
)
