package registry

import "errors"

// Sentinel errors for the registry service layer.
var (
	ErrMissingTrackingID = errors.New("tracking id is required")
	ErrMissingRecipient  = errors.New("recipient is required")
	ErrMissingSubject    = errors.New("subject is required")
)
