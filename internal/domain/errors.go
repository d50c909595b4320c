package domain

import "errors"

// Webhook admission failure kinds. The HTTP handler maps each of these to its
// status code; anything else is an internal error.
var (
	// ErrInvalidSignature indicates the webhook JWT failed cryptographic
	// verification: wrong key, tampered payload, or algorithm substitution.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrMissingData indicates the verified payload has no data field.
	ErrMissingData = errors.New("payload missing data field")

	// ErrInvalidDataJSON indicates the payload's data field is present but
	// not parseable as JSON.
	ErrInvalidDataJSON = errors.New("invalid JSON in payload data")

	// ErrMissingInstanceID indicates no instance id was found after parsing
	// the payload data.
	ErrMissingInstanceID = errors.New("payload missing instanceId")
)
