package domain

import (
	"errors"
)

var (
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedMissingOwner   = "missing or invalid user id"

	ErrParseUUID    = errors.New("failed to parse UUID")
	ErrMissingOwner = errors.New("missing or invalid user id")
)
