package validation

import (
	"fmt"

	dErrors "ridelink/pkg/domain-errors"
)

// MaxBodySize is the maximum accepted request body size (64 KB).
const MaxBodySize = 64 * 1024

// String length limits for request fields.
const (
	MaxDisplayNameLength = 128
	MaxProofRefLength    = 512
	MaxContentRefLength  = 4096
	MaxRideIDLength      = 128
)

// CheckStringLength validates that a string does not exceed max bytes.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckSliceCount validates that a slice does not exceed max elements.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}
