package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
	ErrUnknownAction   = errors.New("unknown action")
	ErrNotFound        = errors.New("record not found")
	ErrUngrounded      = errors.New("value not present in user turns")
)
