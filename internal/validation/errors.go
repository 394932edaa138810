// Package validation carries structured, code-bearing validation errors from
// the repositories to the API boundary, where they surface as HTTP 400
// payloads keyed by field.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Stable error codes clients can branch on.
const (
	CodeCommentTooShort            = "COMMENT_TOO_SHORT"
	CodeCommentRatingRequired      = "COMMENT_RATING_REQUIRED"
	CodeCommentRatingAlreadyExists = "COMMENT_RATING_ALREADY_EXISTS"
	CodeReactionAlreadyExists      = "REACTION_ALREADY_EXISTS"
	CodeReactionInvalidType        = "REACTION_INVALID_TYPE"
	CodeFollowAlreadyExists        = "FOLLOW_ALREADY_EXISTS"
	CodeFollowUnsupportedKey       = "FOLLOW_UNSUPPORTED_PREFERENCE_KEY"
	CodeUnsupportedTargetKind      = "UNSUPPORTED_TARGET_KIND"
	CodeUnknownEntityKind          = "UNKNOWN_ENTITY_KIND"
)

// FieldError is a single violation against one field.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Errors maps field names to their violations. All applicable violations for
// a request are collected before being returned, not short-circuited.
type Errors map[string][]FieldError

func (e Errors) Add(field, code, message string) {
	e[field] = append(e[field], FieldError{Code: code, Message: message})
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for field, errs := range e {
		for _, fe := range errs {
			parts = append(parts, fmt.Sprintf("%s: %s", field, fe.Code))
		}
	}
	return strings.Join(parts, "; ")
}

// Has reports whether any violation carries the given code.
func (e Errors) Has(code string) bool {
	for _, errs := range e {
		for _, fe := range errs {
			if fe.Code == code {
				return true
			}
		}
	}
	return false
}

// AsErrors unwraps err into Errors when it carries one.
func AsErrors(err error) (Errors, bool) {
	var verrs Errors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}
