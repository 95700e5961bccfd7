package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldApplicantID is the structured log field key for the applicant identifier.
	FieldApplicantID = "applicant_id"
	// FieldPass is the structured log field key for the pipeline pass name.
	FieldPass = "pass"
)

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced with a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithApplicant scopes the logger to one applicant. Blank IDs are not attached.
func WithApplicant(logger *zap.Logger, applicantID string) *zap.Logger {
	id := strings.TrimSpace(applicantID)
	if id == "" {
		return WithFields(logger)
	}

	return WithFields(logger, zap.String(FieldApplicantID, id))
}

// WithPass scopes the logger to one pipeline pass.
func WithPass(logger *zap.Logger, pass string) *zap.Logger {
	return WithFields(logger, zap.String(FieldPass, pass))
}
