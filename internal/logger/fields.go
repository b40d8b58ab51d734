package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldJob       = "job_id"
	FieldCandidate = "candidate_id"
	FieldSession   = "session_id"

	// FieldProvider and FieldModel describe the AI backend annotating results.
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
)

type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, trimming whitespace
// and omitting entries with an empty key or value.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger. A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// MatchFields identifies one candidate/job pair.
func MatchFields(jobID, candidateID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldJob, Value: jobID},
		StringField{Key: FieldCandidate, Value: candidateID},
	)
}

// SessionFields identifies a match session and its job.
func SessionFields(sessionID, jobID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldSession, Value: sessionID},
		StringField{Key: FieldJob, Value: jobID},
	)
}

func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}
