package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured field keys shared across packages.
const (
	FieldProvider    = "ai_provider"
	FieldModel       = "ai_model"
	FieldRunID       = "run_id"
	FieldSubjectID   = "subject_id"
	FieldCandidateID = "candidate_id"
)

// Fields turns key/value pairs into zap string fields. Both sides are trimmed and pairs
// with an empty key or value are dropped. A trailing key without a value is ignored.
func Fields(pairs ...string) []zap.Field {
	result := make([]zap.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key := strings.TrimSpace(pairs[i])
		value := strings.TrimSpace(pairs[i+1])
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// With attaches fields to l. A nil l becomes a no-op logger.
func With(l *zap.Logger, fields ...zap.Field) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// ForProvider tags l with the model provider and model name.
func ForProvider(l *zap.Logger, provider, model string) *zap.Logger {
	return With(l, Fields(FieldProvider, provider, FieldModel, model)...)
}

// ForRun tags l with a ranking run and its subject.
func ForRun(l *zap.Logger, runID, subjectID string) *zap.Logger {
	return With(l, Fields(FieldRunID, runID, FieldSubjectID, subjectID)...)
}

// ForCandidate tags l with the candidate under evaluation.
func ForCandidate(l *zap.Logger, candidateID string) *zap.Logger {
	return With(l, Fields(FieldCandidateID, candidateID)...)
}
