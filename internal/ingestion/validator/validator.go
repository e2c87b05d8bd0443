// Package validator provides input validation for ingestion requests. It
// enforces term length constraints and rejects control characters before
// terms enter the pipeline.
package validator

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rohith-raj-v/fuzzy-search-platform/internal/ingestion"
)

const defaultMaxTermLength = 1024

// ValidationError holds per-entry validation failure messages, keyed by the
// entry's position in the batch.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateIngestRequest checks every entry of the request. maxTermLength <= 0
// falls back to the default.
func ValidateIngestRequest(req *ingestion.IngestRequest, maxTermLength int) error {
	if maxTermLength <= 0 {
		maxTermLength = defaultMaxTermLength
	}
	entries := req.Entries()
	errs := make(map[string]string)
	if len(entries) == 0 {
		errs["terms"] = "at least one term is required"
	}
	for i, entry := range entries {
		field := fmt.Sprintf("terms[%d]", i)
		if strings.TrimSpace(entry.Term) == "" {
			errs[field] = "term must not be empty"
			continue
		}
		if utf8.RuneCountInString(entry.Term) > maxTermLength {
			errs[field] = fmt.Sprintf("term must be at most %d characters", maxTermLength)
			continue
		}
		if strings.ContainsFunc(entry.Term, unicode.IsControl) {
			errs[field] = "term must not contain control characters"
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
