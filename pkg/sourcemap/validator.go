package sourcemap

import (
	"encoding/json"
	"fmt"

	"github.com/unit-scripts/cobc/pkg/preprocessor"
)

// ValidationResult is the outcome of running Validator.Validate.
type ValidationResult struct {
	Valid         bool
	Errors        []ValidationError
	Warnings      []ValidationWarning
	TotalMappings int
}

// ValidationError is a structural problem that makes a source map unusable.
type ValidationError struct {
	Type    string
	Message string
}

// ValidationWarning flags a suspicious but not necessarily invalid mapping.
type ValidationWarning struct {
	Type    string
	Message string
}

// Validator checks a preprocessor.SourceMap for structural and round-trip
// correctness before it's handed to editor tooling.
type Validator struct {
	sourceMap *preprocessor.SourceMap
	strict    bool
}

// NewValidator returns a Validator over sm.
func NewValidator(sm *preprocessor.SourceMap) *Validator {
	return &Validator{sourceMap: sm}
}

// NewValidatorFromJSON parses and validates a source map previously
// serialized with preprocessor.SourceMap.ToJSON.
func NewValidatorFromJSON(data []byte) (*Validator, error) {
	sm, err := preprocessor.FromJSON(data)
	if err != nil {
		return nil, err
	}
	return &Validator{sourceMap: sm}, nil
}

// SetStrict makes Validate treat warnings as errors.
func (v *Validator) SetStrict(strict bool) { v.strict = strict }

// Validate runs every check and returns the combined result.
func (v *Validator) Validate() ValidationResult {
	result := ValidationResult{Valid: true, TotalMappings: len(v.sourceMap.Mappings)}

	v.validateFields(&result)
	v.validateRoundTrip(&result)
	v.validateConsistency(&result)

	if v.strict && len(result.Warnings) > 0 {
		for _, w := range result.Warnings {
			result.Errors = append(result.Errors, ValidationError{Type: w.Type, Message: w.Message})
		}
		result.Warnings = nil
	}
	if len(result.Errors) > 0 {
		result.Valid = false
	}
	return result
}

func (v *Validator) validateFields(result *ValidationResult) {
	for i, m := range v.sourceMap.Mappings {
		if m.GeneratedLine < 1 {
			result.Errors = append(result.Errors, ValidationError{"field",
				fmt.Sprintf("mapping %d: generated_line %d must be >= 1", i, m.GeneratedLine)})
		}
		if m.OriginalLine < 1 {
			result.Errors = append(result.Errors, ValidationError{"field",
				fmt.Sprintf("mapping %d: original_line %d must be >= 1", i, m.OriginalLine)})
		}
		if m.SourceFile == "" {
			result.Warnings = append(result.Warnings, ValidationWarning{"field",
				fmt.Sprintf("mapping %d: missing source_file", i)})
		}
		if m.Length < 0 {
			result.Errors = append(result.Errors, ValidationError{"field",
				fmt.Sprintf("mapping %d: negative length %d", i, m.Length)})
		}
		if m.Length == 0 {
			result.Warnings = append(result.Warnings, ValidationWarning{"field",
				fmt.Sprintf("mapping %d: zero-length mapping", i)})
		}
	}
}

// validateRoundTrip confirms every mapping's generated span maps back to
// its claimed original position via MapToOriginal.
func (v *Validator) validateRoundTrip(result *ValidationResult) {
	for i, m := range v.sourceMap.Mappings {
		file, origLine, origCol := v.sourceMap.MapToOriginal(m.GeneratedLine, m.GeneratedColumn)
		if file != m.SourceFile || origLine != m.OriginalLine || origCol != m.OriginalColumn {
			result.Errors = append(result.Errors, ValidationError{"round-trip", fmt.Sprintf(
				"mapping %d: generated %d:%d round-trips to %s:%d:%d, want %s:%d:%d",
				i, m.GeneratedLine, m.GeneratedColumn, file, origLine, origCol,
				m.SourceFile, m.OriginalLine, m.OriginalColumn)})
		}
	}
}

func (v *Validator) validateConsistency(result *ValidationResult) {
	if len(v.sourceMap.Mappings) == 0 {
		result.Warnings = append(result.Warnings, ValidationWarning{"consistency", "source map has no mappings"})
		return
	}
	seen := map[string]bool{}
	for i, m := range v.sourceMap.Mappings {
		key := fmt.Sprintf("%d:%d", m.GeneratedLine, m.GeneratedColumn)
		if seen[key] {
			result.Warnings = append(result.Warnings, ValidationWarning{"consistency",
				fmt.Sprintf("mapping %d: duplicate generated position %s", i, key)})
		}
		seen[key] = true
	}
}

// ValidateJSON parses and validates a serialized source map in one step.
func ValidateJSON(data []byte) (*ValidationResult, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return &ValidationResult{Errors: []ValidationError{{"json", err.Error()}}}, nil
	}
	v, err := NewValidatorFromJSON(data)
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{"parse", err.Error()}}}, nil
	}
	result := v.Validate()
	return &result, nil
}

// String renders the result as a human-readable report.
func (r ValidationResult) String() string {
	status := "VALID"
	if !r.Valid {
		status = "INVALID"
	}
	s := fmt.Sprintf("source map: %s (%d mappings)\n", status, r.TotalMappings)
	for _, e := range r.Errors {
		s += fmt.Sprintf("  error[%s]: %s\n", e.Type, e.Message)
	}
	for _, w := range r.Warnings {
		s += fmt.Sprintf("  warning[%s]: %s\n", w.Type, w.Message)
	}
	return s
}
