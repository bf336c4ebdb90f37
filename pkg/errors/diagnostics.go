package errors

import "sort"

// Diagnostics accumulates non-fatal warnings produced during compilation
// (duplicate global declarations, constant rebasing, unhandled AST nodes in
// non-strict mode). Callers drain it after a compile pass completes.
type Diagnostics struct {
	warnings []*CodeError
}

// Warn records a non-fatal diagnostic.
func (d *Diagnostics) Warn(w *CodeError) {
	d.warnings = append(d.warnings, w)
}

// Warnings returns all accumulated warnings, sorted by source location.
func (d *Diagnostics) Warnings() []*CodeError {
	out := make([]*CodeError, len(d.warnings))
	copy(out, d.warnings)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Location.Less(out[j].Location)
	})
	return out
}

// HasWarnings reports whether anything has been recorded.
func (d *Diagnostics) HasWarnings() bool { return len(d.warnings) > 0 }

// Reset clears all accumulated warnings.
func (d *Diagnostics) Reset() { d.warnings = nil }
