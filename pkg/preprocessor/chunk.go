package preprocessor

// Chunk is one contiguous piece of preprocessed output together with enough
// provenance to walk back to the exact source line that produced it: either
// a file (Source holds its path) or a macro body (ExpandedFrom holds the
// macro name and Source holds the path of the file containing the
// invocation). This mirrors the chunk list a C preprocessor's expansion
// trace would produce, and is the only state #line resolution needs.
type Chunk struct {
	// Source is the file this chunk's text came from.
	Source string
	// ExpandedFrom is the name of the macro whose expansion produced Text,
	// or "" if Text is unexpanded source text.
	ExpandedFrom string
	// Line is the 1-based line number within Source that this chunk starts
	// at (for macro expansions, the line of the invocation).
	Line int
	// Text is the chunk's contribution to the preprocessed output.
	Text string
	// OriginalText is the source text Text was produced from. Equal to Text
	// for chunks that needed no expansion.
	OriginalText string
}

func (c Chunk) expanded() bool { return c.ExpandedFrom != "" }

// mergeable reports whether two adjacent chunks can be collapsed into one
// without losing provenance, matching the BOS preprocessor's chunk-merging
// rule: same source file and same expansion origin (both empty, or both the
// same macro name).
func (c Chunk) mergeable(next Chunk) bool {
	return c.Source == next.Source && c.ExpandedFrom == next.ExpandedFrom
}
