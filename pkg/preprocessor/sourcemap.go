package preprocessor

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SourceMap tracks position mappings between preprocessed text (what the
// parser sees) and the original source file(s) it was expanded from, for
// error reporting once the parser/compiler only has preprocessed offsets
// to work with.
type SourceMap struct {
	Mappings []Mapping `json:"mappings"`
}

// Mapping records that a run of the preprocessed output came from a given
// span of a given source file, possibly via macro expansion.
type Mapping struct {
	GeneratedLine   int    `json:"generated_line"`
	GeneratedColumn int    `json:"generated_column"`

	SourceFile     string `json:"source_file"`
	OriginalLine   int    `json:"original_line"`
	OriginalColumn int    `json:"original_column"`

	Length       int    `json:"length"`
	ExpandedFrom string `json:"expanded_from,omitempty"`
}

// NewSourceMap returns an empty SourceMap.
func NewSourceMap() *SourceMap {
	return &SourceMap{Mappings: make([]Mapping, 0)}
}

// FromChunks builds a SourceMap by walking a Chunk list in output order,
// tracking the generated line/column each chunk's text starts at.
func FromChunks(chunks []Chunk) *SourceMap {
	sm := NewSourceMap()
	genLine, genCol := 1, 0
	for _, c := range chunks {
		if c.Text == "" {
			continue
		}
		sm.Mappings = append(sm.Mappings, Mapping{
			GeneratedLine:   genLine,
			GeneratedColumn: genCol,
			SourceFile:      c.Source,
			OriginalLine:    c.Line,
			OriginalColumn:  0,
			Length:          len(c.Text),
			ExpandedFrom:    c.ExpandedFrom,
		})
		lines := strings.Split(c.Text, "\n")
		if len(lines) == 1 {
			genCol += len(lines[0])
		} else {
			genLine += len(lines) - 1
			genCol = len(lines[len(lines)-1])
		}
	}
	return sm
}

// MapToOriginal maps a preprocessed-output position back to the source
// file position it came from. Returns the input position and "" if no
// mapping contains it.
func (sm *SourceMap) MapToOriginal(line, col int) (string, int, int) {
	for _, m := range sm.Mappings {
		if m.GeneratedLine == line && col >= m.GeneratedColumn && col < m.GeneratedColumn+m.Length {
			offset := col - m.GeneratedColumn
			return m.SourceFile, m.OriginalLine, m.OriginalColumn + offset
		}
	}
	return "", line, col
}

// ToJSON serializes the source map.
func (sm *SourceMap) ToJSON() ([]byte, error) {
	return json.MarshalIndent(sm, "", "  ")
}

// FromJSON deserializes a source map previously written by ToJSON.
func FromJSON(data []byte) (*SourceMap, error) {
	var sm SourceMap
	if err := json.Unmarshal(data, &sm); err != nil {
		return nil, fmt.Errorf("failed to parse source map: %w", err)
	}
	return &sm, nil
}
