// Package sourcemap turns the preprocessor's internal Chunk/Mapping
// provenance into a standard Source Map v3 document, and back, so external
// tooling (editors, the LSP adapter, a browser-based disassembly viewer)
// can resolve positions in the preprocessed/compiled output to the
// original .bos source without understanding this engine's own Chunk
// format.
package sourcemap

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"

	gosourcemap "github.com/go-sourcemap/sourcemap"

	"github.com/unit-scripts/cobc/pkg/preprocessor"
)

// Generator builds a Source Map v3 document from a preprocessor.SourceMap.
type Generator struct {
	generatedFile string
	sm            *preprocessor.SourceMap
}

// NewGenerator returns a Generator that will attribute the map to
// generatedFile (the "file" field of the emitted map).
func NewGenerator(generatedFile string, sm *preprocessor.SourceMap) *Generator {
	return &Generator{generatedFile: generatedFile, sm: sm}
}

// v3Map is the on-disk Source Map v3 JSON schema.
type v3Map struct {
	Version  int      `json:"version"`
	File     string   `json:"file"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

// Generate renders the Source Map v3 JSON document.
func (g *Generator) Generate() ([]byte, error) {
	sources, sourceIdx := g.collectSources()

	segments := make([]segment, 0, len(g.sm.Mappings))
	for _, m := range g.sm.Mappings {
		segments = append(segments, segment{
			genLine:    m.GeneratedLine,
			genCol:     m.GeneratedColumn,
			sourceIdx:  sourceIdx[m.SourceFile],
			origLine:   m.OriginalLine,
			origCol:    m.OriginalColumn,
		})
	}
	sort.SliceStable(segments, func(i, j int) bool {
		if segments[i].genLine != segments[j].genLine {
			return segments[i].genLine < segments[j].genLine
		}
		return segments[i].genCol < segments[j].genCol
	})

	doc := v3Map{
		Version: 3,
		File:    g.generatedFile,
		Sources: sources,
		Names:   []string{},
		Mappings: encodeMappings(segments),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sourcemap: marshal: %w", err)
	}
	return data, nil
}

// GenerateInline renders Generate's output as a base64 data-URL comment
// suitable for appending to the generated file.
func (g *Generator) GenerateInline() (string, error) {
	data, err := g.Generate()
	if err != nil {
		return "", err
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("//# sourceMappingURL=data:application/json;base64,%s", encoded), nil
}

func (g *Generator) collectSources() ([]string, map[string]int) {
	seen := map[string]int{}
	var sources []string
	for _, m := range g.sm.Mappings {
		if _, ok := seen[m.SourceFile]; !ok {
			seen[m.SourceFile] = len(sources)
			sources = append(sources, m.SourceFile)
		}
	}
	return sources, seen
}

type segment struct {
	genLine, genCol int
	sourceIdx       int
	origLine, origCol int
}

// encodeMappings renders segments as a Source Map v3 "mappings" string:
// semicolon-separated generated lines, comma-separated segments per line,
// each a VLQ-encoded [genColDelta, sourceIdxDelta, origLineDelta,
// origColDelta] relative to the previous segment's fields (only the
// generated column resets at each new line; the other fields stay relative
// across lines).
func encodeMappings(segments []segment) string {
	var out []byte
	prevGenLine0 := 0
	prevGenCol, prevSourceIdx, prevOrigLine0, prevOrigCol := 0, 0, 0, 0

	for i, s := range segments {
		genLine0, origLine0 := s.genLine-1, s.origLine-1
		if i > 0 {
			if genLine0 != prevGenLine0 {
				for l := prevGenLine0; l < genLine0; l++ {
					out = append(out, ';')
				}
				prevGenCol = 0
			} else {
				out = append(out, ',')
			}
		}
		out = appendVLQ(out, s.genCol-prevGenCol)
		out = appendVLQ(out, s.sourceIdx-prevSourceIdx)
		out = appendVLQ(out, origLine0-prevOrigLine0)
		out = appendVLQ(out, s.origCol-prevOrigCol)

		prevGenLine0, prevGenCol = genLine0, s.genCol
		prevSourceIdx, prevOrigLine0, prevOrigCol = s.sourceIdx, origLine0, s.origCol
	}
	return string(out)
}

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// appendVLQ appends n encoded as a base64 VLQ, per the Source Map v3 spec.
func appendVLQ(out []byte, n int) []byte {
	v := n << 1
	if n < 0 {
		v = (-n << 1) | 1
	}
	for {
		digit := v & 0x1f
		v >>= 5
		if v > 0 {
			digit |= 0x20
		}
		out = append(out, base64Chars[digit])
		if v == 0 {
			break
		}
	}
	return out
}

// Consumer wraps a parsed Source Map v3 document for position lookups,
// using the upstream decoder rather than hand-rolling VLQ decoding.
type Consumer struct {
	sm *gosourcemap.Consumer
}

// NewConsumer parses a Source Map v3 document previously produced by
// Generate.
func NewConsumer(data []byte) (*Consumer, error) {
	sm, err := gosourcemap.Parse("", data)
	if err != nil {
		return nil, fmt.Errorf("sourcemap: parse: %w", err)
	}
	return &Consumer{sm: sm}, nil
}

// Source resolves a (line, column) in the generated file to its original
// source file and position. Lines are 1-based and columns 0-based on both
// sides, the same convention as preprocessor.Mapping.
func (c *Consumer) Source(line, column int) (file string, origLine, origCol int, ok bool) {
	file, _, origLine, origCol, ok = c.sm.Source(line, column)
	if !ok {
		return "", 0, 0, false
	}
	return file, origLine, origCol, true
}
