// Package preprocessor expands the macro layer unit scripts are written
// against before any parsing happens: predefined constants for every named
// GET/SET value, #define/#undef, #ifdef-style conditional compilation, and
// #include. It also keeps enough provenance (Chunk) to map any byte of its
// output back to the source file and line that produced it, so diagnostics
// raised by later stages point at the script author's own text rather than
// the expanded form the parser actually sees.
package preprocessor

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const maxIncludeDepth = 64

// Preprocessor expands macros and #include directives over BOS unit-script
// source. A zero-value Preprocessor is not usable; construct one with New.
type Preprocessor struct {
	macros       map[string]*Macro
	includePaths []string

	// ReadFile loads the contents of an included file. Overridable for
	// tests and for embedding callers that don't want real filesystem
	// access; defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

// New returns a Preprocessor with the engine's fixed predefined macros
// already registered: boolean literals, the UNKNOWN_UNIT_VALUE passthrough,
// and every named GET/SET value constant.
func New() *Preprocessor {
	p := &Preprocessor{
		macros:   make(map[string]*Macro),
		ReadFile: os.ReadFile,
	}
	for _, def := range predefinedDefines() {
		if err := p.Define(def); err != nil {
			panic("preprocessor: invalid predefined macro " + def + ": " + err.Error())
		}
	}
	return p
}

func predefinedDefines() []string {
	defs := []string{
		"TRUE 1",
		"true 1",
		"FALSE 0",
		"false 0",
		"UNKNOWN_UNIT_VALUE(val) val",
	}
	names := make([]string, 0, len(unitValueNums))
	for name := range unitValueNums {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		defs = append(defs, fmt.Sprintf("%s %d", name, unitValueNums[name]))
	}
	return defs
}

// AddIncludePath registers a directory searched for #include "..." targets
// that aren't found relative to the including file.
func (p *Preprocessor) AddIncludePath(dir string) {
	p.includePaths = append(p.includePaths, dir)
}

// Define registers a macro from a `#define`-style definition string, e.g.
// "HEALTH 4" or "UNKNOWN_UNIT_VALUE(val) val".
func (p *Preprocessor) Define(def string) error {
	m, err := parseDefine(def)
	if err != nil {
		return err
	}
	p.macros[m.Name] = m
	return nil
}

// Undef removes a macro definition, if one exists.
func (p *Preprocessor) Undef(name string) { delete(p.macros, name) }

// Defined reports whether name is currently a registered macro.
func (p *Preprocessor) Defined(name string) bool {
	_, ok := p.macros[name]
	return ok
}

// expand performs recursive macro expansion over s. active tracks macro
// names currently being expanded on this call stack, so a macro body that
// mentions its own name is left untouched rather than recursing forever.
// triggered records the name of the first macro actually expanded, used as
// a Chunk's ExpandedFrom label.
func (p *Preprocessor) expand(s string, active map[string]bool, triggered *string) string {
	var out strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if !isIdentStart(c) {
			out.WriteByte(c)
			i++
			continue
		}

		ident, j := readIdent(s, i)
		m, ok := p.macros[ident]
		if !ok || active[ident] {
			out.WriteString(ident)
			i = j
			continue
		}

		if m.Params == nil {
			if *triggered == "" {
				*triggered = ident
			}
			active[ident] = true
			out.WriteString(p.expand(m.Body, active, triggered))
			delete(active, ident)
			i = j
			continue
		}

		k := j
		for k < len(s) && (s[k] == ' ' || s[k] == '\t') {
			k++
		}
		if k >= len(s) || s[k] != '(' {
			out.WriteString(ident)
			i = j
			continue
		}
		args, end, ok := splitArgs(s, k)
		if !ok {
			out.WriteString(ident)
			i = j
			continue
		}
		if *triggered == "" {
			*triggered = ident
		}
		expandedArgs := make([]string, len(args))
		for ai, a := range args {
			expandedArgs[ai] = p.expand(strings.TrimSpace(a), active, triggered)
		}
		body := substitute(m.Body, m.Params, expandedArgs, m.Variadic)
		active[ident] = true
		out.WriteString(p.expand(body, active, triggered))
		delete(active, ident)
		i = end
	}
	return out.String()
}

// ExpandText macro-expands a standalone fragment (e.g. for tests or REPL
// use) with no chunk/line bookkeeping.
func (p *Preprocessor) ExpandText(s string) string {
	active := map[string]bool{}
	triggered := ""
	return p.expand(s, active, &triggered)
}

type condState struct {
	parentActive bool
	branchTaken  bool // true once some branch in this #if/#elif/#else chain matched
	active       bool // whether the current branch is the live one
}

// ProcessFile runs the full macro/conditional/#include pipeline over
// fileText (the contents of the file at filePath), returning the expanded
// text the parser should see, a reconstruction of exactly the source bytes
// that contributed to it (for round-trip diagnostics), and the ordered
// Chunk list either can be derived from.
func (p *Preprocessor) ProcessFile(fileText, filePath string) (string, string, []Chunk, error) {
	return p.processFile(fileText, filePath, 0)
}

func (p *Preprocessor) processFile(fileText, filePath string, depth int) (string, string, []Chunk, error) {
	if depth > maxIncludeDepth {
		return "", "", nil, fmt.Errorf("%s: #include nesting too deep (possible cycle)", filePath)
	}

	chunks := []Chunk{{
		Source: filePath,
		Line:   1,
		Text:   fmt.Sprintf("#line 1 %q\n", filePath),
	}}
	var condStack []condState

	active := func() bool {
		for _, c := range condStack {
			if !c.active {
				return false
			}
		}
		return true
	}

	appendChunk := func(c Chunk) {
		prev := &chunks[len(chunks)-1]
		if prev.Source == c.Source && prev.mergeable(c) {
			prev.Text += c.Text
			prev.OriginalText += c.OriginalText
			return
		}
		chunks = append(chunks, c)
	}

	lines := strings.Split(fileText, "\n")
	for idx, rawLine := range lines {
		lineNo := idx + 1
		line := rawLine
		if idx < len(lines)-1 {
			line += "\n"
		}
		trimmed := strings.TrimSpace(rawLine)

		if strings.HasPrefix(trimmed, "#") {
			directive := strings.TrimSpace(trimmed[1:])
			word, rest := splitDirective(directive)

			switch word {
			case "ifdef", "ifndef":
				name := strings.TrimSpace(rest)
				defined := p.Defined(name)
				if word == "ifndef" {
					defined = !defined
				}
				condStack = append(condStack, condState{parentActive: active(), branchTaken: defined, active: active() && defined})
			case "if":
				v, err := p.evalCondition(rest)
				if err != nil {
					return "", "", nil, fmt.Errorf("%s:%d: %w", filePath, lineNo, err)
				}
				condStack = append(condStack, condState{parentActive: active(), branchTaken: v, active: active() && v})
			case "elif":
				if len(condStack) == 0 {
					return "", "", nil, fmt.Errorf("%s:%d: #elif without #if", filePath, lineNo)
				}
				top := &condStack[len(condStack)-1]
				if top.branchTaken {
					top.active = false
				} else {
					v, err := p.evalCondition(rest)
					if err != nil {
						return "", "", nil, fmt.Errorf("%s:%d: %w", filePath, lineNo, err)
					}
					top.branchTaken = v
					top.active = top.parentActive && v
				}
			case "else":
				if len(condStack) == 0 {
					return "", "", nil, fmt.Errorf("%s:%d: #else without #if", filePath, lineNo)
				}
				top := &condStack[len(condStack)-1]
				top.active = top.parentActive && !top.branchTaken
				top.branchTaken = true
			case "endif":
				if len(condStack) == 0 {
					return "", "", nil, fmt.Errorf("%s:%d: #endif without #if", filePath, lineNo)
				}
				condStack = condStack[:len(condStack)-1]
			case "define":
				if active() {
					if err := p.Define(rest); err != nil {
						return "", "", nil, fmt.Errorf("%s:%d: %w", filePath, lineNo, err)
					}
				}
			case "undef":
				if active() {
					p.Undef(strings.TrimSpace(rest))
				}
			case "include":
				if active() {
					if err := p.processInclude(&chunks, rest, filePath, lineNo, depth, appendChunk); err != nil {
						return "", "", nil, err
					}
				}
			default:
				// unknown directive: pass through verbatim when active, so
				// content this engine doesn't model (#pragma, #warning) at
				// least doesn't silently disappear.
				if active() {
					appendChunk(Chunk{Source: filePath, Line: lineNo, Text: line, OriginalText: line})
				}
			}
			continue
		}

		if !active() {
			continue
		}

		expanded, triggeredBy := p.expandLine(line)
		appendChunk(Chunk{
			Source:       filePath,
			ExpandedFrom: triggeredBy,
			Line:         lineNo,
			Text:         expanded,
			OriginalText: line,
		})
	}

	if len(condStack) != 0 {
		return "", "", nil, fmt.Errorf("%s: unterminated #if/#ifdef at end of file", filePath)
	}

	var preprocessed, reconstructed strings.Builder
	for _, c := range chunks {
		preprocessed.WriteString(c.Text)
		reconstructed.WriteString(c.OriginalText)
	}
	return preprocessed.String(), reconstructed.String(), chunks, nil
}

func (p *Preprocessor) expandLine(line string) (string, string) {
	active := map[string]bool{}
	triggered := ""
	out := p.expand(line, active, &triggered)
	return out, triggered
}

func (p *Preprocessor) processInclude(chunks *[]Chunk, rest, filePath string, lineNo, depth int, appendChunk func(Chunk)) error {
	target, ok := parseIncludeTarget(rest)
	if !ok {
		return fmt.Errorf("%s:%d: malformed #include directive", filePath, lineNo)
	}

	resolved, text, err := p.resolveInclude(target, filepath.Dir(filePath))
	if err != nil {
		return fmt.Errorf("%s:%d: %w", filePath, lineNo, err)
	}

	subExpanded, _, _, err := p.processFile(text, resolved, depth+1)
	if err != nil {
		return err
	}

	appendChunk(Chunk{Source: filePath, Line: lineNo, Text: fmt.Sprintf("#line 1 %q\n", resolved)})
	appendChunk(Chunk{
		Source:       resolved,
		Line:         1,
		Text:         subExpanded,
		OriginalText: fmt.Sprintf("#include %q\n", target),
	})
	appendChunk(Chunk{Source: filePath, Line: lineNo + 1, Text: fmt.Sprintf("#line %d %q\n", lineNo+1, filePath)})
	return nil
}

func (p *Preprocessor) resolveInclude(target, fromDir string) (string, string, error) {
	candidates := []string{path.Join(fromDir, target)}
	for _, dir := range p.includePaths {
		candidates = append(candidates, path.Join(dir, target))
	}
	var lastErr error
	for _, candidate := range candidates {
		data, err := p.ReadFile(candidate)
		if err == nil {
			return candidate, string(data), nil
		}
		lastErr = err
	}
	return "", "", fmt.Errorf("cannot find include %q: %w", target, lastErr)
}

func parseIncludeTarget(rest string) (string, bool) {
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 {
		return "", false
	}
	open, close := byte('"'), byte('"')
	if rest[0] == '<' {
		open, close = '<', '>'
	} else if rest[0] != '"' {
		return "", false
	}
	if rest[0] != open || rest[len(rest)-1] != close {
		return "", false
	}
	return rest[1 : len(rest)-1], true
}

func splitDirective(directive string) (word, rest string) {
	i := 0
	for i < len(directive) && !isSpace(directive[i]) {
		i++
	}
	word = directive[:i]
	for i < len(directive) && isSpace(directive[i]) {
		i++
	}
	rest = directive[i:]
	return word, rest
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }
