// Package errors provides the compiler's diagnostic types: a located
// CodeError, rustc-style source-snippet rendering, and a Diagnostics sink
// that accumulates non-fatal warnings for the caller to drain.
package errors

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/unit-scripts/cobc/pkg/ast"
)

// Category classifies a CodeError for display and filtering.
type Category int

const (
	CategoryPreprocessor Category = iota
	CategorySyntax
	CategoryNameResolution
	CategoryCodeGeneration
)

func (c Category) String() string {
	switch c {
	case CategoryPreprocessor:
		return "Preprocessor Error"
	case CategorySyntax:
		return "Syntax Error"
	case CategoryNameResolution:
		return "Name Resolution Error"
	case CategoryCodeGeneration:
		return "Code Generation Error"
	default:
		return "Compile Error"
	}
}

// CodeError is a compile-time error located at a source span.
type CodeError struct {
	Message  string
	Location ast.Location
	Hint     string
	Category Category
}

func NewCodeError(category Category, message string, loc ast.Location) *CodeError {
	return &CodeError{Message: message, Location: loc, Category: category}
}

func (e *CodeError) WithHint(hint string) *CodeError {
	e.Hint = hint
	return e
}

// Error implements the error interface with a compact single-line form.
func (e *CodeError) Error() string {
	if e.Location.SourceFile == "" {
		return fmt.Sprintf("%s: %s", e.Category, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Location, e.Category, e.Message)
}

// Enhanced renders e as a rustc-style diagnostic with a source snippet,
// reading the offending file from disk (through a bounded LRU cache).
func (e *CodeError) Enhanced() *EnhancedError {
	enhanced := NewEnhancedError(e.Location, fmt.Sprintf("%s: %s", e.Category, e.Message))
	if e.Hint != "" {
		enhanced.WithSuggestion(e.Hint)
	}
	return enhanced
}

// EnhancedError renders a CodeError (or any located message) as a
// multi-line rustc-style snippet with a caret underline.
type EnhancedError struct {
	Message  string
	Filename string
	Line     int
	Column   int
	Length   int

	SourceLines   []string
	HighlightLine int

	Annotation   string
	Suggestion   string
	MissingItems []string
}

var (
	sourceCache      = make(map[string][]string)
	sourceCacheMu    sync.RWMutex
	sourceCacheLimit = 100
	sourceCacheKeys  = make([]string, 0, sourceCacheLimit)
)

// NewEnhancedError builds an EnhancedError from a source location, pulling
// in up to two lines of context on either side of the error line.
func NewEnhancedError(loc ast.Location, message string) *EnhancedError {
	if loc.SourceFile == "" || loc.StartLine <= 0 {
		return &EnhancedError{Message: message, Filename: "unknown", Length: 1}
	}

	length := loc.EndColumn - loc.StartColumn
	if loc.EndLine != loc.StartLine || length < 1 {
		length = 1
	}

	sourceLines, highlightIdx, extractErr := extractSourceLines(loc.SourceFile, loc.StartLine, 2)

	err := &EnhancedError{
		Message:       message,
		Filename:      loc.SourceFile,
		Line:          loc.StartLine,
		Column:        loc.StartColumn,
		Length:        length,
		SourceLines:   sourceLines,
		HighlightLine: highlightIdx,
	}

	if extractErr != nil {
		err.Annotation = fmt.Sprintf("(source unavailable: %v)", extractErr)
	}

	return err
}

func (e *EnhancedError) WithAnnotation(annotation string) *EnhancedError {
	e.Annotation = annotation
	return e
}

func (e *EnhancedError) WithSuggestion(suggestion string) *EnhancedError {
	e.Suggestion = suggestion
	return e
}

func (e *EnhancedError) WithMissingItems(items []string) *EnhancedError {
	e.MissingItems = items
	return e
}

// Format produces the rustc-style rendering.
func (e *EnhancedError) Format() string {
	var buf strings.Builder

	if e.Line > 0 {
		fmt.Fprintf(&buf, "Error: %s in %s:%d:%d\n\n", e.Message, e.Filename, e.Line, e.Column)
	} else {
		fmt.Fprintf(&buf, "Error: %s\n\n", e.Message)
	}

	if len(e.SourceLines) > 0 && e.Line > 0 {
		startLine := e.Line - e.HighlightLine

		for i, line := range e.SourceLines {
			lineNum := startLine + i

			if i == e.HighlightLine {
				fmt.Fprintf(&buf, "  %4d | %s\n", lineNum, line)

				caretIndent := utf8.RuneCountInString(line[:min(e.Column-1, len(line))])
				caretLen := e.Length
				if caretLen < 1 {
					caretLen = 1
				}

				fmt.Fprintf(&buf, "       | %s%s", strings.Repeat(" ", caretIndent), strings.Repeat("^", caretLen))
				if e.Annotation != "" {
					fmt.Fprintf(&buf, " %s", e.Annotation)
				}
				buf.WriteString("\n")
			} else {
				fmt.Fprintf(&buf, "  %4d | %s\n", lineNum, line)
			}
		}
		buf.WriteString("\n")
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&buf, "Suggestion: %s\n", e.Suggestion)
	}

	if len(e.MissingItems) > 0 {
		fmt.Fprintf(&buf, "\nMissing patterns: %s\n", strings.Join(e.MissingItems, ", "))
	}

	return buf.String()
}

func (e *EnhancedError) Error() string { return e.Format() }

func extractSourceLines(filename string, targetLine, contextLines int) ([]string, int, error) {
	sourceCacheMu.RLock()
	allLines, cached := sourceCache[filename]
	sourceCacheMu.RUnlock()

	if !cached {
		content, err := os.ReadFile(filename)
		if err != nil {
			return nil, 0, fmt.Errorf("cannot read file: %w", err)
		}
		if !utf8.Valid(content) {
			return nil, 0, fmt.Errorf("file is not valid UTF-8")
		}

		normalized := strings.ReplaceAll(string(content), "\r\n", "\n")
		allLines = strings.Split(normalized, "\n")
		if len(allLines) > 0 && allLines[len(allLines)-1] == "" {
			allLines = allLines[:len(allLines)-1]
		}

		sourceCacheMu.Lock()
		addToSourceCache(filename, allLines)
		sourceCacheMu.Unlock()
	} else {
		// A hit moves the file to the most recently used end.
		sourceCacheMu.Lock()
		addToSourceCache(filename, allLines)
		sourceCacheMu.Unlock()
	}

	targetIdx := targetLine - 1
	if targetIdx < 0 || targetIdx >= len(allLines) {
		return nil, 0, fmt.Errorf("line %d out of range (1-%d)", targetLine, len(allLines))
	}

	start := max(0, targetIdx-contextLines)
	end := min(len(allLines), targetIdx+contextLines+1)

	return allLines[start:end], targetIdx - start, nil
}

func addToSourceCache(filename string, lines []string) {
	for i, key := range sourceCacheKeys {
		if key == filename {
			sourceCacheKeys = append(sourceCacheKeys[:i], sourceCacheKeys[i+1:]...)
			sourceCacheKeys = append(sourceCacheKeys, filename)
			sourceCache[filename] = lines
			return
		}
	}

	if len(sourceCacheKeys) >= sourceCacheLimit {
		oldest := sourceCacheKeys[0]
		delete(sourceCache, oldest)
		sourceCacheKeys = sourceCacheKeys[1:]
	}

	sourceCacheKeys = append(sourceCacheKeys, filename)
	sourceCache[filename] = lines
}

// ClearSourceCache drops all cached file contents.
func ClearSourceCache() {
	sourceCacheMu.Lock()
	defer sourceCacheMu.Unlock()
	sourceCache = make(map[string][]string)
	sourceCacheKeys = make([]string, 0, sourceCacheLimit)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
