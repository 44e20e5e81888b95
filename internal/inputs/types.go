// Package inputs models the ordered set of document sources configured in
// the upload form and serializes the valid ones into a multipart payload.
package inputs

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// SourceType selects which payload field of a group is active.
type SourceType string

const (
	SourceText   SourceType = "text"
	SourcePDF    SourceType = "pdf"
	SourceCode   SourceType = "code"
	SourceLink   SourceType = "link"
	SourcePasted SourceType = "pasted"
)

var sourceOrder = []SourceType{SourceText, SourcePDF, SourceCode, SourceLink, SourcePasted}

var (
	ErrUnknownGroup          = errors.New("unknown input group")
	ErrUnknownSourceType     = errors.New("unknown source type")
	ErrNoValidInput          = errors.New("please provide at least one valid input source")
	ErrUnsupportedExtension  = errors.New("unsupported file extension")
	ErrContentMismatch       = errors.New("file content does not match the selected type")
	ErrFileNotAllowedForType = errors.New("source type does not accept files")
)

var codeExtensions = []string{
	".cpp", ".cc", ".cxx", ".hpp", ".h",
	".go", ".java", ".kt", ".kts",
	".js", ".mjs", ".cjs",
	".ts", ".tsx",
	".php", ".phtml", ".php3", ".php4",
	".proto", ".py", ".pyw", ".rst",
	".rb", ".erb", ".rs",
	".scala", ".sc", ".swift",
	".md", ".markdown",
	".tex", ".ltx", ".latex",
	".html", ".htm", ".sol",
	".cs", ".ipynb",
	".cob", ".cbl", ".cpy",
	".c", ".lua",
	".pl", ".pm", ".t", ".pod",
	".hs", ".lhs",
	".ex", ".exs",
	".ps1", ".psm1", ".psd1",
}

// ParseSourceType accepts the wire names used in file_type_<id> fields.
func ParseSourceType(value string) (SourceType, error) {
	candidate := SourceType(strings.ToLower(strings.TrimSpace(value)))
	for _, t := range sourceOrder {
		if t == candidate {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSourceType, value)
}

// Next cycles through the source types in form order.
func (t SourceType) Next() SourceType {
	for i, candidate := range sourceOrder {
		if candidate == t {
			return sourceOrder[(i+1)%len(sourceOrder)]
		}
	}
	return SourceText
}

// Label is the human name shown in the form selector.
func (t SourceType) Label() string {
	switch t {
	case SourceText:
		return "Text File"
	case SourcePDF:
		return "PDF File"
	case SourceCode:
		return "Code File"
	case SourceLink:
		return "Web URL"
	case SourcePasted:
		return "Pasted Text"
	default:
		return string(t)
	}
}

// AcceptsFile reports whether the type uses the file picker.
func (t SourceType) AcceptsFile() bool {
	return t == SourceText || t == SourcePDF || t == SourceCode
}

// Accept lists the file extensions allowed for t; nil means no file input.
func Accept(t SourceType) []string {
	switch t {
	case SourceText:
		return []string{".txt"}
	case SourcePDF:
		return []string{".pdf"}
	case SourceCode:
		return append([]string(nil), codeExtensions...)
	default:
		return nil
	}
}

// Hint describes the accepted files for t.
func Hint(t SourceType) string {
	switch t {
	case SourceText:
		return "Allowed: .txt files only"
	case SourcePDF:
		return "Allowed: .pdf files only"
	case SourceCode:
		return "Allowed: Programming files (.py, .js, .cpp, .java, .html, .cs, etc.)"
	case SourceLink:
		return "Enter a web URL"
	case SourcePasted:
		return "Paste or type text"
	default:
		return ""
	}
}

func allowsExtension(t SourceType, path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, allowed := range Accept(t) {
		if allowed == ext {
			return true
		}
	}
	return false
}

// Group is one user-configured document source.
type Group struct {
	ID       int
	Type     SourceType
	FilePath string
	URL      string
	Pasted   string
	Pages    int
}

// Valid reports whether the active field carries input.
func (g Group) Valid() bool {
	switch g.Type {
	case SourceText, SourcePDF, SourceCode:
		return g.FilePath != ""
	case SourceLink:
		return strings.TrimSpace(g.URL) != ""
	case SourcePasted:
		return strings.TrimSpace(g.Pasted) != ""
	default:
		return false
	}
}

// ActiveValue returns the raw content of the active field.
func (g Group) ActiveValue() string {
	switch g.Type {
	case SourceLink:
		return g.URL
	case SourcePasted:
		return g.Pasted
	default:
		return g.FilePath
	}
}
