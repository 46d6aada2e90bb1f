package metadata

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Language selects the output language of generated metadata.
type Language string

const (
	LanguageHindi   Language = "hi"
	LanguageEnglish Language = "en"
	// LanguageMixed is Hindi and English mixed, the collaborator's default.
	LanguageMixed Language = "hi-en"
)

// ParseLanguage maps user input onto a Language. Anything other than "hi"
// or "en" selects the mixed default.
func ParseLanguage(s string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageHindi:
		return LanguageHindi
	case LanguageEnglish:
		return LanguageEnglish
	default:
		return LanguageMixed
	}
}

// Request asks the collaborator for titles, description and tags for a file.
type Request struct {
	Filename   string   `json:"filename"`
	Language   Language `json:"language,omitempty"`
	ExtraNotes string   `json:"extraNotes,omitempty"`
}

// Result is the structured metadata.
type Result struct {
	Titles      []string `json:"titles"`
	Description string   `json:"description"`
	Hashtags    []string `json:"hashtags"`
	Tags        []string `json:"tags"`
}

// Response is the collaborator's reply. When the model output could not be
// parsed, OK is true and only Raw is set.
type Response struct {
	OK     bool    `json:"ok"`
	Result *Result `json:"result,omitempty"`
	Raw    string  `json:"raw,omitempty"`
	Error  string  `json:"error,omitempty"`
	Detail string  `json:"detail,omitempty"`
}

const (
	maxTitles   = 10
	maxHashtags = 100
	maxTags     = 200
)

// Normalize caps list lengths and replaces nil lists with empty ones.
func (r *Result) Normalize() {
	r.Titles = capList(r.Titles, maxTitles)
	r.Hashtags = capList(r.Hashtags, maxHashtags)
	r.Tags = capList(r.Tags, maxTags)
}

func capList(l []string, n int) []string {
	if l == nil {
		return []string{}
	}
	if len(l) > n {
		return l[:n]
	}
	return l
}

// Text renders the result as plain text for copying into an upload form.
func (r *Result) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Titles:\n%s\n\n", strings.Join(r.Titles, "\n"))
	fmt.Fprintf(&b, "Description:\n%s\n\n", r.Description)
	fmt.Fprintf(&b, "Tags:\n%s\n\n", strings.Join(r.Tags, ", "))
	fmt.Fprintf(&b, "Hashtags:\n%s", strings.Join(r.Hashtags, " "))
	return b.String()
}

var (
	fencePrefix = regexp.MustCompile("(?i)^```json\\s*")
	jsonObject  = regexp.MustCompile(`(?s)\{.*\}`)
)

// ParseResult extracts a Result from free-form model output: bare JSON,
// JSON in a ```json fence, or the first {...} span of the text.
func ParseResult(content string) (*Result, bool) {
	text := strings.TrimSpace(content)
	text = fencePrefix.ReplaceAllString(text, "")
	text = strings.TrimSpace(strings.TrimSuffix(text, "```"))

	var r Result
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		m := jsonObject.FindString(text)
		if m == "" {
			return nil, false
		}
		if err := json.Unmarshal([]byte(m), &r); err != nil {
			return nil, false
		}
	}
	r.Normalize()
	return &r, true
}
