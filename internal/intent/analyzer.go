// Package intent turns raw question text into the structured entities
// the query engine retrieves with: function names, file paths, fallback
// keywords, and a coarse intent type. Pattern-based, no model call, so
// it is fast and never a failure path.
package intent

import (
	"regexp"
	"strings"
)

// Type is the coarse question category. It biases which sources matter
// most but never disables any.
type Type string

const (
	// TypeExplanation asks how something works.
	TypeExplanation Type = "explanation"

	// TypeCallers asks who calls a function.
	TypeCallers Type = "callers"

	// TypeCallees asks what a function calls or uses.
	TypeCallees Type = "callees"

	// TypeDependency asks about file includes or dependencies.
	TypeDependency Type = "dependency"

	// TypeGeneral is everything else.
	TypeGeneral Type = "general"
)

var (
	// C function references: snake_case identifiers, optionally with a
	// call suffix. Single common words are filtered by the stopword list.
	functionPattern = regexp.MustCompile(`\b([a-z_][a-z0-9_]*_[a-z0-9_]+)\b|\b([a-zA-Z_][a-zA-Z0-9_]*)\(\)`)

	// C file paths: something.c / something.h, with optional directories.
	filePattern = regexp.MustCompile(`\b([\w\-./]+\.(?:c|h))\b`)

	callersPattern    = regexp.MustCompile(`(?i)\b(who calls|callers? of|called by whom|callsites? of|where is\s+\S+\s+called)\b`)
	calleesPattern    = regexp.MustCompile(`(?i)\b(what does\s+\S+\s+call|callees? of|calls? what|depends? on what)\b`)
	dependencyPattern = regexp.MustCompile(`(?i)\b(includes?|included by|depends? on|dependenc\w+|imports?)\b`)
	explainPattern    = regexp.MustCompile(`(?i)^(how|what|why|where|when|explain|describe|show)\b`)
)

// stopwords are dropped from keyword extraction.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"does": true, "do": true, "how": true, "what": true, "why": true,
	"where": true, "when": true, "who": true, "which": true,
	"in": true, "of": true, "to": true, "for": true, "and": true,
	"or": true, "it": true, "this": true, "that": true, "work": true,
	"works": true, "function": true, "file": true, "code": true,
	"me": true, "my": true, "can": true, "you": true, "about": true,
}

// Intent is the analyzed form of a question.
type Intent struct {
	// Type is the coarse category.
	Type Type

	// Functions are function names referenced in the text.
	Functions []string

	// Files are file paths referenced in the text.
	Files []string

	// Keywords are fallback lookup terms when no entity matched.
	Keywords []string
}

// Analyzer extracts intent from question text.
type Analyzer struct{}

// NewAnalyzer creates an analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze extracts the intent of a question. It never fails; a text
// with nothing recognizable yields a general intent with keywords only.
func (a *Analyzer) Analyze(text string) *Intent {
	intent := &Intent{
		Type:      classify(text),
		Functions: extractFunctions(text),
		Files:     extractFiles(text),
	}
	if len(intent.Functions) == 0 && len(intent.Files) == 0 {
		intent.Keywords = extractKeywords(text)
	}
	return intent
}

func classify(text string) Type {
	switch {
	case callersPattern.MatchString(text):
		return TypeCallers
	case calleesPattern.MatchString(text):
		return TypeCallees
	case dependencyPattern.MatchString(text):
		return TypeDependency
	case explainPattern.MatchString(strings.TrimSpace(text)):
		return TypeExplanation
	default:
		return TypeGeneral
	}
}

func extractFunctions(text string) []string {
	var fns []string
	seen := make(map[string]bool)
	for _, m := range functionPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		// File stems like "parser.c" match the snake pattern only with
		// the dot stripped, but guard against stopwords regardless.
		if name == "" || stopwords[name] || seen[name] {
			continue
		}
		seen[name] = true
		fns = append(fns, name)
	}
	return fns
}

func extractFiles(text string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, m := range filePattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			files = append(files, m[1])
		}
	}
	return files
}

func extractKeywords(text string) []string {
	var words []string
	seen := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, "?!.,;:'\"()")
		if len(w) < 3 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}
