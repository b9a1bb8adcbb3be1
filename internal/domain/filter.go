package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PatternKind tags the variant held by a Pattern.
type PatternKind int

const (
	// PatternLiteral matches when the id contains the literal text.
	PatternLiteral PatternKind = iota
	// PatternRegexp matches when the compiled expression matches the id.
	PatternRegexp
	// PatternGlob matches when the doublestar glob matches the id.
	PatternGlob
)

const (
	regexpPrefix = "re:"
	globPrefix   = "glob:"
)

var (
	defaultInclude = []Pattern{Regexp(regexp.MustCompile(`\.vue$`))}
	defaultExclude = []Pattern{Regexp(regexp.MustCompile(`node_modules`))}
)

// Pattern is one include or exclude rule.
type Pattern struct {
	Kind    PatternKind
	Literal string
	Regexp  *regexp.Regexp
	Glob    string
}

// Literal builds a substring pattern.
func Literal(s string) Pattern {
	return Pattern{Kind: PatternLiteral, Literal: s}
}

// Regexp builds a pattern from a compiled expression.
func Regexp(re *regexp.Regexp) Pattern {
	return Pattern{Kind: PatternRegexp, Regexp: re}
}

// Glob builds a doublestar glob pattern.
func Glob(glob string) Pattern {
	return Pattern{Kind: PatternGlob, Glob: glob}
}

// ParsePattern reads a pattern from its textual form:
// "re:<expr>" is a regular expression, "glob:<glob>" a doublestar glob,
// anything else a literal substring.
func ParsePattern(s string) (Pattern, error) {
	switch {
	case strings.HasPrefix(s, regexpPrefix):
		expr := strings.TrimPrefix(s, regexpPrefix)

		re, err := regexp.Compile(expr)
		if err != nil {
			return Pattern{}, fmt.Errorf("invalid pattern %q: %w", s, err)
		}

		return Regexp(re), nil
	case strings.HasPrefix(s, globPrefix):
		glob := strings.TrimPrefix(s, globPrefix)
		if !doublestar.ValidatePattern(glob) {
			return Pattern{}, fmt.Errorf("invalid pattern %q: %w", s, doublestar.ErrBadPattern)
		}

		return Glob(glob), nil
	default:
		return Literal(s), nil
	}
}

// ParsePatterns reads every pattern in values.
func ParsePatterns(values []string) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(values))

	for _, value := range values {
		if value == "" {
			continue
		}

		pattern, err := ParsePattern(value)
		if err != nil {
			return nil, err
		}

		patterns = append(patterns, pattern)
	}

	return patterns, nil
}

// Match reports whether id satisfies the pattern.
func (p Pattern) Match(id string) bool {
	switch p.Kind {
	case PatternLiteral:
		return strings.Contains(id, p.Literal)
	case PatternRegexp:
		return p.Regexp != nil && p.Regexp.MatchString(id)
	case PatternGlob:
		matched, err := doublestar.Match(p.Glob, filepath.ToSlash(id))
		return err == nil && matched
	default:
		return false
	}
}

func (p Pattern) String() string {
	switch p.Kind {
	case PatternRegexp:
		if p.Regexp == nil {
			return regexpPrefix
		}

		return regexpPrefix + p.Regexp.String()
	case PatternGlob:
		return globPrefix + p.Glob
	default:
		return p.Literal
	}
}

// Filter decides which module ids take part in the pipeline.
type Filter struct {
	include []Pattern
	exclude []Pattern
}

// NewFilter builds a Filter. Empty sets fall back to the defaults: include
// paths ending in ".vue", exclude paths containing "node_modules".
func NewFilter(include, exclude []Pattern) *Filter {
	if len(include) == 0 {
		include = defaultInclude
	}

	if len(exclude) == 0 {
		exclude = defaultExclude
	}

	return &Filter{include: include, exclude: exclude}
}

// Match reports whether id matches an include pattern and no exclude pattern.
func (f *Filter) Match(id string) bool {
	return matchAny(f.include, id) && !matchAny(f.exclude, id)
}

// Include returns the effective include patterns.
func (f *Filter) Include() []Pattern {
	return f.include
}

// Exclude returns the effective exclude patterns.
func (f *Filter) Exclude() []Pattern {
	return f.exclude
}

func matchAny(patterns []Pattern, id string) bool {
	for _, pattern := range patterns {
		if pattern.Match(id) {
			return true
		}
	}

	return false
}
