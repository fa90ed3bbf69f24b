// Package sku suggests human readable SKUs for product variants.
//
// A suggestion is not guaranteed unique: the name part is truncated to four
// characters and the suffix is eight characters of a UUIDv7. Callers treat
// it as an editable default and uniqueness is enforced on save.
package sku

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	nameLength   = 4
	suffixLength = 8

	// MaxLength is the longest SKU the variant table stores.
	MaxLength = 255
)

var (
	nameStrip      = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	dashRuns       = regexp.MustCompile(`-+`)
	partStrip      = regexp.MustCompile(`[^a-z0-9]`)
)

// Option is one selected option value, e.g. {"Color", "Red"}.
type Option struct {
	Name  string
	Value string
}

// Generator produces SKU suggestions. NewSuffix is swappable for tests.
type Generator struct {
	NewSuffix func() string
}

func NewGenerator() *Generator {
	return &Generator{NewSuffix: uuidSuffix}
}

// Generate returns {name}-{options}-{suffix}, or {name}-{suffix} when no
// option parts remain after normalisation.
func (g *Generator) Generate(productName string, options []Option) string {
	parts := make([]string, 0, len(options)+2)
	parts = append(parts, NormalizeName(productName))

	optionParts := make([]string, 0, len(options))
	for _, o := range options {
		optionParts = append(optionParts, normalizePart(o.Name)+"-"+normalizePart(o.Value))
	}
	if len(optionParts) > 0 {
		parts = append(parts, strings.Join(optionParts, "-"))
	}

	parts = append(parts, g.NewSuffix())
	return strings.Join(parts, "-")
}

// Generate uses the default generator.
func Generate(productName string, options []Option) string {
	return NewGenerator().Generate(productName, options)
}

// NormalizeName lowercases, keeps [a-z0-9 -], turns whitespace runs into a
// dash, collapses dashes, trims and truncates to four characters.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = nameStrip.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > nameLength {
		s = s[:nameLength]
	}
	return s
}

func normalizePart(s string) string {
	return partStrip.ReplaceAllString(strings.ToLower(s), "")
}

func uuidSuffix() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	s := id.String()
	return s[len(s)-suffixLength:]
}
