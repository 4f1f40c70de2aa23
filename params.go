package broute

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// ParamMatcher turns route patterns with parameter placeholders into regular expressions.
type ParamMatcher interface {
	// ValueMatcher returns the regexp source for the pattern, each placeholder replaced by a group
	// capturing one path segment.
	ValueMatcher(pattern string) (string, error)
	// KeyMatcher returns the placeholder names, left to right.
	KeyMatcher(pattern string) []string
	// Expand substitutes vals for the placeholders, left to right.
	Expand(pattern string, vals ...string) (string, error)
}

var (
	// BracesParams matches placeholders like "/books/{id}".
	BracesParams ParamMatcher = placeholderMatcher{re: regexp.MustCompile(`\{([^/{}]+)\}`), reserved: "{}"}
	// ColonParams matches express-style placeholders like "/books/:id".
	ColonParams ParamMatcher = placeholderMatcher{re: regexp.MustCompile(`:([^/:]+)`), reserved: ":"}
	// NoParams treats the whole pattern as a literal.
	NoParams ParamMatcher = literalMatcher{}
	// DefaultParams is used when no matcher is configured.
	DefaultParams = BracesParams
)

// segmentGroup captures one path segment, never the query or fragment that may follow it.
const segmentGroup = `([^/?#]+)`

// queryOrFragment lets a trailing query string or fragment never prevent a structural match.
const queryOrFragment = `(?:[?#].*)?`

type placeholderMatcher struct {
	re       *regexp.Regexp
	reserved string
}

func (m placeholderMatcher) KeyMatcher(pattern string) []string {
	matches := m.re.FindAllStringSubmatch(pattern, -1)
	keys := make([]string, 0, len(matches))
	for _, match := range matches {
		keys = append(keys, match[1])
	}

	return keys
}

func (m placeholderMatcher) ValueMatcher(pattern string) (string, error) {
	var b strings.Builder
	if err := m.walk(pattern, func(lit string) {
		b.WriteString(regexp.QuoteMeta(lit))
	}, func(int) {
		b.WriteString(segmentGroup)
	}); err != nil {
		return "", err
	}

	return b.String(), nil
}

func (m placeholderMatcher) Expand(pattern string, vals ...string) (string, error) {
	var b strings.Builder
	var n int
	if err := m.walk(pattern, func(lit string) {
		b.WriteString(lit)
	}, func(i int) {
		n++
		if i < len(vals) {
			b.WriteString(url.PathEscape(vals[i]))
		}
	}); err != nil {
		return "", err
	}

	switch {
	case len(vals) < n:
		return "", errors.Newf("not enough values for %q: got %d, want %d", pattern, len(vals), n)
	case len(vals) > n:
		return "", errors.Newf("too many values for %q: got %d, want %d", pattern, len(vals), n)
	}

	return b.String(), nil
}

// walk splits the pattern in literal runs and placeholders. Reserved characters left in a
// literal run mean a placeholder was not terminated.
func (m placeholderMatcher) walk(pattern string, literal func(string), placeholder func(int)) error {
	var last int
	for i, loc := range m.re.FindAllStringIndex(pattern, -1) {
		if err := m.literal(pattern, pattern[last:loc[0]], literal); err != nil {
			return err
		}

		placeholder(i)
		last = loc[1]
	}

	return m.literal(pattern, pattern[last:], literal)
}

func (m placeholderMatcher) literal(pattern, lit string, fn func(string)) error {
	if strings.ContainsAny(lit, m.reserved) {
		return errors.Wrapf(ErrMalformedPattern, "pattern %q", pattern)
	}

	fn(lit)

	return nil
}

type literalMatcher struct{}

func (literalMatcher) KeyMatcher(string) []string { return nil }

func (literalMatcher) ValueMatcher(pattern string) (string, error) {
	return regexp.QuoteMeta(pattern), nil
}

func (literalMatcher) Expand(pattern string, vals ...string) (string, error) {
	if len(vals) > 0 {
		return "", errors.Newf("too many values for %q: got %d, want 0", pattern, len(vals))
	}

	return pattern, nil
}

// Pattern is a compiled route pattern, anchored at both ends.
type Pattern struct {
	src  string
	re   *regexp.Regexp
	keys []string
}

// CompilePattern compiles the pattern with the given matcher. The resulting expression also
// accepts an optional query string or fragment after the path.
func CompilePattern(pattern string, m ParamMatcher) (*Pattern, error) {
	value, err := m.ValueMatcher(pattern)
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile("^" + value + queryOrFragment + "$")
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "compile pattern %q", pattern), ErrMalformedPattern)
	}

	return &Pattern{src: pattern, re: re, keys: m.KeyMatcher(pattern)}, nil
}

func (p *Pattern) String() string { return p.src }

// Keys returns the parameter names in placeholder order.
func (p *Pattern) Keys() []string { return p.keys }

// Match reports whether the url matches the pattern.
func (p *Pattern) Match(url string) bool { return p.re.MatchString(url) }

// Params returns the parameter values in url, or an empty map when the url does not match. When a
// name occurs more than once the right-most placeholder wins.
func (p *Pattern) Params(url string) map[string]string {
	params := map[string]string{}

	values := p.re.FindStringSubmatch(url)
	if values == nil {
		return params
	}

	for i, key := range p.keys {
		if i+1 >= len(values) {
			break
		}

		params[key] = unescapeSegment(values[i+1])
	}

	return params
}

// prefixPattern tests whether an endpoint's full path is a prefix of a url.
type prefixPattern struct {
	literal string
	re      *regexp.Regexp
	err     error
}

func compilePrefix(fullPath string, m ParamMatcher) prefixPattern {
	if len(m.KeyMatcher(fullPath)) == 0 {
		return prefixPattern{literal: fullPath}
	}

	value, err := m.ValueMatcher(fullPath)
	if err != nil {
		return prefixPattern{err: err}
	}

	re, err := regexp.Compile("^" + value)
	if err != nil {
		return prefixPattern{err: errors.Mark(err, ErrMalformedPattern)}
	}

	return prefixPattern{re: re}
}

func (p prefixPattern) match(url string) bool {
	switch {
	case p.err != nil:
		return false
	case p.re != nil:
		return p.re.MatchString(url)
	default:
		return strings.HasPrefix(url, p.literal)
	}
}

func unescapeSegment(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}

	return s
}
