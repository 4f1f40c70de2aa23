package broute

import (
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Reverser keeps track of named patterns and allows building URLS.
type Reverser struct {
	mu   sync.RWMutex
	pats map[string]namedPattern
}

type namedPattern struct {
	pattern string
	matcher ParamMatcher
}

// NewReverser inits the reverser.
func NewReverser() *Reverser {
	return &Reverser{pats: make(map[string]namedPattern)}
}

// Reverse reverses the named pattern into a url.
func (r *Reverser) Reverse(name string, vals ...string) (string, error) {
	r.mu.RLock()
	pat, ok := r.pats[name]
	r.mu.RUnlock()

	if !ok {
		return "", errors.Newf("no pattern named: %q, got: %v", name, r.Names())
	}

	res, err := pat.matcher.Expand(pat.pattern, vals...)
	if err != nil {
		return "", errors.Wrap(err, "failed to build")
	}

	return res, nil
}

// Names returns the registered names, sorted.
func (r *Reverser) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.pats)
	slices.Sort(names)

	return names
}

// Named is a convenience method that panics if naming the pattern fails.
func (r *Reverser) Named(name, str string, m ParamMatcher) string {
	str, err := r.NamedPattern(name, str, m)
	if err != nil {
		panic("broute: " + err.Error())
	}

	return str
}

// NamedPattern checks 'str' against the matcher and stores it under name, returning it as well.
func (r *Reverser) NamedPattern(name, str string, m ParamMatcher) (string, error) {
	if m == nil {
		m = DefaultParams
	}

	if _, err := m.ValueMatcher(str); err != nil {
		return str, errors.Wrap(err, "failed to parse pattern")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pats[name]; exists {
		return str, errors.Newf("pattern with name %q already exists", name)
	}

	r.pats[name] = namedPattern{pattern: str, matcher: m}

	return str, nil
}
