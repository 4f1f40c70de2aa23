package broute

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// URL is a parsed request url. Params is filled by the matching handler for the duration of its
// invocation and cleared afterwards.
type URL struct {
	Scheme   string
	Host     string
	Hostname string
	Port     string
	Path     string
	RawQuery string
	Fragment string
	Query    url.Values
	Params   map[string]string

	u *url.URL
}

// ParseURL parses an absolute or origin-form url ("/books/1?lang=nl"). A url starting with "//"
// is an origin-form path with repeated slashes, never a network-path reference.
func ParseURL(raw string) (*URL, error) {
	if strings.HasPrefix(raw, "//") {
		raw = "/" + strings.TrimLeft(raw, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "parse url %q", raw)
	}

	// a bad pair must not fail the request, ParseQuery keeps the pairs that did parse
	query, _ := url.ParseQuery(u.RawQuery)

	return &URL{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Hostname: u.Hostname(),
		Port:     u.Port(),
		Path:     u.Path,
		RawQuery: u.RawQuery,
		Fragment: u.Fragment,
		Query:    query,
		Params:   map[string]string{},
		u:        u,
	}, nil
}

// QueryValue returns the first value for the query key, or "".
func (u *URL) QueryValue(key string) string { return u.Query.Get(key) }

// Param returns the path parameter with the given name, or "".
func (u *URL) Param(key string) string { return u.Params[key] }

// RequestURI returns the escaped path with its query and fragment.
func (u *URL) RequestURI() string {
	uri := u.u.EscapedPath()
	if u.u.ForceQuery || u.RawQuery != "" {
		uri += "?" + u.RawQuery
	}

	if u.Fragment != "" {
		uri += "#" + u.u.EscapedFragment()
	}

	return uri
}

func (u *URL) String() string { return u.u.String() }

// NormalizePath collapses duplicate slashes and strips leading and trailing ones.
func NormalizePath(p string) string {
	return strings.Join(lo.Compact(strings.Split(p, "/")), "/")
}

// DispatchKey turns a raw request url into the key the endpoint tree matches against: the
// normalized path followed by the untouched query and fragment.
func DispatchKey(raw string) string {
	path, suffix := raw, ""
	if idx := strings.IndexAny(raw, "?#"); idx >= 0 {
		path, suffix = raw[:idx], raw[idx:]
	}

	return NormalizePath(path) + suffix
}
