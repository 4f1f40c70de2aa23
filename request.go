package broute

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// Request is the per-request value passed through every middleware and handler of one dispatch.
// Derived fields are computed from the headers at construction, the body is read lazily.
type Request struct {
	Method  string
	URL     *URL
	Headers map[string][]string // keys are lower-cased

	// DataSaverEnabled is true for "Save-Data: on", false for any other value and nil when the
	// header is absent.
	DataSaverEnabled *bool
	// DoNotTrackEnabled is true for "DNT: 1", false for any other value and nil when the header
	// is absent.
	DoNotTrackEnabled *bool

	AcceptedContentTypes     []Accept
	AcceptedLanguages        []Accept
	AcceptedContentEncodings []Accept
	AcceptedContentCharsets  []Accept

	Cookies   map[string]string
	Referer   *URL
	UserAgent string

	// CustomSettings carries values between middleware and handlers of this request only.
	CustomSettings map[string]any
	// Authentication is set by authentication middleware, nil otherwise.
	Authentication any

	body *lazyBody
}

// NewRequest builds a request from what a transport listener provides. The body is not read.
func NewRequest(method, rawURL string, headers map[string][]string, body io.Reader) (*Request, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, NewError(CodeBadRequest, err)
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	hdrs := make(map[string][]string, len(headers))
	for name, vals := range headers {
		key := strings.ToLower(name)
		hdrs[key] = append(hdrs[key], vals...)
	}

	req := &Request{
		Method:            method,
		URL:               u,
		Headers:           hdrs,
		DataSaverEnabled:  parseFlag(hdrs, "save-data", "on"),
		DoNotTrackEnabled: parseFlag(hdrs, "dnt", "1"),
		CustomSettings:    map[string]any{},
		body:              newLazyBody(body),
	}

	req.AcceptedContentTypes = parseAcceptHeader(req.Header("accept"))
	req.AcceptedLanguages = parseAcceptHeader(req.Header("accept-language"))
	req.AcceptedContentEncodings = parseAcceptHeader(req.Header("accept-encoding"))
	req.AcceptedContentCharsets = parseAcceptHeader(req.Header("accept-charset"))
	req.Cookies = parseCookieHeader(strings.Join(hdrs["cookie"], "; ")) // http/2 may split cookies over headers
	req.UserAgent = req.Header("user-agent")

	if ref := req.Header("referer"); ref != "" {
		req.Referer, _ = ParseURL(ref)
	}

	return req, nil
}

// RequestFromHTTP builds a request from a standard library server request.
func RequestFromHTTP(r *http.Request) (*Request, error) {
	raw := r.URL.RequestURI()
	if r.URL.Fragment != "" {
		raw += "#" + r.URL.EscapedFragment()
	}

	if host := r.Host; host != "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}

		raw = scheme + "://" + host + raw
	}

	req, err := NewRequest(r.Method, raw, r.Header, r.Body)
	if err != nil {
		return nil, errors.Wrap(err, "init request from http request")
	}

	return req, nil
}

// Header returns all values of the (case-insensitive) header joined with ", ".
func (r *Request) Header(name string) string {
	return strings.Join(r.Headers[strings.ToLower(name)], ", ")
}

// Body returns the request body, nil when the stream was empty. The stream is read once; every
// caller, concurrent or not, gets the same result.
func (r *Request) Body(ctx context.Context) (*string, error) {
	return r.body.get(ctx)
}
