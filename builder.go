package broute

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// StatusAuto resolves to 204 when there is no body and 200 otherwise.
const StatusAuto = 0

const (
	contentTypeHTML  = "text/html; charset=utf-8"
	contentTypePlain = "text/plain; charset=utf-8"
	contentTypeJSON  = "application/json;charset=UTF-8"
)

// ResponseBuilder accumulates a status code, body and headers into a [Response].
type ResponseBuilder struct {
	code    int
	body    *string
	headers Header
	err     error
	now     func() time.Time
}

// NewResponseBuilder inits a builder with an automatic status code and no body.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{code: StatusAuto, now: time.Now}
}

// SetStatusCode sets the status code, use [StatusAuto] to infer it from the body.
func (b *ResponseBuilder) SetStatusCode(code int) *ResponseBuilder {
	b.code = code
	return b
}

// SetBody sets the body without touching the content type.
func (b *ResponseBuilder) SetBody(body string) *ResponseBuilder {
	b.body = &body
	return b
}

// SetNoBody removes the body.
func (b *ResponseBuilder) SetNoBody() *ResponseBuilder {
	b.body = nil
	return b
}

// SetHTMLBody sets an html body and its content type.
func (b *ResponseBuilder) SetHTMLBody(body string) *ResponseBuilder {
	return b.SetContentType(contentTypeHTML).SetBody(body)
}

// SetPlainTextBody sets a plain text body and its content type.
func (b *ResponseBuilder) SetPlainTextBody(body string) *ResponseBuilder {
	return b.SetContentType(contentTypePlain).SetBody(body)
}

// JSONOption configures JSON body serialization.
type JSONOption func(*jsonOptions)

type jsonOptions struct {
	indent   string
	replacer func(key string, value any) any
}

// WithJSONIndent indents the JSON body with the given string per level.
func WithJSONIndent(indent string) JSONOption {
	return func(o *jsonOptions) { o.indent = indent }
}

// WithJSONReplacer calls fn for every value of the serialized document, starting at the root with
// key "". Array elements get their index as key. The returned value replaces the original.
func WithJSONReplacer(fn func(key string, value any) any) JSONOption {
	return func(o *jsonOptions) { o.replacer = fn }
}

// SetJSONBody serializes v as the body and sets the JSON content type. Serialization errors are
// returned from [ResponseBuilder.Build].
func (b *ResponseBuilder) SetJSONBody(v any, opts ...JSONOption) *ResponseBuilder {
	var o jsonOptions
	for _, opt := range opts {
		opt(&o)
	}

	body, err := marshalJSON(v, o)
	if err != nil {
		b.err = errors.Wrap(err, "set json body")
		return b
	}

	return b.SetContentType(contentTypeJSON).SetBody(body)
}

// SetHeader sets a header, replacing earlier values.
func (b *ResponseBuilder) SetHeader(key string, vals ...string) *ResponseBuilder {
	b.headers.Set(key, vals...)
	return b
}

// SetContentType sets the Content-Type header.
func (b *ResponseBuilder) SetContentType(value string) *ResponseBuilder {
	return b.SetHeader("Content-Type", value)
}

// SetContentEncoding sets the Content-Encoding header.
func (b *ResponseBuilder) SetContentEncoding(encodings ...string) *ResponseBuilder {
	return b.SetHeader("Content-Encoding", strings.Join(encodings, ", "))
}

// SetCacheExpiration makes the response publicly cacheable for d.
func (b *ResponseBuilder) SetCacheExpiration(d time.Duration) *ResponseBuilder {
	return b.setCache(int64(d/time.Second), b.now().Add(d))
}

// SetCacheExpirationDate makes the response publicly cacheable until t.
func (b *ResponseBuilder) SetCacheExpirationDate(t time.Time) *ResponseBuilder {
	secs := t.Sub(b.now()).Round(time.Second) / time.Second
	return b.setCache(int64(secs), t)
}

func (b *ResponseBuilder) setCache(maxAge int64, expires time.Time) *ResponseBuilder {
	age := strconv.FormatInt(maxAge, 10)
	return b.
		SetHeader("Cache-Control", "public, max-age="+age+", s-maxage="+age).
		SetHeader("Expires", expires.UTC().Format(http.TimeFormat))
}

// SetAttachment controls whether clients should download the body. An empty filename omits the
// filename parameter.
func (b *ResponseBuilder) SetAttachment(download bool, filename string) *ResponseBuilder {
	b.headers.Del("Content-Disposition")
	if !download {
		return b
	}

	disposition := "attachment"
	if filename != "" {
		disposition += fmt.Sprintf("; filename=%q", filename)
	}

	return b.SetHeader("Content-Disposition", disposition)
}

// CORSOption configures the CORS headers.
type CORSOption func(*corsOptions)

type corsOptions struct {
	origin  string
	methods []string
	headers []string
}

func newCORSOptions(opts ...CORSOption) corsOptions {
	o := corsOptions{
		origin: "*",
		methods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		headers: []string{"X-Requested-With", "Content-Type"},
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func (o corsOptions) apply(h *Header) {
	h.Set("Access-Control-Allow-Origin", o.origin)
	h.Set("Access-Control-Allow-Methods", strings.Join(o.methods, ", "))
	h.Set("Access-Control-Allow-Headers", strings.Join(o.headers, ", "))
}

// WithAllowedOrigin overrides the "*" default.
func WithAllowedOrigin(origin string) CORSOption {
	return func(o *corsOptions) { o.origin = origin }
}

// WithAllowedMethods overrides the default method list.
func WithAllowedMethods(methods ...string) CORSOption {
	return func(o *corsOptions) { o.methods = methods }
}

// WithAllowedHeaders overrides the default header list.
func WithAllowedHeaders(headers ...string) CORSOption {
	return func(o *corsOptions) { o.headers = headers }
}

// SetCORS sets the three Access-Control-Allow-* headers.
func (b *ResponseBuilder) SetCORS(opts ...CORSOption) *ResponseBuilder {
	newCORSOptions(opts...).apply(&b.headers)
	return b
}

// Build returns the response. The builder can be reused, the returned response shares no state
// with it.
func (b *ResponseBuilder) Build() (*Response, error) {
	if b.err != nil {
		return nil, b.err
	}

	code := b.code
	if code == StatusAuto {
		code = lo.Ternary(b.body == nil, http.StatusNoContent, http.StatusOK)
	}

	resp := &Response{Code: code, Headers: b.headers.Clone()}
	if b.body != nil {
		resp.Body = lo.ToPtr(*b.body)
	}

	return resp, nil
}

// Redirect returns a 307 (or 308 when permanent) response with only a Location header.
func Redirect(location string, permanent bool) *Response {
	resp := &Response{Code: lo.Ternary(permanent, http.StatusPermanentRedirect, http.StatusTemporaryRedirect)}
	resp.Headers.Set("Location", location)

	return resp
}

func marshalJSON(v any, o jsonOptions) (string, error) {
	if o.replacer != nil {
		tree, err := toJSONTree(v)
		if err != nil {
			return "", err
		}

		v = replaceJSON("", tree, o.replacer)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", o.indent)
	if err := enc.Encode(v); err != nil {
		return "", errors.Wrap(err, "encode")
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func toJSONTree(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, errors.Wrap(err, "decode")
	}

	return tree, nil
}

func replaceJSON(key string, v any, fn func(string, any) any) any {
	v = fn(key, v)
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = replaceJSON(k, child, fn)
		}
	case []any:
		for i, child := range t {
			t[i] = replaceJSON(strconv.Itoa(i), child, fn)
		}
	}

	return v
}
