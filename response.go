package broute

import (
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

// Response is the finalized result of a request. A nil Body means no content.
type Response struct {
	Code    int
	Body    *string
	Headers Header
}

// BodyString returns the body, or "" when there is none.
func (r *Response) BodyString() string { return lo.FromPtr(r.Body) }

// JSON reads a value from a JSON body using gjson path syntax, handy for response middleware that
// rewrites handler output.
func (r *Response) JSON(path string) gjson.Result {
	return gjson.Get(r.BodyString(), path)
}

// Clone returns a copy that shares nothing with r.
func (r *Response) Clone() *Response {
	c := &Response{Code: r.Code, Headers: r.Headers.Clone()}
	if r.Body != nil {
		c.Body = lo.ToPtr(*r.Body)
	}

	return c
}
