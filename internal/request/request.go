// Package request defines the immutable per-request value handed to
// classification and the protocol adapters.
//
// The core never reads ambient request state: everything an adapter may
// inspect (query, combined form parameters, raw body) is captured here
// once, and the body is a rewindable byte slice rather than a one-shot
// stream, because classification sniffs it before an adapter consumes it.
package request

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// maxBodyBytes caps how much of a request body is buffered.
const maxBodyBytes = 10 << 20

// Context is an immutable snapshot of one inbound request.
type Context struct {
	method   string
	path     string
	rawQuery string
	query    url.Values
	form     url.Values
	body     []byte
}

// FromHTTP captures an *http.Request into a Context, buffering the body.
func FromHTTP(r *http.Request) (*Context, error) {
	if r == nil {
		return nil, fmt.Errorf("request is required")
	}

	var body []byte
	if r.Body != nil {
		// Read one byte past the cap so an over-limit body fails
		// loudly instead of binding a truncated payload.
		buffered, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		if len(buffered) > maxBodyBytes {
			return nil, fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
		}
		body = buffered
	}

	query := r.URL.Query()
	form := cloneValues(query)
	if isFormEncoded(r.Header.Get("Content-Type")) {
		posted, err := url.ParseQuery(string(body))
		if err == nil {
			for key, values := range posted {
				form[key] = append(form[key], values...)
			}
		}
	}

	return &Context{
		method:   r.Method,
		path:     r.URL.Path,
		rawQuery: r.URL.RawQuery,
		query:    query,
		form:     form,
		body:     body,
	}, nil
}

// New builds a Context from raw parts. Used by tests and by callers that
// do not hold an *http.Request.
func New(method, path, rawQuery string, body []byte) *Context {
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	return &Context{
		method:   method,
		path:     path,
		rawQuery: rawQuery,
		query:    query,
		form:     cloneValues(query),
		body:     body,
	}
}

// Method returns the HTTP method.
func (c *Context) Method() string { return c.method }

// Path returns the raw URL path.
func (c *Context) Path() string { return c.path }

// RawQuery returns the unparsed query string.
func (c *Context) RawQuery() string { return c.rawQuery }

// Query returns the parsed query parameters.
func (c *Context) Query() url.Values { return c.query }

// Form returns the combined query and urlencoded-body parameters.
func (c *Context) Form() url.Values { return c.form }

// HasField reports whether the combined parameters contain the key.
func (c *Context) HasField(key string) bool {
	_, ok := c.form[key]
	return ok
}

// Body returns the buffered request body.
func (c *Context) Body() []byte { return c.body }

// BodyReader returns a fresh reader over the buffered body. Each call
// starts at the beginning, so sniffing never exhausts the body for the
// adapter that follows.
func (c *Context) BodyReader() io.Reader {
	return bytes.NewReader(c.body)
}

// HasBody reports whether the request carried a non-empty body.
func (c *Context) HasBody() bool { return len(c.body) > 0 }

func isFormEncoded(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.EqualFold(mediaType, "application/x-www-form-urlencoded")
}

func cloneValues(values url.Values) url.Values {
	cloned := make(url.Values, len(values))
	for key, list := range values {
		cloned[key] = append([]string(nil), list...)
	}
	return cloned
}
