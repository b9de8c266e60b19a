package http

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var (
	ErrMalformedRequest     = errors.New("http: malformed request line")
	ErrInvalidContentLength = errors.New("http: invalid content-length")
)

// Headers maps lower-cased header names to their raw values.
type Headers map[string]string

// Get looks up name case-insensitively. Absent headers yield "".
func (h Headers) Get(name string) string {
	return h[strings.ToLower(name)]
}

func (h Headers) Set(name, value string) {
	h[strings.ToLower(name)] = value
}

type Request struct {
	Method   string
	Path     string
	Protocol string
	Headers  Headers

	// Body aliases the connection read buffer and is only valid until the next read.
	Body []byte
}

// Parse decodes a raw request of the form
//
//	METHOD SP PATH SP VERSION CRLF *(NAME ": " VALUE CRLF) CRLF BODY
//
// Header lines without a ": " separator or with an invalid field name are skipped. When a
// Content-Length is present the body is cut to it; a longer declared length keeps whatever
// bytes arrived.
func (req *Request) Parse(data []byte) error {
	req.Reset()

	head, body := data, []byte(nil)
	if i := bytes.Index(data, headerEnd); i >= 0 {
		head, body = data[:i], data[i+len(headerEnd):]
	}

	lines := strings.Split(string(head), "\r\n")

	parts := strings.Split(lines[0], " ")
	if len(parts) < 2 || parts[0] == "" || !strings.HasPrefix(parts[1], "/") {
		return fmt.Errorf("%w: %q", ErrMalformedRequest, lines[0])
	}
	req.Method = parts[0]
	req.Path = parts[1]
	if len(parts) > 2 {
		req.Protocol = parts[2]
	}

	for _, line := range lines[1:] {
		i := strings.Index(line, ": ")
		if i < 0 {
			continue
		}
		name := line[:i]
		if !httpguts.ValidHeaderFieldName(name) {
			continue
		}
		req.Headers[strings.ToLower(name)] = line[i+2:]
	}

	if v, ok := req.Headers["content-length"]; ok {
		n, err := atoi([]byte(v))
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidContentLength, v)
		}
		if n < len(body) {
			body = body[:n]
		}
	}
	req.Body = body

	return nil
}

// Segments splits the path, without its leading slash, on "/".
func (req *Request) Segments() []string {
	return strings.Split(strings.TrimPrefix(req.Path, "/"), "/")
}

// WantsClose reports whether the client asked for the connection to end after this request.
func (req *Request) WantsClose() bool {
	return strings.EqualFold(req.Headers.Get("connection"), "close")
}

// AcceptsEncoding reports whether the Accept-Encoding list holds exactly the given token.
func (req *Request) AcceptsEncoding(token string) bool {
	v := req.Headers.Get("accept-encoding")
	if v == "" {
		return false
	}
	for _, enc := range strings.Split(v, ", ") {
		if enc == token {
			return true
		}
	}
	return false
}

func (req *Request) Reset() {
	req.Method = ""
	req.Path = ""
	req.Protocol = ""
	req.Body = nil
	if req.Headers == nil {
		req.Headers = make(Headers)
	} else {
		clear(req.Headers)
	}
}
