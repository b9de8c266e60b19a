package http

import (
	"reflect"
	"testing"

	"github.com/freekieb7/gravel-httpd/test"
)

func TestRequestParse(t *testing.T) {
	var req Request

	reqMsg := []byte("GET /echo/abc HTTP/1.1\r\nHost: localhost:4221\r\nUSER-AGENT: curl/8.0\r\nAccept: */*\r\n\r\n")

	if err := req.Parse(reqMsg); err != nil {
		t.Fatal(err)
	}

	test.AssertEqual(t, "GET", req.Method)
	test.AssertEqual(t, "/echo/abc", req.Path)
	test.AssertEqual(t, "HTTP/1.1", req.Protocol)
	test.AssertEqual(t, "localhost:4221", req.Headers.Get("Host"))
	test.AssertEqual(t, "curl/8.0", req.Headers.Get("user-agent"))
	test.AssertEqual(t, "curl/8.0", req.Headers.Get("User-Agent"))
	test.AssertEqual(t, "", req.Headers.Get("Content-Type"))
	test.AssertEqual(t, 0, len(req.Body))
}

func TestRequestParseDuplicateHeaderLastWins(t *testing.T) {
	var req Request

	if err := req.Parse([]byte("GET / HTTP/1.1\r\nX-A: one\r\nx-a: two\r\n\r\n")); err != nil {
		t.Fatal(err)
	}

	test.AssertEqual(t, "two", req.Headers.Get("X-A"))
}

func TestRequestParseSkipsUnusableHeaderLines(t *testing.T) {
	var req Request

	reqMsg := []byte("GET / HTTP/1.1\r\nNoSeparator\r\nBad Name: x\r\nGood: y\r\n\r\n")
	if err := req.Parse(reqMsg); err != nil {
		t.Fatal(err)
	}

	test.AssertEqual(t, 1, len(req.Headers))
	test.AssertEqual(t, "y", req.Headers.Get("good"))
}

func TestRequestParseBody(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		body string
	}{
		{"no content-length", "POST /files/a HTTP/1.1\r\n\r\nhello", "hello"},
		{"exact content-length", "POST /files/a HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello", "hello"},
		{"content-length cuts trailing bytes", "POST /files/a HTTP/1.1\r\nContent-Length: 3\r\n\r\nhello", "hel"},
		{"content-length larger than received", "POST /files/a HTTP/1.1\r\nContent-Length: 10\r\n\r\nhello", "hello"},
		{"no blank line", "GET / HTTP/1.1\r\nHost: x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req Request
			if err := req.Parse([]byte(tt.msg)); err != nil {
				t.Fatal(err)
			}
			test.AssertEqual(t, tt.body, string(req.Body))
		})
	}
}

func TestRequestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		err  error
	}{
		{"empty", "", ErrMalformedRequest},
		{"single token", "GARBAGE\r\n\r\n", ErrMalformedRequest},
		{"path without slash", "GET echo HTTP/1.1\r\n\r\n", ErrMalformedRequest},
		{"leading space", " / HTTP/1.1\r\n\r\n", ErrMalformedRequest},
		{"non numeric content-length", "POST /files/a HTTP/1.1\r\nContent-Length: abc\r\n\r\n", ErrInvalidContentLength},
		{"negative content-length", "POST /files/a HTTP/1.1\r\nContent-Length: -1\r\n\r\n", ErrInvalidContentLength},
		{"empty content-length", "POST /files/a HTTP/1.1\r\nContent-Length: \r\n\r\n", ErrInvalidContentLength},
		{"overflowing content-length", "POST /files/a HTTP/1.1\r\nContent-Length: 99999999999999999999999\r\n\r\n", ErrInvalidContentLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req Request
			test.AssertErrorIs(t, req.Parse([]byte(tt.msg)), tt.err)
		})
	}
}

func TestRequestParseResetsPreviousRequest(t *testing.T) {
	var req Request

	if err := req.Parse([]byte("POST /files/a HTTP/1.1\r\nConnection: close\r\n\r\nbody")); err != nil {
		t.Fatal(err)
	}
	if err := req.Parse([]byte("GET / HTTP/1.1\r\n\r\n")); err != nil {
		t.Fatal(err)
	}

	test.AssertEqual(t, "", req.Headers.Get("connection"))
	test.AssertEqual(t, 0, len(req.Body))
}

func TestRequestSegments(t *testing.T) {
	tests := map[string][]string{
		"/":              {""},
		"/echo":          {"echo"},
		"/echo/":         {"echo", ""},
		"/echo/abc":      {"echo", "abc"},
		"/echo/abc/def":  {"echo", "abc", "def"},
		"/files/a.txt":   {"files", "a.txt"},
		"/user-agent":    {"user-agent"},
		"//double-slash": {"", "double-slash"},
	}

	for path, want := range tests {
		req := Request{Path: path}
		if got := req.Segments(); !reflect.DeepEqual(got, want) {
			t.Errorf("Segments(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestRequestWantsClose(t *testing.T) {
	tests := map[string]bool{
		"close":      true,
		"Close":      true,
		"CLOSE":      true,
		"keep-alive": false,
		"":           false,
	}

	for value, want := range tests {
		req := Request{Headers: Headers{}}
		if value != "" {
			req.Headers.Set("Connection", value)
		}
		test.AssertEqual(t, want, req.WantsClose())
	}
}

func TestRequestAcceptsEncoding(t *testing.T) {
	tests := map[string]bool{
		"gzip":                 true,
		"deflate, gzip":        true,
		"invalid-1, gzip, br":  true,
		"deflate,gzip":         false,
		"gzip;q=1.0":           false,
		"GZIP":                 false,
		"invalid-1, invalid-2": false,
		"":                     false,
	}

	for value, want := range tests {
		req := Request{Headers: Headers{"accept-encoding": value}}
		if got := req.AcceptsEncoding("gzip"); got != want {
			t.Errorf("AcceptsEncoding with %q = %v, want %v", value, got, want)
		}
	}
}

func BenchmarkRequestParse(b *testing.B) {
	reqMsg := []byte("GET /test HTTP/1.1\r\nAccept: text/css\r\nConnection: keep-alive\r\nContent-Length: 0\r\n\r\n")
	var req Request

	for b.Loop() {
		if err := req.Parse(reqMsg); err != nil {
			b.Error(err)
		}
	}
}
