package http

import (
	"bufio"
	"log/slog"
)

type Response struct {
	Status          uint16
	ContentType     string
	ContentEncoding string
	Body            []byte

	// Close adds "Connection: Close" and ends the connection once the response is written.
	Close bool
}

func (res *Response) WithStatus(status uint16) *Response {
	res.Status = status
	return res
}

func (res *Response) WithText(payload string) *Response {
	res.ContentType = ContentTypeTextPlain
	res.Body = []byte(payload)
	return res
}

func (res *Response) WithBytes(contentType string, payload []byte) *Response {
	res.ContentType = contentType
	res.Body = payload
	return res
}

// Negotiate compresses the body when the request accepts the compressor's encoding. A failing
// compressor leaves the body untouched and no encoding is advertised.
func (res *Response) Negotiate(req *Request, compressor Compressor, logger *slog.Logger) {
	if compressor == nil || !req.AcceptsEncoding(compressor.Encoding()) {
		return
	}

	compressed, err := compressor.Compress(res.Body)
	if err != nil {
		logger.Error("compressing response body failed, sending identity",
			"encoding", compressor.Encoding(), "error", err)
		return
	}

	res.Body = compressed
	res.ContentEncoding = compressor.Encoding()
}

// WriteTo serializes the response in a fixed header order and flushes bw.
func (res *Response) WriteTo(bw *bufio.Writer) error {
	var num [20]byte

	// Status line
	bw.Write(protocolHttp11)
	bw.WriteByte(' ')
	bw.Write(num[:writeIntToBuffer(int(res.Status), num[:])])
	bw.WriteByte(' ')
	bw.WriteString(StatusText(res.Status))
	bw.Write(crlf)

	if res.ContentEncoding != "" {
		bw.Write(headerContentEncoding)
		bw.WriteString(res.ContentEncoding)
		bw.Write(crlf)
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = ContentTypeTextPlain
	}
	bw.Write(headerContentType)
	bw.WriteString(contentType)
	bw.Write(crlf)

	bw.Write(headerContentLength)
	bw.Write(num[:writeIntToBuffer(len(res.Body), num[:])])
	bw.Write(crlf)

	if res.Close {
		bw.Write(connectionClose)
	}

	bw.Write(crlf)
	bw.Write(res.Body)

	return bw.Flush()
}

func (res *Response) Reset() {
	res.Status = StatusOK
	res.ContentType = ContentTypeTextPlain
	res.ContentEncoding = ""
	res.Body = nil
	res.Close = false
}
