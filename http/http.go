package http

const (
	// DefaultReadBufferSize is the size of the single read a connection performs per request.
	// Requests whose header block does not fit are truncated.
	DefaultReadBufferSize  = 256
	DefaultWorkerPoolSize  = 4
	DefaultWriteBufferSize = 4096
)

const (
	ContentTypeTextPlain   = "text/plain"
	ContentTypeTextHTML    = "text/html"
	ContentTypeOctetStream = "application/octet-stream"

	EncodingGzip = "gzip"
)

const (
	MethodGet  = "GET"
	MethodPost = "POST"
)

var (
	protocolHttp11 = []byte("HTTP/1.1")
	crlf           = []byte("\r\n")
	headerEnd      = []byte("\r\n\r\n")

	headerContentEncoding = []byte("Content-Encoding: ")
	headerContentType     = []byte("Content-Type: ")
	headerContentLength   = []byte("Content-Length: ")
	connectionClose       = []byte("Connection: Close\r\n")
)
