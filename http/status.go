package http

const (
	StatusOK      uint16 = 200 // RFC 7231, 6.3.1
	StatusCreated uint16 = 201 // RFC 7231, 6.3.2

	StatusBadRequest uint16 = 400 // RFC 7231, 6.5.1
	StatusNotFound   uint16 = 404 // RFC 7231, 6.5.4

	StatusInternalServerError uint16 = 500 // RFC 7231, 6.6.1
)

var (
	unknownStatusCode = "Unknown Status Code"

	statusMessages = map[uint16]string{
		StatusOK:      "OK",
		StatusCreated: "Created",

		StatusBadRequest: "Bad Request",
		StatusNotFound:   "Not Found",

		StatusInternalServerError: "Internal Server Error",
	}
)

// StatusText returns the reason phrase sent on the status line.
func StatusText(status uint16) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return unknownStatusCode
}
