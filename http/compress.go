package http

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// Compressor encodes a response body for a negotiated content-encoding.
type Compressor interface {
	Encoding() string
	Compress(body []byte) ([]byte, error)
}

type GzipCompressor struct {
	level   int
	writers sync.Pool
}

func NewGzipCompressor(level int) *GzipCompressor {
	return &GzipCompressor{level: level}
}

func (c *GzipCompressor) Encoding() string {
	return EncodingGzip
}

func (c *GzipCompressor) Compress(body []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw, ok := c.writers.Get().(*gzip.Writer)
	if ok {
		zw.Reset(&buf)
	} else {
		var err error
		zw, err = gzip.NewWriterLevel(&buf, c.level)
		if err != nil {
			return nil, err
		}
	}
	defer c.writers.Put(zw)

	if _, err := zw.Write(body); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
