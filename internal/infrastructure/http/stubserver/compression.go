package stubserver

import (
	"compress/gzip"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// compressionLevel is used for both brotli and gzip
const compressionLevel = 5

// CompressionMiddleware compresses JSON responses with brotli, or gzip when
// the client does not accept brotli
func CompressionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		encoding := negotiateEncoding(c.GetHeader("Accept-Encoding"))
		if encoding == "" {
			c.Next()
			return
		}

		writer := &compressResponseWriter{
			ResponseWriter: c.Writer,
			encoding:       encoding,
		}
		c.Writer = writer
		c.Next()
		writer.Close()
	}
}

func negotiateEncoding(header string) string {
	accepted := map[string]bool{}
	for _, part := range strings.Split(header, ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		accepted[strings.ToLower(name)] = true
	}
	switch {
	case accepted["br"]:
		return "br"
	case accepted["gzip"]:
		return "gzip"
	default:
		return ""
	}
}

// compressResponseWriter wraps gin.ResponseWriter to compress the body
type compressResponseWriter struct {
	gin.ResponseWriter
	encoding string
	writer   io.WriteCloser
	decided  bool
}

// Write implements the io.Writer interface
func (w *compressResponseWriter) Write(data []byte) (int, error) {
	if !w.decided {
		w.decide()
	}
	if w.writer != nil {
		return w.writer.Write(data)
	}
	return w.ResponseWriter.Write(data)
}

// WriteString implements gin.ResponseWriter
func (w *compressResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// decide picks compression for JSON bodies only
func (w *compressResponseWriter) decide() {
	w.decided = true

	contentType := w.ResponseWriter.Header().Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return
	}

	w.ResponseWriter.Header().Set("Content-Encoding", w.encoding)
	w.ResponseWriter.Header().Add("Vary", "Accept-Encoding")
	w.ResponseWriter.Header().Del("Content-Length")

	switch w.encoding {
	case "br":
		w.writer = brotli.NewWriterLevel(w.ResponseWriter, compressionLevel)
	case "gzip":
		w.writer, _ = gzip.NewWriterLevel(w.ResponseWriter, compressionLevel)
	}
}

// Close flushes the compressor
func (w *compressResponseWriter) Close() {
	if w.writer != nil {
		_ = w.writer.Close()
	}
}
