package middleware

import (
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/architeacher/persons/services/svc-persons/internal/config"
)

const brotliEncoding = "br"

// Compression encodes JSON responses with br, gzip or deflate, following the
// client's Accept-Encoding preference.
func Compression(cfg config.Compression) func(http.Handler) http.Handler {
	level := cfg.Level
	if level < 1 || level > 9 {
		level = 5
	}

	compressor := chimiddleware.NewCompressor(level, "application/json", "application/problem+json")
	compressor.SetEncoder(brotliEncoding, func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})

	return compressor.Handler
}
