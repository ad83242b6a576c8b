package httpserver

import (
	"net/http"
	"time"

	"github.com/bossygit/digital-medical-certificate-system/internal/platform/config"
)

// New builds the HTTP server. The write timeout leaves room for the
// per-request timeout to answer with a 504 first.
func New(cfg config.Server, handler http.Handler) *http.Server {
	write := 30 * time.Second
	if cfg.RequestTimeout > 0 {
		write = cfg.RequestTimeout + 5*time.Second
	}
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       60 * time.Second,
	}
}
