// Package qr builds the scannable verification payload of a certificate and
// renders it as a PNG.
package qr

import (
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
)

// Level is the error-correction level. Printed certificates get photographed
// in poor light, so the highest-redundancy level commonly read by phones is used.
const Level = qrcode.High

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 256

// Encoder turns public identifiers into verification URIs and QR images.
type Encoder struct {
	baseURL string
	size    int
}

// NewEncoder validates the verification base URL once at startup.
func NewEncoder(baseURL string) (*Encoder, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "verification base URL must be absolute")
	}
	return &Encoder{baseURL: trimmed, size: DefaultSize}, nil
}

// Payload returns <base>/<publicId>.
func (e *Encoder) Payload(publicID id.PublicID) string {
	return e.baseURL + "/" + publicID.String()
}

// PNG renders the payload for publicID.
func (e *Encoder) PNG(publicID id.PublicID) ([]byte, error) {
	png, err := qrcode.Encode(e.Payload(publicID), Level, e.size)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render QR code")
	}
	return png, nil
}
