package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name     string
		ua       string
		contains []string
	}{
		{"blank header", "  ", []string{unknownDevice}},
		{"clinic desktop chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36", []string{"Chrome", " on ", "Windows"}},
		{"android phone", "Mozilla/5.0 (Linux; Android 13; SM-A536B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Mobile Safari/537.36", []string{"Chrome", "Android"}},
		{"firefox on linux", "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0", []string{"Firefox", "Linux"}},
		{"scripted client", "curl/8.5.0", []string{" on "}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			label := ParseUserAgent(tc.ua)
			for _, want := range tc.contains {
				assert.Contains(t, label, want)
			}
			assert.NotContains(t, label, "  ")
		})
	}
}
