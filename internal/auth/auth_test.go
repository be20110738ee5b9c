package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestBasicHeader(t *testing.T) {
	got := BasicHeader("s3cret")
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("default:s3cret"))
	if got != want {
		t.Fatalf("BasicHeader = %q, want %q", got, want)
	}
	if BasicHeader("  ") != "" {
		t.Fatalf("expected empty header for blank token")
	}
}

func TestTokenFromHTML(t *testing.T) {
	page := `<!doctype html><html><head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width">
<meta name="enso-token" content=" abc123 "/>
</head><body></body></html>`

	tok, err := TokenFromHTML(strings.NewReader(page))
	if err != nil {
		t.Fatalf("TokenFromHTML: %v", err)
	}
	if tok != "abc123" {
		t.Fatalf("expected abc123, got %q", tok)
	}
}

func TestTokenFromHTML_Missing(t *testing.T) {
	_, err := TokenFromHTML(strings.NewReader(`<html><head><meta name="other" content="x"></head></html>`))
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}
