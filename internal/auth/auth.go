// Package auth builds the Authorization header the Enso API expects.
package auth

import (
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// User is the fixed Basic-auth user name paired with the page token.
const User = "default"

// MetaName is the <meta name=...> that carries the token on Enso pages.
const MetaName = "enso-token"

var ErrNoToken = errors.New("auth: no enso-token meta tag")

// BasicHeader returns the Authorization header value for token.
// An empty token yields an empty header.
func BasicHeader(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(User+":"+token))
}

// TokenFromHTML returns the content of <meta name="enso-token"> in an HTML page.
func TokenFromHTML(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return "", err
			}
			return "", ErrNoToken
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "meta" {
				continue
			}
			name, content, hasContent := "", "", false
			for _, a := range tok.Attr {
				switch strings.ToLower(a.Key) {
				case "name":
					name = a.Val
				case "content":
					content = a.Val
					hasContent = true
				}
			}
			if strings.EqualFold(strings.TrimSpace(name), MetaName) && hasContent {
				return strings.TrimSpace(content), nil
			}
		}
	}
}
