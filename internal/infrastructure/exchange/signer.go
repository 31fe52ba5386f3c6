package exchange

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// Param is one key/value pair of the canonical string. A slice keeps the
// insertion order, which the exchange recomputes server-side: reordering
// fields changes the signature and fails authentication.
type Param struct {
	Key   string
	Value string
}

// CanonicalString joins params as key=urlEncode(value) with '&', in the
// exact order given. Values must already be stringified consistently
// (integers without a trailing ".0").
func CanonicalString(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Sign computes the lowercase hex HMAC-SHA256 of the canonical string.
func Sign(secretKey string, params []Param) string {
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(CanonicalString(params)))
	return hex.EncodeToString(h.Sum(nil))
}
