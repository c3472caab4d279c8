// Package gateway talks to the external payment gateway: it signs outbound
// payment requests and reconciles the gateway's signed callbacks against
// local deposit records.
package gateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

const (
	ParamSecureHash     = "vnp_SecureHash"
	ParamSecureHashType = "vnp_SecureHashType"
)

// Canonicalize sorts the keys and joins key=QueryEscape(value) pairs with
// '&'. Signature fields and empty values are left out.
func Canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == ParamSecureHash || k == ParamSecureHashType || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

// Sign returns the hex HMAC-SHA512 of the canonical form of params.
func Sign(secret string, params map[string]string) string {
	return signString(secret, Canonicalize(params))
}

func signString(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature over params and compares it with the
// supplied one, ignoring hex case. A missing signature or empty secret fails.
func Verify(secret string, params map[string]string) bool {
	got := params[ParamSecureHash]
	if got == "" || secret == "" {
		return false
	}
	want := Sign(secret, params)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(got)), []byte(want)) == 1
}

// Flatten keeps the first value of each key.
func Flatten(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
