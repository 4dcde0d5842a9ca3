// Package signature authenticates webhook payloads with HMAC-SHA256 over a
// canonical JSON encoding. Canonicalization guarantees that semantically
// identical payloads produce identical bytes, so a receiver re-serializing
// the payload cannot end up with a different signature.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
)

const prefix = "sha256="

var errNilPayload = errors.New("nil payload")

// Canonicalize serializes payload with object keys sorted at every depth.
// The round trip through an untyped value forces map-based encoding, and
// encoding/json writes map keys in sorted order.
func Canonicalize(payload any) ([]byte, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}

// SignBytes computes the signature over an already-serialized body. The
// dispatcher uses this so the bytes it POSTs are exactly the bytes signed.
func SignBytes(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return prefix + hex.EncodeToString(mac.Sum(nil))
}

// Sign canonicalizes payload and returns "sha256=<hex>".
func Sign(secret string, payload any) (string, error) {
	body, err := Canonicalize(payload)
	if err != nil {
		return "", err
	}
	return SignBytes(secret, body), nil
}

// Verify recomputes the expected signature and compares it against the
// supplied one. It returns false on any malformed input and never panics;
// the comparison runs in constant time over the longer of the two strings
// so a mismatch position is not observable.
func Verify(sig string, payload any, secret string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	expected, err := Sign(secret, payload)
	if err != nil {
		return false
	}
	return constantTimeEquals(sig, expected)
}

func constantTimeEquals(a, b string) bool {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}

	var diff byte
	if len(a) != len(b) {
		diff = 1
	}
	for i := 0; i < longest; i++ {
		var ca, cb byte
		if i < len(a) {
			ca = a[i]
		}
		if i < len(b) {
			cb = b[i]
		}
		diff |= ca ^ cb
	}
	return diff == 0
}
