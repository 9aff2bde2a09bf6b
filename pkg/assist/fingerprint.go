package assist

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Fingerprint is a deterministic digest of the policy-equivalence fields of
// a Request. It is the cache key for content-addressed response caching.
type Fingerprint string

// String returns the hex form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// FingerprintOf computes the Fingerprint of a request.
//
// The digest covers prompt, context, category, effective max-tokens, and
// effective temperature. Each field is length-prefixed before hashing so
// that field boundaries cannot be shifted between fields ("ab"+"c" must
// not collide with "a"+"bc").
func FingerprintOf(r *Request) Fingerprint {
	h := sha256.New()

	writeField := func(s string) {
		fmt.Fprintf(h, "%d:", len(s))
		h.Write([]byte(s))
	}

	writeField(r.Prompt)
	writeField(r.Context)
	writeField(string(r.Category))
	writeField(strconv.Itoa(r.EffectiveMaxTokens()))
	writeField(strconv.FormatFloat(r.EffectiveTemperature(), 'g', -1, 64))

	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}
