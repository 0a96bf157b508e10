package utils

import (
	"crypto/md5"
	"encoding/hex"
)

// HashString returns the hex md5 of parts joined by NUL, so ("ab","c") and
// ("a","bc") hash differently.
func HashString(parts ...string) string {
	h := md5.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
