// Package geo implements the proximity key used for responder lookups:
// a base-32 geohash whose shared prefixes shrink to ever smaller cells,
// so a sorted index range scan over [lo, hi) returns every record inside
// a prefix cell.
package geo

import (
	"fmt"
	"strings"
)

const alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

const (
	MinPrecision = 1
	MaxPrecision = 12
)

// Encode interleaves latitude and longitude bits (longitude first) and maps
// every 5 bits onto the base-32 alphabet. Same-prefix keys always nest: a
// shorter prefix covers a superset of any longer key it prefixes.
func Encode(lat, lng float64, precision int) (string, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return "", fmt.Errorf("geo.Encode: coordinates out of range (%f, %f)", lat, lng)
	}
	if precision < MinPrecision || precision > MaxPrecision {
		return "", fmt.Errorf("geo.Encode: precision %d out of range [%d, %d]", precision, MinPrecision, MaxPrecision)
	}

	latLo, latHi := -90.0, 90.0
	lngLo, lngHi := -180.0, 180.0

	var b strings.Builder
	b.Grow(precision)

	even := true // even bit positions encode longitude
	bit := 0
	idx := 0

	for b.Len() < precision {
		if even {
			mid := (lngLo + lngHi) / 2
			if lng >= mid {
				idx = idx<<1 | 1
				lngLo = mid
			} else {
				idx = idx << 1
				lngHi = mid
			}
		} else {
			mid := (latLo + latHi) / 2
			if lat >= mid {
				idx = idx<<1 | 1
				latLo = mid
			} else {
				idx = idx << 1
				latHi = mid
			}
		}
		even = !even

		bit++
		if bit == 5 {
			b.WriteByte(alphabet[idx])
			bit = 0
			idx = 0
		}
	}

	return b.String(), nil
}

// PrefixRange returns the half-open interval [lo, hi) that contains exactly
// the geohashes sharing the first prefixLen characters of key. The upper
// bound is the prefix's successor in the alphabet, carrying past trailing
// 'z' characters.
func PrefixRange(key string, prefixLen int) (lo, hi string, err error) {
	if prefixLen < 1 || prefixLen > len(key) {
		return "", "", fmt.Errorf("geo.PrefixRange: prefix length %d out of range for key %q", prefixLen, key)
	}
	prefix := key[:prefixLen]

	buf := []byte(prefix)
	for i := len(buf) - 1; i >= 0; i-- {
		pos := strings.IndexByte(alphabet, buf[i])
		if pos < 0 {
			return "", "", fmt.Errorf("geo.PrefixRange: key %q is not base-32", key)
		}
		if pos < len(alphabet)-1 {
			buf[i] = alphabet[pos+1]
			return prefix, string(buf[:i+1]), nil
		}
	}
	// All-'z' prefix: no base-32 successor exists, bound with a byte above
	// the whole alphabet.
	return prefix, prefix + "\x7f", nil
}
