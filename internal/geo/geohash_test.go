package geo_test

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/divyanshu-1/RoadX/internal/geo"
)

func TestEncode_KnownVectors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		lat, lng  float64
		precision int
		want      string
	}{
		{"jutland", 57.64911, 10.40744, 11, "u4pruydqqvj"},
		{"leon", 42.605, -5.603, 5, "ezs42"},
		{"origin", 0, 0, 9, "s00000000"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := geo.Encode(tc.lat, tc.lng, tc.precision)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Encode(%v, %v, %d) = %q, want %q", tc.lat, tc.lng, tc.precision, got, tc.want)
			}
		})
	}
}

func TestEncode_Errors(t *testing.T) {
	t.Parallel()

	if _, err := geo.Encode(91, 0, 7); err == nil {
		t.Fatal("expected error for latitude out of range")
	}
	if _, err := geo.Encode(0, 181, 7); err == nil {
		t.Fatal("expected error for longitude out of range")
	}
	if _, err := geo.Encode(0, 0, 0); err == nil {
		t.Fatal("expected error for precision 0")
	}
	if _, err := geo.Encode(0, 0, 13); err == nil {
		t.Fatal("expected error for precision 13")
	}
}

// A shorter encoding is always a prefix of a longer one for the same point.
func TestEncode_PrefixContainment(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		lat := rng.Float64()*180 - 90
		lng := rng.Float64()*360 - 180

		full, err := geo.Encode(lat, lng, geo.MaxPrecision)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		for p := geo.MinPrecision; p < geo.MaxPrecision; p++ {
			short, err := geo.Encode(lat, lng, p)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if short != full[:p] {
				t.Fatalf("Encode(%v, %v, %d) = %q is not a prefix of %q", lat, lng, p, short, full)
			}
		}
	}
}

// Nearby points should usually share a long prefix. Deterministic seed,
// offsets far smaller than a precision-7 cell (~150m), generous threshold.
func TestEncode_NearbyPointsSharePrefix(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))

	const (
		pairs     = 200
		precision = 7
		minShared = precision - 1
	)

	shared := 0
	for i := 0; i < pairs; i++ {
		lat := rng.Float64()*160 - 80
		lng := rng.Float64()*360 - 180
		lat2 := lat + (rng.Float64()-0.5)*0.0002 // ~±11m
		lng2 := lng + (rng.Float64()-0.5)*0.0002

		a, err := geo.Encode(lat, lng, precision)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		b, err := geo.Encode(lat2, lng2, precision)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}

		if commonPrefixLen(a, b) >= minShared {
			shared++
		}
	}

	if shared < pairs/2 {
		t.Fatalf("only %d/%d nearby pairs share a %d-char prefix", shared, pairs, minShared)
	}
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func TestPrefixRange_Bounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		key       string
		prefixLen int
		wantLo    string
		wantHi    string
	}{
		{"simple", "te7ud6rvd", 4, "te7u", "te7v"},
		{"digit", "09xyz", 2, "09", "0b"},
		{"carry", "tzz", 3, "tzz", "u"},
		{"all_z", "zz", 2, "zz", "zz\x7f"},
		{"full_key", "ezs42", 5, "ezs42", "ezs43"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			lo, hi, err := geo.PrefixRange(tc.key, tc.prefixLen)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if lo != tc.wantLo || hi != tc.wantHi {
				t.Fatalf("PrefixRange(%q, %d) = (%q, %q), want (%q, %q)", tc.key, tc.prefixLen, lo, hi, tc.wantLo, tc.wantHi)
			}
		})
	}
}

func TestPrefixRange_Errors(t *testing.T) {
	t.Parallel()

	if _, _, err := geo.PrefixRange("te7ud", 0); err == nil {
		t.Fatal("expected error for prefix length 0")
	}
	if _, _, err := geo.PrefixRange("te7ud", 6); err == nil {
		t.Fatal("expected error for prefix length beyond key")
	}
	if _, _, err := geo.PrefixRange("te7a5", 4); err == nil {
		t.Fatal("expected error for non-base-32 key") // 'a' is not in the alphabet
	}
}

// Membership in [lo, hi) must coincide exactly with sharing the prefix.
func TestPrefixRange_MembershipMatchesPrefix(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(11))

	keys := make([]string, 0, 300)
	for i := 0; i < 300; i++ {
		lat := rng.Float64()*180 - 90
		lng := rng.Float64()*360 - 180
		k, err := geo.Encode(lat, lng, 9)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		keys = append(keys, k)
	}

	query := keys[0]
	for prefixLen := 1; prefixLen <= 5; prefixLen++ {
		lo, hi, err := geo.PrefixRange(query, prefixLen)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		for _, k := range keys {
			inRange := k >= lo && k < hi
			hasPrefix := strings.HasPrefix(k, query[:prefixLen])
			if inRange != hasPrefix {
				t.Fatalf("key %q: inRange=%v hasPrefix=%v for range [%q, %q)", k, inRange, hasPrefix, lo, hi)
			}
		}
	}
}

func TestDistance(t *testing.T) {
	t.Parallel()

	// One degree of longitude on the equator.
	if d := geo.Distance(0, 0, 0, 1); math.Abs(d-111.195) > 0.01 {
		t.Fatalf("equator degree: got %v, want ~111.195", d)
	}

	// Mumbai incident scenario pair.
	if d := geo.Distance(19.0760, 72.8777, 19.08, 72.88); math.Abs(d-0.506) > 0.02 {
		t.Fatalf("mumbai pair: got %v, want ~0.506", d)
	}

	if d := geo.Distance(55.75, 37.61, 55.75, 37.61); d != 0 {
		t.Fatalf("same point: got %v, want 0", d)
	}

	// Symmetry.
	a := geo.Distance(19.0760, 72.8777, 57.64911, 10.40744)
	b := geo.Distance(57.64911, 10.40744, 19.0760, 72.8777)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", a, b)
	}
}
