package reference

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const maxProductCode = 1e6

// MakeProductCode canonicalizes a numeric-like product code into the
// 6-digit zero-padded form used everywhere codes are compared.
// "90920", "090920" and "90920.0" all become "090920".
func MakeProductCode(code string) (string, error) {
	s := strings.TrimSpace(code)
	if s == "" {
		return "", fmt.Errorf("empty product code")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("invalid product code %q", code)
	}
	if f < 0 {
		return "", fmt.Errorf("negative product code %q", code)
	}
	if f >= maxProductCode {
		return "", fmt.Errorf("product code %q has more than 6 digits", code)
	}
	if f != math.Trunc(f) {
		return "", fmt.Errorf("product code %q is not a whole number", code)
	}
	return ProductCode(int(f)), nil
}

// ProductCode formats an integer product code as a 6-digit string.
func ProductCode(code int) string {
	return fmt.Sprintf("%06d", code)
}

// MakeProductCodes normalizes a list of codes, failing on the first bad one.
func MakeProductCodes(codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		n, err := MakeProductCode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
