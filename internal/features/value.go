// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package features

import (
	"fmt"
	"strconv"
	"strings"
)

var numberWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
	"nineteen": 19, "twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
	"hundred": 100, "thousand": 1000, "million": 1000000,
	"dozen": 12, "half": 0.5,
}

// ParseValue converts the surface string of a quantity to a number. It
// accepts digits with thousands separators and decimals, a leading
// currency sign, and number words such as "three" or "twenty-five".
func ParseValue(s string) (float64, error) {
	v := strings.TrimSpace(strings.ToLower(s))
	v = strings.TrimLeft(v, "$€£")
	v = strings.ReplaceAll(v, ",", "")
	if v == "" {
		return 0, fmt.Errorf("empty quantity value")
	}

	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f, nil
	}

	if n, ok := numberWords[v]; ok {
		return n, nil
	}
	if tens, units, ok := strings.Cut(v, "-"); ok {
		t, tok := numberWords[tens]
		u, uok := numberWords[units]
		if tok && uok && t >= 20 && u < 10 {
			return t + u, nil
		}
	}
	return 0, fmt.Errorf("not a number: %q", s)
}
