package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Money is an amount in the smallest unit of the storefront currency
// (paise, 1/100 of a rupee).  All arithmetic is integer-only so totals
// never drift from what is displayed.
type Money int64

// Rupees builds a Money value from whole rupees.
func Rupees(r int64) Money { return Money(r * 100) }

// Add returns m + o.
func (m Money) Add(o Money) Money { return m + o }

// Sub returns m - o without clamping.
func (m Money) Sub(o Money) Money { return m - o }

// Mul multiplies the amount by an integer quantity.
func (m Money) Mul(qty int64) Money { return m * Money(qty) }

// ClampZero returns m, or 0 when m is negative.
func (m Money) ClampZero() Money {
	if m < 0 {
		return 0
	}
	return m
}

// String formats the amount the way the storefront shows prices, using
// Indian digit grouping: ₹1,50,000 or ₹4,800.50.
func (m Money) String() string {
	neg := m < 0
	v := int64(m)
	if neg {
		v = -v
	}
	major := groupIndian(strconv.FormatInt(v/100, 10))
	out := "₹" + major
	if minor := v % 100; minor != 0 {
		out += fmt.Sprintf(".%02d", minor)
	}
	if neg {
		return "-" + out
	}
	return out
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

var priceDigits = regexp.MustCompile(`[\d,]+(\.\d{1,2})?`)

// ParsePrice extracts the first amount from a formatted price label such
// as "₹1,500 / night".  Grouping commas are ignored.  A label without any
// digits is an error.
func ParsePrice(label string) (Money, error) {
	match := priceDigits.FindString(label)
	match = strings.ReplaceAll(match, ",", "")
	if match == "" {
		return 0, fmt.Errorf("no amount in price label %q", label)
	}
	whole, frac, _ := strings.Cut(match, ".")
	r, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", label, err)
	}
	p := int64(0)
	if frac != "" {
		if len(frac) == 1 {
			frac += "0"
		}
		p, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse price %q: %w", label, err)
		}
	}
	return Money(r*100 + p), nil
}
