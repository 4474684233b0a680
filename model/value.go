package model

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxLength bounds identifiers, names and URLs.
const MaxLength = 255

// NumberKind is the width a property value was decoded into.
type NumberKind int

const (
	Int16Value NumberKind = iota
	Int32Value
	Int64Value
	Float32Value
	Float64Value
)

func (k NumberKind) String() string {
	switch k {
	case Int16Value:
		return "int16"
	case Int32Value:
		return "int32"
	case Int64Value:
		return "int64"
	case Float32Value:
		return "float32"
	default:
		return "float64"
	}
}

// PropertyValue is a numeric property value decoded with the narrowest
// representation that accepts its text.
type PropertyValue struct {
	kind NumberKind
	i    int64
	f    float64
}

// DecodePropertyValue tries, in order, 16, 32 and 64 bit integers, then
// 32 and 64 bit floats.
func DecodePropertyValue(s string) (PropertyValue, error) {
	for _, bits := range []int{16, 32, 64} {
		if i, err := strconv.ParseInt(s, 0, bits); err == nil {
			kind := Int16Value
			switch bits {
			case 32:
				kind = Int32Value
			case 64:
				kind = Int64Value
			}
			return PropertyValue{kind: kind, i: i}, nil
		}
	}
	if f, err := strconv.ParseFloat(s, 32); err == nil {
		return PropertyValue{kind: Float32Value, f: f}, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return PropertyValue{kind: Float64Value, f: f}, nil
	}
	return PropertyValue{}, Errorf(CodePropertyNotNumber, "property value is not a number: %q", s)
}

func (v PropertyValue) Kind() NumberKind { return v.kind }

func (v PropertyValue) IsInteger() bool { return v.kind <= Int64Value }

func (v PropertyValue) Int() int64 {
	if v.IsInteger() {
		return v.i
	}
	return int64(v.f)
}

func (v PropertyValue) Float() float64 {
	if v.IsInteger() {
		return float64(v.i)
	}
	return v.f
}

// Value returns the number typed by its kind.
func (v PropertyValue) Value() any {
	switch v.kind {
	case Int16Value:
		return int16(v.i)
	case Int32Value:
		return int32(v.i)
	case Int64Value:
		return v.i
	case Float32Value:
		return float32(v.f)
	default:
		return v.f
	}
}

func (v PropertyValue) String() string {
	if v.IsInteger() {
		return strconv.FormatInt(v.i, 10)
	}
	return strconv.FormatFloat(v.f, 'g', -1, 64)
}

// LabelValuePair is a property or a choice: a mandatory label with an
// optional numeric value.
type LabelValuePair struct {
	label string
	value *PropertyValue
}

func NewLabelValuePair(label string, value *PropertyValue) (LabelValuePair, error) {
	if strings.TrimSpace(label) == "" {
		return LabelValuePair{}, Errorf(CodeInvalidProperty, "label is blank")
	}
	return LabelValuePair{label: label, value: value}, nil
}

func (p LabelValuePair) Label() string { return p.label }

// Value returns the decoded value and whether there is one.
func (p LabelValuePair) Value() (PropertyValue, bool) {
	if p.value == nil {
		return PropertyValue{}, false
	}
	return *p.value, true
}

var (
	reItemID     = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	reURNSegment = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// IsValidItemID checks survey and item identifiers.
func IsValidItemID(id string) bool {
	return reItemID.MatchString(id)
}

// IsValidURN checks a campaign identifier: "urn:" followed by at least two
// more colon separated segments of [a-z0-9_], compared case-insensitively.
func IsValidURN(s string) bool {
	if len(s) > MaxLength {
		return false
	}
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "urn:") {
		return false
	}
	segments := strings.Split(lower, ":")
	if len(segments) < 3 {
		return false
	}
	for _, seg := range segments[1:] {
		if !reURNSegment.MatchString(seg) {
			return false
		}
	}
	return true
}

// IsValidURL accepts absolute http(s) URLs up to MaxLength characters.
func IsValidURL(s string) bool {
	if len(s) > MaxLength {
		return false
	}
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ParseBool accepts only the literals "true" and "false".
func ParseBool(s string) (bool, bool) {
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// parseWholeNumber turns a response or condition value into an integer,
// accepting decimal notation as long as there is no fractional part.
func parseWholeNumber(v any) (int64, bool) {
	var d decimal.Decimal
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float32:
		d = decimal.NewFromFloat32(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		d = decimal.NewFromFloat(n)
	case string:
		var err error
		d, err = decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
	case interface{ String() string }:
		var err error
		d, err = decimal.NewFromString(n.String())
		if err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if !d.IsInteger() {
		return 0, false
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || d.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, false
	}
	return d.IntPart(), true
}
