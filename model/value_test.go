package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePropertyValueLadder(t *testing.T) {
	tests := []struct {
		in   string
		kind NumberKind
		want any
	}{
		{"7", Int16Value, int16(7)},
		{"-32768", Int16Value, int16(-32768)},
		{"40000", Int32Value, int32(40000)},
		{"99999999999", Int64Value, int64(99999999999)},
		{"1.5", Float32Value, float32(1.5)},
		{"1e300", Float64Value, 1e300},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := DecodePropertyValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.want, v.Value())
		})
	}
}

func TestDecodePropertyValueNotNumeric(t *testing.T) {
	_, err := DecodePropertyValue("abc")
	require.Error(t, err)
	assert.True(t, HasCode(err, CodePropertyNotNumber))
}

func TestIsValidURN(t *testing.T) {
	valid := []string{"urn:campaign:x", "URN:Campaign:Sleep_2", "urn:a:b:c:d"}
	invalid := []string{"urn:x", "campaign:x:y", "urn:camp-aign:x", "urn::x", "urn:a:b:"}

	for _, s := range valid {
		assert.True(t, IsValidURN(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsValidURN(s), s)
	}

	long := "urn:a:"
	for len(long) <= MaxLength {
		long += "x"
	}
	assert.False(t, IsValidURN(long))
}

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL("https://example.org/ohmage"))
	assert.True(t, IsValidURL("http://localhost:8080"))
	assert.False(t, IsValidURL("example.org"))
	assert.False(t, IsValidURL("ftp://example.org"))
	assert.False(t, IsValidURL("not a url"))
}

func TestParseBool(t *testing.T) {
	v, ok := ParseBool("true")
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = ParseBool("TRUE")
	assert.False(t, ok)
	_, ok = ParseBool("1")
	assert.False(t, ok)
}

func TestParseEnumsAreCaseInsensitive(t *testing.T) {
	state, err := ParseRunningState("running")
	require.NoError(t, err)
	assert.Equal(t, Running, state)

	_, err = ParseDisplayType("chart")
	assert.True(t, HasCode(err, CodeUnknownEnum))
}

func TestErrorMatchesByCode(t *testing.T) {
	err := Wrap(CodeMissingField, assert.AnError, "campaign has no name")

	assert.ErrorIs(t, err, &Error{Code: CodeMissingField})
	assert.NotErrorIs(t, err, &Error{Code: CodeInvalidID})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "campaign has no name")
}
