package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLiteral_Types(t *testing.T) {
	got, err := DecodeLiteral(`{"name": "Bob", 'nick': 'B', "age": 5, "ratio": 0.5, "ok": True, "off": False, "nothing": None, "zip": "94110", "tags": ["a", 1], "nested": {"x": 1}}`)
	require.NoError(t, err)

	assert.Equal(t, "Bob", got["name"])
	assert.Equal(t, "B", got["nick"])
	assert.Equal(t, 5, got["age"])
	assert.Equal(t, 0.5, got["ratio"])
	assert.Equal(t, true, got["ok"])
	assert.Equal(t, false, got["off"])
	assert.Nil(t, got["nothing"])
	assert.Contains(t, got, "nothing")
	assert.Equal(t, "94110", got["zip"], "quoted digits stay strings")
	assert.Equal(t, []any{"a", 1}, got["tags"])
	assert.Equal(t, map[string]any{"x": 1}, got["nested"])
}

func TestDecodeLiteral_QuotedKeywordsStayStrings(t *testing.T) {
	got, err := DecodeLiteral(`{"a": "True", "b": "None"}`)
	require.NoError(t, err)
	assert.Equal(t, "True", got["a"])
	assert.Equal(t, "None", got["b"])
}

func TestDecodeLiteral_Empty(t *testing.T) {
	got, err := DecodeLiteral(`{}`)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeLiteral_Errors(t *testing.T) {
	_, err := DecodeLiteral(`{"name": "Bob"`)
	assert.ErrorIs(t, err, ErrMalformedLiteral)

	_, err = DecodeLiteral(`["a", "b"]`)
	assert.ErrorIs(t, err, ErrNotMapping)

	_, err = DecodeLiteral(`42`)
	assert.ErrorIs(t, err, ErrNotMapping)

	_, err = DecodeLiteral(``)
	assert.ErrorIs(t, err, ErrNotMapping)
}

func TestDecodeLiteral_RejectsAnchorsAndAliases(t *testing.T) {
	cases := map[string]string{
		"self reference": `{"a": &x [*x]}`,
		"alias":          `{"a": &x 1, "b": *x}`,
		"anchored map":   `{"a": &x {"b": 1}}`,
		"nested aliases": `{"a": &a ["x","x"], "b": &b [*a,*a], "c": &c [*b,*b], "d": [*c,*c]}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeLiteral(text)
			assert.ErrorIs(t, err, ErrMalformedLiteral)
		})
	}
}

func TestDecodeLiteral_RejectsNonLiteralScalars(t *testing.T) {
	for _, text := range []string{
		`{"x": .inf}`,
		`{"x": -.inf}`,
		`{"x": .nan}`,
		`{"x": ~}`,
		`{"x": bob}`,
		`{"x": }`,
		`{"x": !!str 5}`,
		`{x: 1}`,
		`{"x": [1, yes]}`,
	} {
		t.Run(text, func(t *testing.T) {
			_, err := DecodeLiteral(text)
			assert.ErrorIs(t, err, ErrMalformedLiteral)
		})
	}
}

func TestDecodeLiteral_Numbers(t *testing.T) {
	got, err := DecodeLiteral(`{"neg": -3, "exp": 1e3, "whole": 1.0, 7: "seven", "null": null, "lower": true}`)
	require.NoError(t, err)
	assert.Equal(t, -3, got["neg"])
	assert.Equal(t, 1000.0, got["exp"])
	assert.Equal(t, 1.0, got["whole"])
	assert.Equal(t, "seven", got["7"])
	assert.Nil(t, got["null"])
	assert.Equal(t, true, got["lower"])
}
