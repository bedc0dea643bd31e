package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   IRValue
		want string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"no html escaping", IRString("<a&b>"), `"<a&b>"`},
		{"control chars", IRString("a\nb\u0001"), `"a\nb\u0001"`},
		{"line separator literal", IRString("x\u2028y"), "\"x\u2028y\""},
		{"quote and backslash", IRString(`"\`), `"\"\\"`},
		{"nfc", IRString("cafe\u0301"), "\"caf\u00e9\""},
		{"int", IRInt(-42), `-42`},
		{"bool", IRBool(true), `true`},
		{"array", IRArray{IRInt(1), IRString("a")}, `[1,"a"]`},
		{"nested object sorted", IRObject{
			"b": IRInt(2),
			"a": IRObject{"z": IRBool(false), "y": IRArray{}},
		}, `{"a":{"y":[],"z":false},"b":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// U+1F600 is the surrogate pair D83D DE00 in UTF-16, which sorts before
	// U+E000 even though its UTF-8 bytes sort after.
	obj := IRObject{"\uE000": IRInt(1), "\U0001F600": IRInt(2)}
	got, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uE000\":1}", string(got))
}

func TestMarshalCanonical_RejectsNil(t *testing.T) {
	_, err := MarshalCanonical(IRArray{nil})
	assert.Error(t, err)
}

func TestIRObject_JSONRoundTrip(t *testing.T) {
	obj := IRObject{"X": IRString("f(a)"), "N": IRInt(3), "L": IRArray{IRBool(true)}}
	data, err := obj.MarshalJSON()
	require.NoError(t, err)

	var back IRObject
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, obj, back)
}

func TestUnmarshalIRValue_RejectsFloatAndNull(t *testing.T) {
	_, err := UnmarshalIRValue([]byte(`{"a":1.5}`))
	assert.Error(t, err)
	_, err = UnmarshalIRValue([]byte(`[null]`))
	assert.Error(t, err)
}
