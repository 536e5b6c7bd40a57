package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPresent(t *testing.T) {
	absent := []any{nil, "", "undefined", "null", " null ", 0, 0.0, json.Number("0"), false}
	for _, v := range absent {
		assert.False(t, IsPresent(v), "%#v", v)
	}

	present := []any{"x", "0", 1, -1.5, json.Number("12"), true, map[string]any{}, []any{}}
	for _, v := range present {
		assert.True(t, IsPresent(v), "%#v", v)
	}
}

func TestStringifyAndToInt(t *testing.T) {
	assert.Equal(t, "123", stringify(float64(123)))
	assert.Equal(t, "1.5", stringify(1.5))
	assert.Equal(t, "42", stringify(json.Number("42")))
	assert.Equal(t, "", stringify(map[string]any{}))

	n, ok := toInt("12")
	assert.True(t, ok)
	assert.Equal(t, 12, n)
	n, ok = toInt("7.9")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
	_, ok = toInt("abc")
	assert.False(t, ok)
	_, ok = toInt(nil)
	assert.False(t, ok)
}
