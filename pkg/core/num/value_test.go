package num

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSome_NonFiniteIsAbsent(t *testing.T) {
	assert.False(t, Some(math.NaN()).Valid)
	assert.False(t, Some(math.Inf(1)).Valid)
	assert.False(t, Some(math.Inf(-1)).Valid)
	assert.True(t, Some(0).Valid)
}

func TestValue_Accessors(t *testing.T) {
	assert.Equal(t, 7.0, None().Or(7))
	assert.Equal(t, 3.0, Some(3).Or(7))
	assert.True(t, math.IsNaN(None().Float()))
	assert.True(t, Some(0.1).Positive())
	assert.False(t, Some(0).Positive())
	assert.False(t, None().Positive())
}

func TestRound(t *testing.T) {
	assert.Equal(t, 84.1, Round(84.0999, 2))
	assert.Equal(t, 2.35, Round(2.345, 2))
	assert.Equal(t, -2.35, Round(-2.345, 2))
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
	assert.False(t, None().Round(1).Valid)
	assert.Equal(t, 58.9, Some(58.9077).Round(1).V)
}

func TestDiv_GuardsZero(t *testing.T) {
	assert.False(t, Div(Some(1), Some(0)).Valid)
	assert.False(t, Div(Some(1), Some(1e-9)).Valid)
	assert.False(t, Div(None(), Some(2)).Valid)
	assert.Equal(t, 0.5, Div(Some(1), Some(2)).V)
}

func TestMeanAndCount(t *testing.T) {
	assert.Equal(t, 2.0, Mean(Some(1), None(), Some(3)).V)
	assert.False(t, Mean(None(), None()).Valid)
	assert.Equal(t, 2, CountValid(Some(1), None(), Some(0)))
	assert.False(t, Sub(Some(1), None()).Valid)
	assert.Equal(t, 0.5, Clip(0.7, 0, 0.5))
}

func TestValue_JSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}{Some(1.5), None()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":null}`, string(out))

	var v struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}
	require.NoError(t, json.Unmarshal(out, &v))
	assert.Equal(t, Some(1.5), v.A)
	assert.False(t, v.B.Valid)
}
