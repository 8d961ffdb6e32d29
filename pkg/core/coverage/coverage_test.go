package coverage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset_analyst/pkg/core/feature"
	"asset_analyst/pkg/core/num"
)

func TestComputeWithFallback_Windows(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name      string
		series    feature.Series
		wantValid bool
		wantUsed  int
		wantConf  float64
		wantValue float64
	}{
		{"full window", feature.Series{1, 2, 3, 4, 5, 6}, true, 5, 1, 4},
		{"minimum window", feature.Series{2, nan, 4, 6}, true, 3, 0.6, 4},
		{"below minimum", feature.Series{1, 2}, false, 2, 0, 0},
		{"empty", nil, false, 0, 0, 0},
		{"all gaps", feature.Series{nan, nan, nan}, false, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComputeWithFallback(tt.series, PreferredYears, MinimumYears, nil)
			assert.Equal(t, tt.wantValid, m.Value.Valid)
			assert.Equal(t, tt.wantUsed, m.YearsUsed)
			assert.Equal(t, PreferredYears, m.YearsRequired)
			assert.InDelta(t, tt.wantConf, m.Conf, 1e-12)
			if tt.wantValid {
				assert.InDelta(t, tt.wantValue, m.Value.V, 1e-12)
			}
		})
	}
}

func TestComputeWithFallback_ConfidenceMonotone(t *testing.T) {
	var s feature.Series
	prev := -1.0
	for i := 0; i < 8; i++ {
		s = append(s, float64(i+1))
		m := ComputeWithFallback(s, PreferredYears, MinimumYears, nil)
		assert.GreaterOrEqual(t, m.Conf, prev, "adding a year never lowers confidence")
		assert.LessOrEqual(t, m.Conf, 1.0)
		prev = m.Conf
	}
}

func TestComputeWithFallback_Reducers(t *testing.T) {
	s := feature.Series{2, 4, 4, 4, 5, 5, 7, 9}
	sd := ComputeWithFallback(s, 8, 3, StdDev)
	require.True(t, sd.Value.Valid)
	assert.InDelta(t, 2.138089935299395, sd.Value.V, 1e-12, "sample std uses n-1")

	last := ComputeWithFallback(s, 5, 3, Last)
	assert.Equal(t, 9.0, last.Value.V)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.0, Ratio(0, 5))
	assert.Equal(t, 0.0, Ratio(3, 0))
	assert.Equal(t, 0.6, Ratio(3, 5))
	assert.Equal(t, 1.0, Ratio(7, 5))
}

func TestAggregateMetricResults(t *testing.T) {
	results := []Estimate{
		MetricResult{Value: num.Some(60), Conf: 1},
		Point{Value: num.Some(80), Conf: 0.5},
		MetricResult{},
		nil,
	}
	agg := AggregateMetricResults(results, 2)
	require.True(t, agg.Value.Valid)
	assert.Equal(t, 70.0, agg.Value.V)
	assert.Equal(t, 0.75, agg.Conf)
	assert.Equal(t, 2, agg.Used)
	assert.Equal(t, 4, agg.Total)

	floor := AggregateMetricResults(results[:1], 2)
	assert.False(t, floor.Value.Valid, "one value is below the floor")
	assert.Equal(t, 0.0, floor.Conf)

	empty := AggregateMetricResults(nil, 0)
	assert.False(t, empty.Value.Valid)
	assert.Equal(t, 0.0, empty.Conf)
}

func TestBlend(t *testing.T) {
	agg := Blend(num.Some(100), num.None(), num.Some(50))
	assert.Equal(t, 75.0, agg.Value.V)
	assert.InDelta(t, 2.0/3.0, agg.Conf, 1e-12)

	one := Blend(num.None(), num.Some(10), num.None())
	assert.Equal(t, 10.0, one.Value.V, "a single model is enough")

	none := Blend(num.None(), num.None())
	assert.False(t, none.Value.Valid)
	assert.Equal(t, 0.0, none.Conf)
}
