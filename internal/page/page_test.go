package page

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextCycle(t *testing.T) {
	cycle := []Kind{Feed, WeatherHourly, WeatherDaily, Stock, Example, Feed}
	for i := 0; i < len(cycle)-1; i++ {
		assert.Equal(t, cycle[i+1], Next(cycle[i]), "after %s", cycle[i])
	}
}

func TestConfigIsFixedPoint(t *testing.T) {
	assert.Equal(t, Config, Next(Config))
	assert.Equal(t, Config, Advance(Config, 3))

	for k := range names {
		if k == Config {
			continue
		}
		assert.NotEqual(t, Config, Next(k), "%s must not lead into config", k)
	}
}

func TestAdvanceIsDeterministic(t *testing.T) {
	for n := 0; n < 12; n++ {
		a := Advance(Stock, n)
		b := Advance(Stock, n)
		assert.Equal(t, a, b)
	}
	// the cycle has five normal pages
	assert.Equal(t, Stock, Advance(Stock, 5))
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name      string
		persisted Kind
		found     bool
		setup     bool
		want      Kind
	}{
		{"first boot", Feed, false, false, Default},
		{"resume stock", Stock, true, false, Stock},
		{"persisted config without setup", Config, true, false, Default},
		{"setup overrides persisted", Stock, true, true, Config},
		{"setup on first boot", Feed, false, true, Config},
		{"garbage value", Kind(42), true, false, Default},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Restore(tt.persisted, tt.found, tt.setup))
		})
	}
}

func TestTextRoundTrip(t *testing.T) {
	for k := range names {
		b, err := json.Marshal(k)
		require.NoError(t, err)
		var got Kind
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, k, got)
	}

	var bad Kind
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &bad))
	_, err := Kind(99).MarshalText()
	assert.Error(t, err)
}
