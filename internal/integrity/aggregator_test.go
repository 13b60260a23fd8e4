package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name    string
		signals Signals
		overall float64
		action  Action
	}{
		{
			name:    "all zeros take no action",
			signals: Signals{},
			overall: 0,
			action:  ActionNone,
		},
		{
			name:    "weights are 0.4, 0.4, 0.2",
			signals: Signals{Stylometry: 100, LLMProbability: 50, Behavioral: 10},
			overall: 62,
			action:  ActionNone,
		},
		{
			name:    "exactly at the soft threshold soft flags",
			signals: Signals{Stylometry: 70, LLMProbability: 70, Behavioral: 70},
			overall: 70,
			action:  ActionSoftFlag,
		},
		{
			name:    "just below the soft threshold takes no action",
			signals: Signals{Stylometry: 69, LLMProbability: 70, Behavioral: 70},
			overall: 69.6,
			action:  ActionNone,
		},
		{
			name:    "exactly at the hard threshold hard flags",
			signals: Signals{Stylometry: 85, LLMProbability: 85, Behavioral: 85},
			overall: 85,
			action:  ActionHardFlag,
		},
		{
			name:    "just below the hard threshold soft flags",
			signals: Signals{Stylometry: 84, LLMProbability: 85, Behavioral: 85},
			overall: 84.6,
			action:  ActionSoftFlag,
		},
		{
			name:    "maxed signals hard flag",
			signals: Signals{Stylometry: 100, LLMProbability: 100, Behavioral: 100},
			overall: 100,
			action:  ActionHardFlag,
		},
		{
			name:    "a weak behavioral signal alone cannot flag",
			signals: Signals{Behavioral: 100},
			overall: 20,
			action:  ActionNone,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			overall, action := Analyze(tc.signals)
			assert.InDelta(t, tc.overall, overall, 1e-9)
			assert.Equal(t, tc.action, action)
		})
	}

	t.Run("should be monotone in each signal", func(t *testing.T) {
		base := Signals{Stylometry: 40, LLMProbability: 40, Behavioral: 40}
		baseline, _ := Analyze(base)

		for _, bumped := range []Signals{
			{Stylometry: 50, LLMProbability: 40, Behavioral: 40},
			{Stylometry: 40, LLMProbability: 50, Behavioral: 40},
			{Stylometry: 40, LLMProbability: 40, Behavioral: 50},
		} {
			overall, _ := Analyze(bumped)
			assert.Greater(t, overall, baseline)
		}
	})
}
