package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/processcore/compressor/chart"
)

func TestBuildStagesConstructsSingleSpeedChart(t *testing.T) {
	spec := &trainSpec{
		Stages: []stageSpec{
			{
				ChartCurves: []curveSpec{
					{
						SpeedRPM:   9000,
						RateM3H:    []float64{1000, 2000, 3000, 4000},
						HeadJPerKg: []float64{60000, 55000, 48000, 38000},
						Efficiency: []float64{0.70, 0.78, 0.75, 0.68},
					},
				},
				PressureDropAheadOfStageBar: 0.1,
				InletTemperatureKelvin:      303.15,
			},
		},
	}

	stages, err := buildStages(spec)
	require.NoError(t, err)
	require.Len(t, stages, 1)

	_, ok := stages[0].Chart().(*chart.SingleSpeedChart)
	require.True(t, ok, "a single curve should build a SingleSpeedChart")
}

func TestBuildStagesConstructsVariableSpeedChart(t *testing.T) {
	spec := &trainSpec{
		Stages: []stageSpec{
			{
				ChartCurves: []curveSpec{
					{SpeedRPM: 7000, RateM3H: []float64{900, 1800, 2700}, HeadJPerKg: []float64{45000, 40000, 30000}, Efficiency: []float64{0.68, 0.74, 0.65}},
					{SpeedRPM: 9000, RateM3H: []float64{1100, 2200, 3300}, HeadJPerKg: []float64{60000, 55000, 42000}, Efficiency: []float64{0.70, 0.78, 0.68}},
				},
				InletTemperatureKelvin: 303.15,
			},
		},
	}

	stages, err := buildStages(spec)
	require.NoError(t, err)
	require.Len(t, stages, 1)

	_, ok := stages[0].Chart().(*chart.VariableSpeedChart)
	require.True(t, ok, "multiple curves should build a VariableSpeedChart")
}

func TestPressureControlFromNameRoundTrips(t *testing.T) {
	require.Equal(t, "UPSTREAM_CHOKE", pressureControlFromName("UPSTREAM_CHOKE").String())
	require.Equal(t, "NONE", pressureControlFromName("").String())
}
