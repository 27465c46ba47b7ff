// internal/core/domain/analysis/analyzers/factory_test.go
package analyzers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-market-context/internal/core/domain/analysis"
)

func TestBuildPipelineDefaultOrder(t *testing.T) {
	pipeline, err := BuildPipeline(DefaultPipelineConfig())
	require.NoError(t, err)
	require.Len(t, pipeline, 4)

	names := make([]string, len(pipeline))
	for i, a := range pipeline {
		names[i] = a.Name()
	}
	assert.Equal(t, []string{NameSwing, NameTrend, NameRange, NameFibonacci}, names)
}

func TestBuildPipelineCustomOrder(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.Order = []string{NameFibonacci, NameSwing}

	pipeline, err := BuildPipeline(cfg)
	require.NoError(t, err)
	require.Len(t, pipeline, 2)
	assert.Equal(t, NameFibonacci, pipeline[0].Name())
	assert.Equal(t, NameSwing, pipeline[1].Name())
}

func TestBuildPipelineEmptyOrderFallsBack(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.Order = nil

	pipeline, err := BuildPipeline(cfg)
	require.NoError(t, err)
	assert.Len(t, pipeline, 4)
}

func TestBuildPipelineUnknownName(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.Order = []string{NameSwing, "volume_profile"}

	pipeline, err := BuildPipeline(cfg)
	assert.Nil(t, pipeline)
	require.Error(t, err)
	assert.True(t, errors.Is(err, analysis.ErrUnknownAnalyzer))
	assert.Contains(t, err.Error(), "volume_profile")
}
