package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/operations"
)

func TestExtractionSteps(t *testing.T) {
	steps, err := extractionSteps("")
	require.NoError(t, err)
	assert.Empty(t, steps)

	steps, err = extractionSteps("hvac")
	require.NoError(t, err)
	assert.Equal(t, []string{operations.StepExtractHVAC}, steps)

	steps, err = extractionSteps("cost")
	require.NoError(t, err)
	assert.Equal(t, []string{operations.StepExtractCost}, steps)

	_, err = extractionSteps("lighting")
	assert.Error(t, err)
}
