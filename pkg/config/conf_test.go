package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	testDir := t.TempDir()

	c1, err := ReadOrCreate(testDir)
	require.NoError(t, err)
	require.NotNil(t, c1)
	assert.Equal(t, "type", c1.Aggregation)
	assert.Equal(t, "info", c1.LogLevel)

	c1.Aggregation = "sum"
	c1.WeightsPath = "weights.json"
	c1.LogLevel = "debug"

	err = Save(testDir, c1)
	require.NoError(t, err)

	c2, err := ReadOrCreate(testDir)
	require.NoError(t, err)
	require.NotNil(t, c2)
	assert.Equal(t, c1.Aggregation, c2.Aggregation)
	assert.Equal(t, c1.WeightsPath, c2.WeightsPath)
	assert.Equal(t, c1.LogLevel, c2.LogLevel)
}

func TestConfigErrors(t *testing.T) {
	_, err := ReadOrCreate("")
	assert.Error(t, err)

	err = Save("", &Config{})
	assert.Error(t, err)

	err = Save(t.TempDir(), nil)
	assert.Error(t, err)
}
