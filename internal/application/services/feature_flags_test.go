package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFeatureFlags_EnabledByDefault(t *testing.T) {
	flags := NewFeatureFlags()

	assert.True(t, flags.AnalyticsEnabled())
	assert.True(t, flags.ExperimentsEnabled())
}

func TestNewFeatureFlags_ExplicitlyDisabled(t *testing.T) {
	t.Setenv("FEATURE_SEARCH_ANALYTICS", "false")
	t.Setenv("FEATURE_SEARCH_EXPERIMENTS", "false")

	flags := NewFeatureFlags()

	assert.False(t, flags.AnalyticsEnabled())
	assert.False(t, flags.ExperimentsEnabled())
}

func TestNewFeatureFlags_OtherValuesStayEnabled(t *testing.T) {
	t.Setenv("FEATURE_SEARCH_ANALYTICS", "off")

	assert.True(t, NewFeatureFlags().AnalyticsEnabled())
}
