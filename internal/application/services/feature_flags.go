package services

import (
	"os"
)

type FeatureFlags struct {
	analyticsEnabled   bool
	experimentsEnabled bool
}

func NewFeatureFlags() *FeatureFlags {
	analytics := os.Getenv("FEATURE_SEARCH_ANALYTICS") != "false"
	experiments := os.Getenv("FEATURE_SEARCH_EXPERIMENTS") != "false"

	return &FeatureFlags{
		analyticsEnabled:   analytics,
		experimentsEnabled: experiments,
	}
}

func (f *FeatureFlags) AnalyticsEnabled() bool {
	return f.analyticsEnabled
}

func (f *FeatureFlags) ExperimentsEnabled() bool {
	return f.experimentsEnabled
}
