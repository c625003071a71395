// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package main

import (
	"maps"
	"os"
	"slices"

	"github.com/korrel8r/metricq/internal/pkg/enumflag"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

const (
	profileEnv     = "METRICQ_PROFILE"
	profilePathEnv = "METRICQ_PROFILE_PATH"
)

var (
	profileTypes = map[string]func(*profile.Profile){
		"block":     profile.BlockProfile,
		"cpu":       profile.CPUProfile,
		"goroutine": profile.GoroutineProfile,
		"mem":       profile.MemProfile,
		"alloc":     profile.MemProfileAllocs,
		"heap":      profile.MemProfileHeap,
		"mutex":     profile.MutexProfile,
		"clock":     profile.ClockProfile,
		"trace":     profile.TraceProfile,
	}
	profileTypeFlag = enumflag.New(os.Getenv(profileEnv), slices.Collect(maps.Keys(profileTypes))...)
	profilePathFlag = rootCmd.PersistentFlags().String("profilePath", os.Getenv(profilePathEnv), "Output path for profile")
)

func init() {
	rootCmd.PersistentFlags().Var(profileTypeFlag, "profile", profileTypeFlag.DocString("Enable profiling"))
	var stop interface{ Stop() } = noopStop{}
	rootCmd.PersistentPreRun = func(*cobra.Command, []string) { stop = StartProfile() }
	rootCmd.PersistentPostRun = func(*cobra.Command, []string) { stop.Stop() }
}

type noopStop struct{}

func (noopStop) Stop() {}

// StartProfile starts the profile selected by --profile, if any.
func StartProfile() interface{ Stop() } {
	if opt, ok := profileTypes[profileTypeFlag.String()]; ok {
		if *profilePathFlag == "" {
			*profilePathFlag = "."
		}
		return profile.Start(profile.ProfilePath(*profilePathFlag), opt, profile.Quiet)
	}
	return noopStop{}
}
