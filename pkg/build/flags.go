// SPDX-License-Identifier: MIT
//
// Package build carries build metadata (name, timestamp, commit, version)
// injected through -ldflags at compile time, for version output and log
// headers. During development the flags are absent and Initialize reports
// that; callers decide whether a dev build is acceptable.
package build

import "fmt"

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Package-level variables populated by -ldflags, for example:
//
//	go build -ldflags "-X envtrack/pkg/build.buildName=envtrack ..."
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    "envtrack",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
)

// Initialize validates and copies build information from the ldflags
// variables into the buildFlags struct. Returns an error when any flag is
// missing; GetBuildFlags then still serves the development defaults.
func Initialize() error {
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// String renders a single-line version banner.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s %s (%s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}
