// Package version reports the build version of the studyflow binaries.
package version

import "github.com/maloquacious/semver"

var version = semver.Version{Minor: 1, PreRelease: "alpha", Build: semver.Commit()}

// String returns the semantic version including build metadata.
func String() string {
	return version.String()
}
