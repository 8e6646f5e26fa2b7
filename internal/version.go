package internal

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

var (
	Branch     = "main"
	Version    = "0.1.0"
	Prerelease = ""
	Metadata   = "dev"
	Commit     = ""
	Date       = ""
)

// FullVersion returns the full semver version string. Development builds
// report the next patch version so that comparisons sort after the last release.
func FullVersion() string {
	v, err := semver.NewVersion(Version)
	if err != nil {
		panic(fmt.Sprintf("invalid version %v: %v", Version, err))
	}

	if Metadata == "dev" {
		*v = v.IncPatch()
	}

	*v, _ = v.SetPrerelease(Prerelease)
	*v, _ = v.SetMetadata(Metadata)

	return v.String()
}
