package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// CheckSchemaCompatibility checks whether a payload written with schema version
// stored can be read by code producing schema version current.
//
// Compatibility Rules:
//   - If either version is "main" (development build), the check is skipped
//   - Major versions must match exactly
//   - Minor versions must match exactly
//   - Patch versions can differ (e.g., 1.2.0 is compatible with 1.2.5)
//
// Examples:
//   - Current 1.2.0, Stored 1.2.0 -> OK
//   - Current 1.2.1, Stored 1.2.0 -> OK
//   - Current 1.3.0, Stored 1.2.0 -> ERROR (minor differs)
//   - Current 2.0.0, Stored 1.2.0 -> ERROR (major differs)
func CheckSchemaCompatibility(current, stored string) error {
	current = strings.TrimPrefix(current, "v")
	stored = strings.TrimPrefix(stored, "v")

	if current == "main" || stored == "main" {
		return nil
	}

	currentSemver, err := semver.NewVersion(current)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid current version '%s'", current)
	}

	storedSemver, err := semver.NewVersion(stored)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid stored version '%s'", stored)
	}

	if currentSemver.Major() != storedSemver.Major() {
		return errors.Newf(errors.ErrCodeCacheSchemaVersion, "major version mismatch: current is %d.x.x but payload is %d.x.x",
			currentSemver.Major(), storedSemver.Major())
	}

	if currentSemver.Minor() != storedSemver.Minor() {
		return errors.Newf(errors.ErrCodeCacheSchemaVersion, "minor version mismatch: current is %d.%d.x but payload is %d.%d.x",
			currentSemver.Major(), currentSemver.Minor(),
			storedSemver.Major(), storedSemver.Minor())
	}

	return nil
}
