package cache

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SchemaVersion is bumped on every layout change of Payload: minor for
// additive fields, major for anything older readers cannot decode.
const SchemaVersion = "2.0.0"

// ErrSchemaMismatch is returned for snapshots this build cannot read.
var ErrSchemaMismatch = errors.New("cache schema mismatch")

var current = semver.MustParse(SchemaVersion)

// Compatible accepts snapshots of the same major version that are not newer
// than SchemaVersion.
func Compatible(schema string) error {
	v, err := semver.NewVersion(schema)
	if err != nil {
		return fmt.Errorf("%w: invalid schema version %q: %v", ErrSchemaMismatch, schema, err)
	}
	if v.Major() != current.Major() || current.LessThan(v) {
		return fmt.Errorf("%w: cache has %s, this build reads %d.x up to %s", ErrSchemaMismatch, v, current.Major(), current)
	}
	return nil
}
