package ir

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-yaml"
)

// SupportedVersions is the semver constraint a snapshot version must satisfy.
const SupportedVersions = ">= 1.0.0, < 3.0.0"

// Load reads and parses a snapshot file.
func Load(path string) (*IR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read snapshot %s", path)
	}

	snapshot, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse snapshot %s", path)
	}

	return snapshot, nil
}

// Parse decodes a YAML or JSON snapshot. Unknown fields are rejected.
func Parse(data []byte) (*IR, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to convert snapshot to JSON"), ErrDecode)
	}

	snapshot := &IR{}

	trimmed := bytes.TrimSpace(jsonData)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return snapshot, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	err = dec.Decode(snapshot)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to decode snapshot"), ErrDecode)
	}

	err = CheckVersion(snapshot.Version)
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// CheckVersion verifies that version satisfies SupportedVersions.
// An empty version is accepted.
func CheckVersion(version string) error {
	if version == "" {
		return nil
	}

	parsed, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(err, "invalid snapshot version %q", version)
	}

	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return errors.Wrap(err, "invalid supported version constraint")
	}

	if !constraint.Check(parsed) {
		return errors.Wrapf(ErrUnsupportedVersion, "version %s (supported: %s)", parsed, SupportedVersions)
	}

	return nil
}

// OrderedGroups returns the groups in the order the upstream builder
// produced them. The slice is never re-sorted here.
func (r *IR) OrderedGroups() []*Group {
	groups := make([]*Group, 0, len(r.Groups))
	for i := range r.Groups {
		groups = append(groups, &r.Groups[i])
	}

	return groups
}
