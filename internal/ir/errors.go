package ir

import (
	"github.com/cockroachdb/errors"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

var (
	// ErrContractViolation marks input that breaks the invariants of the
	// snapshot. A generation pass that sees one must abort.
	ErrContractViolation = errors.New("snapshot contract violation")

	// ErrUnsupportedVersion marks a snapshot whose version is outside
	// SupportedVersions.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")

	// ErrDecode marks a snapshot that could not be decoded.
	ErrDecode = errors.New("snapshot decode failed")
)

// AsError converts a validation result into a single error marked with
// ErrContractViolation. It returns nil for an empty list.
func AsError(errs field.ErrorList) error {
	if len(errs) == 0 {
		return nil
	}

	return errors.Mark(errs.ToAggregate(), ErrContractViolation)
}
