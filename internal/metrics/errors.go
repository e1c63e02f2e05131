package metrics

import (
	"io/fs"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/routegen/internal/ir"
)

// Error type constants for metrics labels.
const (
	ErrorTypeContractViolation  = "contract_violation"
	ErrorTypeUnsupportedVersion = "unsupported_version"
	ErrorTypeNotFound           = "not_found"
	ErrorTypeDecode             = "decode"
	ErrorTypeUnknown            = "unknown"
)

// ClassifyGenerateError classifies a failed generation pass for metrics labeling.
// Returns an empty string for nil errors.
func ClassifyGenerateError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ir.ErrContractViolation):
		return ErrorTypeContractViolation
	case errors.Is(err, ir.ErrUnsupportedVersion):
		return ErrorTypeUnsupportedVersion
	case errors.Is(err, fs.ErrNotExist):
		return ErrorTypeNotFound
	case errors.Is(err, ir.ErrDecode):
		return ErrorTypeDecode
	default:
		return ErrorTypeUnknown
	}
}
