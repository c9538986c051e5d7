package snowball

import "github.com/kailas-cloud/snowball/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrConfiguration     = domain.ErrConfiguration
	ErrVectorSpaceModel  = domain.ErrVectorSpaceModel
	ErrPatternExtraction = domain.ErrPatternExtraction
	ErrUnknownContext    = domain.ErrUnknownContext
)

// ConfigurationError names the offending parameter, file and line.
// Use errors.As() to inspect it.
type ConfigurationError = domain.ConfigurationError
