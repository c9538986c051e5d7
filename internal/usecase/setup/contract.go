package setup

import (
	"context"

	"github.com/kailas-cloud/snowball/internal/vsm"
)

// ModelCache resolves the vector space model of a corpus, building it on a miss.
type ModelCache interface {
	LoadOrBuild(ctx context.Context, identity string, build func() (*vsm.Model, error)) (*vsm.Model, error)
}
