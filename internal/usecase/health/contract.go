package health

import "context"

// CachePinger checks model cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
