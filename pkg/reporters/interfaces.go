package reporters

import "context"

// Reporter forwards failed API calls to a downstream sink (webhook, queue, journal).
type Reporter interface {
	ID() string
	Type() string
	Report(ctx context.Context, f Failure) error
}
