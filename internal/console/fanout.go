package console

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// fanOut runs fetch for every key with at most c.fanout requests in flight.
// Results keep the order of keys. A failed key is logged and left out; only
// cancellation of ctx fails the whole call.
func fanOut[K any, V any](ctx context.Context, c *Console, kind string, keys []K, fetch func(context.Context, K) (V, error)) ([]V, error) {
	results := make([]V, len(keys))
	ok := make([]bool, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fanout)
	for i, key := range keys {
		g.Go(func() error {
			v, err := fetch(gctx, key)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.logger.Warn("Detail request failed, item omitted",
					zap.String("kind", kind),
					zap.Any("key", key),
					zap.Error(err))
				c.metrics.FanoutFailure(kind)
				return nil
			}
			results[i], ok[i] = v, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	joined := make([]V, 0, len(keys))
	for i := range results {
		if ok[i] {
			joined = append(joined, results[i])
		}
	}
	return joined, nil
}
