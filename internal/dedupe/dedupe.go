// Package dedupe provides shared singleflight groups used to collapse
// concurrent requests for the same work.
package dedupe

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"
)

// PlacementGroup deduplicates AI placement requests keyed by duel and
// request epoch (see PlacementKey), so at most one model call per turn is
// in flight.
var PlacementGroup singleflight.Group

// PlacementKey returns the singleflight key for a duel's epoch.
func PlacementKey(duel string, epoch uint64) string {
	return duel + ":" + strconv.FormatUint(epoch, 10)
}

// Do runs fn once per key on g and waits for the shared result or for ctx
// to end, whichever comes first.
func Do(ctx context.Context, g *singleflight.Group, key string, fn func() (interface{}, error)) (v interface{}, shared bool, err error) {
	ch := g.DoChan(key, fn)
	select {
	case r := <-ch:
		return r.Val, r.Shared, r.Err
	case <-ctx.Done():
		return nil, false, fmt.Errorf("waiting for %s: %w", key, ctx.Err())
	}
}
