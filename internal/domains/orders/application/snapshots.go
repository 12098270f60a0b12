package application

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/domains/orders/ports"
)

// resolveSnapshots looks up every distinct product code once, at most limit at a time.
// The first failure cancels the remaining lookups.
func resolveSnapshots(ctx context.Context, resolver ports.ProductResolver, requests []domain.LineRequest, limit int) (map[int64]domain.ProductSnapshot, error) {
	codes := make([]int64, 0, len(requests))
	seen := make(map[int64]struct{}, len(requests))
	for _, req := range requests {
		if _, ok := seen[req.ProductCode]; ok {
			continue
		}
		seen[req.ProductCode] = struct{}{}
		codes = append(codes, req.ProductCode)
	}

	var mu sync.Mutex
	snapshots := make(map[int64]domain.ProductSnapshot, len(codes))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, code := range codes {
		g.Go(func() error {
			snap, err := resolver.Resolve(gctx, code)
			if err != nil {
				return err
			}
			snap.Code = code
			mu.Lock()
			snapshots[code] = snap
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}
