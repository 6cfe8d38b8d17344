package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// How many subscriptions extend concurrently in one batch run.
// Parallelism is across subscriptions only; within one subscription the
// locker enforces exclusivity.
const batchConcurrency = 4

// ExtendAll extends every schedulable subscription to the horizon.
//
// Per-subscription aborts (unserviceable address, contended lock, bad
// plan configuration) are recorded on that subscription's report and do
// not stop the rest of the batch. The returned error covers only the
// inability to list subscriptions at all.
func (m *Materializer) ExtendAll(ctx context.Context, horizon time.Time) ([]RunReport, error) {
	subs, err := m.Subscriptions.ListSchedulable(ctx)
	if err != nil {
		return nil, fmt.Errorf("extend all: list subscriptions: %w", err)
	}

	var (
		mu      sync.Mutex
		reports = make([]RunReport, 0, len(subs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			report, err := m.ExtendSchedule(gctx, sub.SubscriptionID, horizon)
			if err != nil {
				report.Err = err.Error()
				log.Printf("extend failed: subscription_id=%d err=%v", sub.SubscriptionID, err)
			}

			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
			return nil
		})
	}

	// Workers swallow per-subscription errors, so Wait only reflects
	// context cancellation.
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extend all: %w", err)
	}

	slices.SortFunc(reports, func(a, b RunReport) int {
		return a.SubscriptionID - b.SubscriptionID
	})
	return reports, nil
}
