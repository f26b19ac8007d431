package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/logging"
)

// ItemDispatcher analyzes a single item and never fails.
type ItemDispatcher interface {
	Dispatch(ctx context.Context, item core.Item, criteria string) core.Verdict
}

// FanOut analyzes the items of a batch concurrently.
type FanOut struct {
	dispatcher     ItemDispatcher
	itemTimeout    time.Duration
	maxConcurrency int
	logger         *logging.Logger
}

// FanOutOption configures a FanOut.
type FanOutOption func(*FanOut)

// WithItemTimeout bounds each item's analysis. An item that runs out of time
// gets an error verdict; its siblings are unaffected. Zero disables the bound.
func WithItemTimeout(d time.Duration) FanOutOption {
	return func(f *FanOut) {
		f.itemTimeout = d
	}
}

// WithMaxConcurrency caps the number of items analyzed at once. Zero or less
// starts every item immediately.
func WithMaxConcurrency(n int) FanOutOption {
	return func(f *FanOut) {
		f.maxConcurrency = n
	}
}

// WithFanOutLogger sets the logger.
func WithFanOutLogger(logger *logging.Logger) FanOutOption {
	return func(f *FanOut) {
		f.logger = logger
	}
}

// NewFanOut creates a fan-out over dispatcher.
func NewFanOut(dispatcher ItemDispatcher, opts ...FanOutOption) *FanOut {
	f := &FanOut{
		dispatcher: dispatcher,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RunBatch returns one verdict per item, in input order, each stamped with
// its item name and 1-based position.
func (f *FanOut) RunBatch(ctx context.Context, items []core.Item, criteria string) []core.Verdict {
	results := make([]core.Verdict, len(items))

	// A plain group: one item failing must not cancel the others.
	var g errgroup.Group
	if f.maxConcurrency > 0 {
		g.SetLimit(f.maxConcurrency)
	}

	for i, item := range items {
		g.Go(func() error {
			results[i] = f.runItem(ctx, item, ItemName(item, i), i+1, criteria)
			return nil
		})
	}
	_ = g.Wait()

	for i := range results {
		results[i].ItemName = ItemName(items[i], i)
		results[i].Position = i + 1
	}
	return results
}

func (f *FanOut) runItem(ctx context.Context, item core.Item, name string, position int, criteria string) core.Verdict {
	log := f.logger.WithContext(ctx).WithItem(name, position)
	start := time.Now()

	var v core.Verdict
	if f.itemTimeout <= 0 {
		v = f.dispatcher.Dispatch(ctx, item, criteria)
	} else {
		v = f.dispatchWithTimeout(ctx, item, criteria)
	}

	if v.Failed() {
		log.Warn("item analysis failed", "type", item.Type, "error", v.Error, "duration", time.Since(start))
	} else {
		log.Debug("item analyzed", "type", item.Type, "score", v.EffectiveScore(), "duration", time.Since(start))
	}
	return v
}

func (f *FanOut) dispatchWithTimeout(ctx context.Context, item core.Item, criteria string) core.Verdict {
	itemCtx, cancel := context.WithTimeout(ctx, f.itemTimeout)
	defer cancel()

	done := make(chan core.Verdict, 1)
	go func() {
		done <- f.dispatcher.Dispatch(itemCtx, item, criteria)
	}()

	select {
	case v := <-done:
		return v
	case <-itemCtx.Done():
		err := core.ErrTimeout(fmt.Sprintf("analysis exceeded %s", f.itemTimeout))
		if ctx.Err() != nil {
			err = core.ErrTimeout("analysis cancelled").WithCause(ctx.Err())
		}
		return core.ErrorVerdict(item.Type, DispatcherAgentName, err)
	}
}

// ItemName is the caller supplied name of the item at index i, or a
// positional placeholder.
func ItemName(item core.Item, i int) string {
	if item.Name != "" {
		return item.Name
	}
	return fmt.Sprintf("Item %d", i+1)
}
