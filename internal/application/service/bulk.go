package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"
)

// Failure records one item whose operation returned an error.
type Failure[I any] struct {
	Index int
	Item  I
	Err   error
}

// MarshalJSON renders the error as its message.
func (f Failure[I]) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		Index int    `json:"index"`
		Item  I      `json:"item"`
		Error string `json:"error"`
	}{f.Index, f.Item, msg})
}

// Totals summarises a batch. Total always equals Success + Failure.
type Totals struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// BatchResult is the outcome of a bulk operation. Entries appear in
// completion order, not input order.
type BatchResult[I, O any] struct {
	Successful []O          `json:"successful"`
	Failed     []Failure[I] `json:"failed"`
	Totals     Totals       `json:"totals"`
}

// RunBatch applies op to every item with at most concurrency calls in
// flight. A failing item never stops its siblings and nothing is retried.
func RunBatch[I, O any](ctx context.Context, items []I, concurrency int, op func(ctx context.Context, item I) (O, error)) *BatchResult[I, O] {
	result := &BatchResult[I, O]{
		Successful: make([]O, 0, len(items)),
		Failed:     make([]Failure[I], 0),
	}

	if concurrency > len(items) {
		concurrency = len(items)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(concurrency)

	for i, item := range items {
		g.Go(func() error {
			out, err := runItem(ctx, item, op)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, Failure[I]{Index: i, Item: item, Err: err})
			} else {
				result.Successful = append(result.Successful, out)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Totals = Totals{
		Total:   len(items),
		Success: len(result.Successful),
		Failure: len(result.Failed),
	}
	return result
}

// runItem converts a panic in op into an item error. Items reached after
// ctx is done fail with the context error without calling op.
func runItem[I, O any](ctx context.Context, item I, op func(context.Context, I) (O, error)) (out O, err error) {
	if err := ctx.Err(); err != nil {
		return out, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return op(ctx, item)
}
