package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/go-cmp/cmp"
)

func TestRunBatch_Totals(t *testing.T) {
	for _, failEvery := range []int{0, 1, 2, 3, 7} {
		t.Run(fmt.Sprintf("fail every %d", failEvery), func(t *testing.T) {
			items := make([]int, 20)
			for i := range items {
				items[i] = i
			}

			res := RunBatch(context.Background(), items, 4, func(_ context.Context, n int) (int, error) {
				if failEvery > 0 && n%failEvery == 0 {
					return 0, fmt.Errorf("item %d failed", n)
				}
				return n * 10, nil
			})

			if res.Totals.Total != len(items) {
				t.Errorf("Total = %d, want %d", res.Totals.Total, len(items))
			}
			if len(res.Successful)+len(res.Failed) != len(items) {
				t.Errorf("successful %d + failed %d != %d", len(res.Successful), len(res.Failed), len(items))
			}
			if res.Totals.Success != len(res.Successful) || res.Totals.Failure != len(res.Failed) {
				t.Errorf("Totals = %+v, inconsistent with slices", res.Totals)
			}
		})
	}
}

func TestRunBatch_FailureIsolation(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	res := RunBatch(context.Background(), items, 2, func(_ context.Context, s string) (string, error) {
		if s == "c" {
			return "", fmt.Errorf("remote rejected %s", s)
		}
		return s + "!", nil
	})

	got := append([]string(nil), res.Successful...)
	sort.Strings(got)
	if diff := cmp.Diff([]string{"a!", "b!", "d!", "e!"}, got); diff != "" {
		t.Errorf("Successful mismatch (-want +got):\n%s", diff)
	}
	if len(res.Failed) != 1 {
		t.Fatalf("len(Failed) = %d, want 1", len(res.Failed))
	}
	f := res.Failed[0]
	if f.Index != 2 || f.Item != "c" || f.Err.Error() != "remote rejected c" {
		t.Errorf("Failed[0] = %+v", f)
	}
}

func TestRunBatch_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := make([]int, 12)

	RunBatch(context.Background(), items, 3, func(_ context.Context, _ int) (struct{}, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})

	if p := peak.Load(); p > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", p)
	}
}

func TestRunBatch_PanicBecomesFailure(t *testing.T) {
	res := RunBatch(context.Background(), []int{1, 2}, 2, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			panic("boom")
		}
		return n, nil
	})
	if res.Totals.Success != 1 || res.Totals.Failure != 1 {
		t.Errorf("Totals = %+v, want 1 success 1 failure", res.Totals)
	}
}

func TestRunBatch_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	items := []string{"a", "b", "c"}
	res := RunBatch(ctx, items, 2, func(_ context.Context, s string) (string, error) {
		calls.Add(1)
		return s, nil
	})

	want := Totals{Total: len(items), Success: 0, Failure: len(items)}
	if res.Totals != want {
		t.Errorf("Totals = %+v, want %+v", res.Totals, want)
	}
	for _, f := range res.Failed {
		if !errors.Is(f.Err, context.Canceled) {
			t.Errorf("Failed[%d].Err = %v, want context.Canceled", f.Index, f.Err)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("op called %d times after cancel, want 0", calls.Load())
	}
}

func TestRunBatch_Empty(t *testing.T) {
	res := RunBatch(context.Background(), []int(nil), 5, func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	if res.Totals.Total != 0 || res.Successful == nil || res.Failed == nil {
		t.Errorf("empty batch = %+v, want zero totals and non-nil slices", res)
	}
}

func TestBatchResult_JSON(t *testing.T) {
	res := &BatchResult[string, int]{
		Successful: []int{1},
		Failed:     []Failure[string]{{Index: 1, Item: "x", Err: fmt.Errorf("nope")}},
		Totals:     Totals{Total: 2, Success: 1, Failure: 1},
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"successful":[1],"failed":[{"index":1,"item":"x","error":"nope"}],"totals":{"total":2,"success":1,"failure":1}}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
