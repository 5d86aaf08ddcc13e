package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPoolDefaultConcurrency(t *testing.T) {
	for _, n := range []int{0, -1} {
		p := NewPool[string](n)
		if p.concurrency != runtime.NumCPU() {
			t.Errorf("NewPool(%d) concurrency = %d, want %d", n, p.concurrency, runtime.NumCPU())
		}
	}
}

func TestNewPoolExplicitConcurrency(t *testing.T) {
	p := NewPool[string](4)
	if p.concurrency != 4 {
		t.Errorf("concurrency = %d, want 4", p.concurrency)
	}
}

func TestProcessEmpty(t *testing.T) {
	p := NewPool[string](2)
	results := p.Process(nil, func(s string) (string, error) {
		return s, nil
	})
	if results != nil {
		t.Errorf("expected nil results for empty input, got %v", results)
	}
}

func TestProcessPreservesOrder(t *testing.T) {
	p := NewPool[string](4)
	items := []string{
		"cards/2026-01-02-model-card-alpha.md",
		"cards/2026-01-03-model-card-beta.md",
		"checklists/2026-01-04-eu-ai-act.md",
		"guides/2026-01-05-onboarding.md",
	}

	results := p.Process(items, func(s string) (string, error) {
		return "linted:" + s, nil
	})

	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("results[%d] unexpected error: %v", i, r.Err)
		}
		if want := "linted:" + items[i]; r.Value != want {
			t.Errorf("results[%d] = %q, want %q", i, r.Value, want)
		}
		if r.Index != i {
			t.Errorf("results[%d].Index = %d, want %d", i, r.Index, i)
		}
	}
}

func TestProcessCapturesErrors(t *testing.T) {
	p := NewPool[int](2)
	items := []string{"ok", "fail", "ok", "fail"}

	results := p.Process(items, func(s string) (int, error) {
		if s == "fail" {
			return 0, fmt.Errorf("failed on %s", s)
		}
		return 1, nil
	})

	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	for _, i := range []int{0, 2} {
		if results[i].Err != nil || results[i].Value != 1 {
			t.Errorf("results[%d] should succeed, got err=%v val=%d", i, results[i].Err, results[i].Value)
		}
	}
	for _, i := range []int{1, 3} {
		if results[i].Err == nil {
			t.Errorf("results[%d] should carry an error", i)
		}
	}
}

func TestProcessConcurrency(t *testing.T) {
	p := NewPool[int](4)

	var maxConcurrent int64
	var current int64
	items := make([]string, 20)
	for i := range items {
		items[i] = fmt.Sprintf("doc-%d.md", i)
	}

	results := p.Process(items, func(s string) (int, error) {
		c := atomic.AddInt64(&current, 1)
		for {
			old := atomic.LoadInt64(&maxConcurrent)
			if c <= old || atomic.CompareAndSwapInt64(&maxConcurrent, old, c) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		return 1, nil
	})

	if len(results) != 20 {
		t.Fatalf("got %d results, want 20", len(results))
	}
	if peak := atomic.LoadInt64(&maxConcurrent); peak < 2 {
		t.Errorf("expected concurrent execution, peak was %d", peak)
	}
}

func TestProcessMoreWorkersThanItems(t *testing.T) {
	p := NewPool[string](100)
	items := []string{"a", "b"}

	results := p.Process(items, func(s string) (string, error) {
		return s + "!", nil
	})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Value != "a!" || results[1].Value != "b!" {
		t.Errorf("unexpected values: %v, %v", results[0].Value, results[1].Value)
	}
}

func TestProcessContextCancellation(t *testing.T) {
	p := NewPool[string](1)
	ctx, cancel := context.WithCancel(context.Background())

	items := []string{"first", "second", "third", "fourth"}
	var processed atomic.Int64

	results := p.ProcessContext(ctx, items, func(_ context.Context, s string) (string, error) {
		n := processed.Add(1)
		if n == 1 {
			cancel()
		}
		return s, nil
	})

	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}
	if results[0].Err != nil {
		t.Errorf("first item should complete, got error %v", results[0].Err)
	}

	// With a single worker the remaining items must observe the cancelled
	// context before being dispatched.
	var cancelled int
	for _, r := range results[1:] {
		if errors.Is(r.Err, context.Canceled) {
			cancelled++
		}
	}
	if cancelled != len(items)-1 {
		t.Errorf("got %d cancelled results, want %d", cancelled, len(items)-1)
	}
}

func TestProcessContextCompletesWithoutCancel(t *testing.T) {
	p := NewPool[int](4)
	items := []string{"a", "b", "c"}

	results := p.ProcessContext(context.Background(), items, func(_ context.Context, s string) (int, error) {
		return len(s), nil
	})

	for i, r := range results {
		if r.Err != nil {
			t.Errorf("results[%d] unexpected error: %v", i, r.Err)
		}
		if r.Value != 1 {
			t.Errorf("results[%d] = %d, want 1", i, r.Value)
		}
	}
}

func BenchmarkPoolProcess(b *testing.B) {
	items := make([]string, 100)
	for i := range items {
		items[i] = fmt.Sprintf("doc-%d.md", i)
	}
	b.ResetTimer()
	for range b.N {
		p := NewPool[string](4)
		_ = p.Process(items, func(s string) (string, error) {
			return s + "-done", nil
		})
	}
}
