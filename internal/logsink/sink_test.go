// internal/logsink/sink_test.go
package logsink

import (
	"fmt"
	"sync"
	"testing"
)

func TestSink_PushPopFIFO(t *testing.T) {
	s := New()

	s.Push(NewInfo("a"))
	s.Push(NewWarning("b"))
	s.Push(NewError("c"))

	want := []string{"a", "b", "c"}
	for _, w := range want {
		e, ok := s.Pop()
		if !ok {
			t.Fatalf("expected entry %q, sink empty", w)
		}
		if e.Text != w {
			t.Fatalf("pop order: got=%q want=%q", e.Text, w)
		}
	}

	if _, ok := s.Pop(); ok {
		t.Fatalf("expected empty sink")
	}
}

func TestSink_DrainEmpties(t *testing.T) {
	s := New()
	s.Append(NewInfo("1"), NewInfo("2"))

	got := s.Drain()
	if len(got) != 2 || got[0].Text != "1" || got[1].Text != "2" {
		t.Fatalf("unexpected drain result: %+v", got)
	}
	if s.Len() != 0 {
		t.Fatalf("sink not empty after drain: len=%d", s.Len())
	}
	if got := s.Drain(); len(got) != 0 {
		t.Fatalf("second drain should be empty, got %d", len(got))
	}
}

func TestSink_ConcurrentPushKeepsPerGoroutineOrder(t *testing.T) {
	s := New()

	const writers = 8
	const perWriter = 200

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.Push(NewInfo(fmt.Sprintf("%d:%d", w, i)))
			}
		}(w)
	}
	wg.Wait()

	entries := s.Drain()
	if len(entries) != writers*perWriter {
		t.Fatalf("lost entries: got=%d want=%d", len(entries), writers*perWriter)
	}

	next := make([]int, writers)
	for _, e := range entries {
		var w, i int
		if _, err := fmt.Sscanf(e.Text, "%d:%d", &w, &i); err != nil {
			t.Fatalf("bad entry %q: %v", e.Text, err)
		}
		if i != next[w] {
			t.Fatalf("writer %d out of order: got=%d want=%d", w, i, next[w])
		}
		next[w]++
	}
}

func TestSink_NotifyCoalesces(t *testing.T) {
	s := New()
	s.Push(NewInfo("x"))
	s.Push(NewInfo("y"))

	select {
	case <-s.Notify():
	default:
		t.Fatalf("expected a notification")
	}

	select {
	case <-s.Notify():
		t.Fatalf("notifications should coalesce")
	default:
	}
}
