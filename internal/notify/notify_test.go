package notify

import (
	"reflect"
	"testing"
	"time"

	"github.com/sweeney/lambda-display/internal/clock"
)

type fakeDisplay struct {
	infos  [][]string
	errors []*ErrorNotice
}

func (f *fakeDisplay) ShowInfos(lines []string) { f.infos = append(f.infos, lines) }

func (f *fakeDisplay) ShowError(n *ErrorNotice) { f.errors = append(f.errors, n) }

func (f *fakeDisplay) lastInfos() []string {
	if len(f.infos) == 0 {
		return nil
	}
	return f.infos[len(f.infos)-1]
}

func newQueue() (*InfoQueue, *fakeDisplay, *clock.Fake) {
	clk := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	d := &fakeDisplay{}
	return NewInfoQueue(clk, d), d, clk
}

func TestEnqueueShowsJoinedQueue(t *testing.T) {
	q, d, _ := newQueue()
	q.Enqueue("sensor 0 fault")
	q.Enqueue("sensor 1 fault")

	want := []string{"sensor 0 fault", "sensor 1 fault"}
	if !reflect.DeepEqual(d.lastInfos(), want) {
		t.Errorf("shown: got %v, want %v", d.lastInfos(), want)
	}
	if q.Len() != 2 {
		t.Errorf("Len: got %d, want 2", q.Len())
	}
}

func TestQueueFlushedAfterIdle(t *testing.T) {
	q, d, clk := newQueue()
	q.Enqueue("a")

	clk.Advance(IdleFlush - time.Millisecond)
	if q.Len() != 1 {
		t.Fatal("queue flushed too early")
	}
	clk.Advance(time.Millisecond)
	if q.Len() != 0 {
		t.Fatal("queue should be empty after idle flush")
	}
	if d.lastInfos() != nil {
		t.Errorf("display should be cleared, got %v", d.lastInfos())
	}
}

func TestQueueTimerNotRearmed(t *testing.T) {
	q, _, clk := newQueue()
	q.Enqueue("a")
	clk.Advance(3 * time.Second)
	q.Enqueue("b")
	if clk.Pending() != 1 {
		t.Fatalf("expected a single idle timer, got %d", clk.Pending())
	}

	// Five seconds after the first message, both are gone.
	clk.Advance(2 * time.Second)
	if q.Len() != 0 {
		t.Errorf("expected batch flushed 5s after first message, got %v", q.Messages())
	}
}

func TestQueueNewBatchAfterFlush(t *testing.T) {
	q, _, clk := newQueue()
	q.Enqueue("a")
	clk.Advance(IdleFlush)
	q.Enqueue("b")

	clk.Advance(IdleFlush - time.Second)
	if !reflect.DeepEqual(q.Messages(), []string{"b"}) {
		t.Errorf("got %v, want [b]", q.Messages())
	}
	clk.Advance(time.Second)
	if q.Len() != 0 {
		t.Error("second batch should flush on its own timer")
	}
}

func TestQueueManualFlush(t *testing.T) {
	q, d, clk := newQueue()
	q.Enqueue("a")
	q.Flush()

	if clk.Pending() != 0 {
		t.Errorf("expected timer cancelled, got %d pending", clk.Pending())
	}
	shown := len(d.infos)
	clk.Advance(IdleFlush)
	if len(d.infos) != shown {
		t.Error("cancelled timer must not clear the display again")
	}
}

func TestMessagesIsCopy(t *testing.T) {
	q, _, _ := newQueue()
	q.Enqueue("a")
	m := q.Messages()
	m[0] = "mutated"
	if q.Messages()[0] != "a" {
		t.Error("Messages must return a copy")
	}
}

func TestErrorSlotConfigHint(t *testing.T) {
	d := &fakeDisplay{}
	s := NewErrorSlot(d)

	n := s.Show(ServerError{Type: "config", Exc: "AttributeError: x", Traceback: "tb"})
	if n.Hint != ConfigHint {
		t.Errorf("Hint: got %q", n.Hint)
	}
	if len(d.errors) != 1 || d.errors[0].Exc != "AttributeError: x" {
		t.Fatalf("display not updated: %+v", d.errors)
	}
}

func TestErrorSlotOverwrites(t *testing.T) {
	d := &fakeDisplay{}
	s := NewErrorSlot(d)
	s.Show(ServerError{Type: "config", Exc: "first"})
	s.Show(ServerError{Type: "unknown", Exc: "second", Traceback: "tb2"})

	cur, ok := s.Current()
	if !ok {
		t.Fatal("expected a current error")
	}
	if cur.Exc != "second" || cur.Traceback != "tb2" {
		t.Errorf("current: got %+v", cur)
	}
	if cur.Hint != "" {
		t.Errorf("non-config error should have no hint, got %q", cur.Hint)
	}
}

func TestErrorSlotDismiss(t *testing.T) {
	d := &fakeDisplay{}
	s := NewErrorSlot(d)
	s.Dismiss()
	if len(d.errors) != 0 {
		t.Error("dismissing an empty slot should not touch the display")
	}

	s.Show(ServerError{Exc: "x"})
	s.Dismiss()
	if _, ok := s.Current(); ok {
		t.Error("slot should be empty after Dismiss")
	}
	if d.errors[len(d.errors)-1] != nil {
		t.Error("display should receive nil on dismiss")
	}
}

func TestMultiDisplays(t *testing.T) {
	a, b := &fakeDisplay{}, &fakeDisplay{}
	infos := MultiInfoDisplay{a, b}
	errs := MultiErrorDisplay{a, b}

	infos.ShowInfos([]string{"x"})
	errs.ShowError(&ErrorNotice{ServerError: ServerError{Type: "t"}})

	for i, d := range []*fakeDisplay{a, b} {
		if len(d.infos) != 1 || len(d.errors) != 1 {
			t.Errorf("display %d: got %d infos, %d errors", i, len(d.infos), len(d.errors))
		}
	}
}
