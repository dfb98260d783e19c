package console

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/lambda-display/internal/display"
	"github.com/sweeney/lambda-display/internal/notify"
)

func newTestConsole() (*Console, *bytes.Buffer) {
	var buf bytes.Buffer
	c := New(&buf)
	c.now = func() time.Time { return time.Date(2026, 1, 1, 12, 30, 45, 0, time.UTC) }
	return c, &buf
}

func TestApplyPrintsOneLine(t *testing.T) {
	c, buf := newTestConsole()
	temp := 700.0
	frame := display.FormatDisplay(display.Snapshot{
		Lambda1: 1.25, Lambda2: 0.95, AFR1: 12, AFR2: 14, Temp1: &temp,
	}, display.DefaultPreferences)

	c.Apply(frame)

	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one line, got %q", out)
	}
	for _, want := range []string{"12:30:45", "Bank 1", "1.25 λ", "12.00 AFR", "700 °C", "│", "Bank 2", "0.95 λ", "14.00 AFR"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
	if strings.Index(out, "Bank 1") > strings.Index(out, "Bank 2") {
		t.Error("bank 1 should print before bank 2")
	}
}

func TestApplyFaultPlaceholder(t *testing.T) {
	c, buf := newTestConsole()
	volt := 0.1
	c.Apply(display.FormatDisplay(display.Snapshot{Lambda1: 1, Lambda2: 1, AFR1: 14.7, AFR2: 14.7, Volt1: &volt}, display.DefaultPreferences))

	out := buf.String()
	if !strings.Contains(out, "Error") || !strings.Contains(out, display.Placeholder) {
		t.Errorf("expected fault label and placeholder, got %q", out)
	}
}

func TestSetVisiblePrintsNothing(t *testing.T) {
	c, buf := newTestConsole()
	c.SetVisible(display.Lambda1, false)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestShowInfos(t *testing.T) {
	c, buf := newTestConsole()
	c.ShowInfos(nil)
	if buf.Len() != 0 {
		t.Errorf("empty queue should print nothing, got %q", buf.String())
	}

	c.ShowInfos([]string{"a", "b"})
	if !strings.Contains(buf.String(), "info: a; b") {
		t.Errorf("got %q", buf.String())
	}
}

func TestShowError(t *testing.T) {
	c, buf := newTestConsole()
	c.ShowError(nil)
	if buf.Len() != 0 {
		t.Errorf("dismiss should print nothing, got %q", buf.String())
	}

	c.ShowError(&notify.ErrorNotice{
		ServerError: notify.ServerError{Type: notify.ErrorTypeConfig, Exc: "KeyError: 'sensor'"},
		Hint:        notify.ConfigHint,
	})
	out := buf.String()
	if !strings.Contains(out, "error [config]: KeyError: 'sensor'") {
		t.Errorf("missing error line: %q", out)
	}
	if !strings.Contains(out, notify.ConfigHint) {
		t.Errorf("missing hint: %q", out)
	}
}
