package monitoring

import (
	"errors"
	"testing"
	"time"
)

type countingMonitor struct {
	captured int
	flushed  time.Duration
}

func (c *countingMonitor) CaptureException(error, map[string]string) { c.captured++ }
func (c *countingMonitor) Recover()                                  {}
func (c *countingMonitor) Flush(d time.Duration)                     { c.flushed = d }

func TestInitAndCapture(t *testing.T) {
	m := &countingMonitor{}
	Init(m)
	defer Init(NopMonitor{})

	Init(nil)
	if Current() != Monitor(m) {
		t.Fatalf("nil monitor replaced the installed one")
	}
	CaptureException(errors.New("boom"), map[string]string{"module": "test"})
	CaptureException(nil, nil)
	Flush(time.Second)
	if m.captured != 1 {
		t.Fatalf("expected 1 capture, got %d", m.captured)
	}
	if m.flushed != time.Second {
		t.Fatalf("flush timeout not forwarded: %v", m.flushed)
	}
}
