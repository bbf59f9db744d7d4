package clock

import (
	"testing"
	"time"
)

func TestFakeNow(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewFake(start)

	if !f.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", f.Now(), start)
	}

	f.Advance(5 * time.Minute)
	if want := start.Add(5 * time.Minute); !f.Now().Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", f.Now(), want)
	}
}

func TestFakeAfter(t *testing.T) {
	f := NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	ch := f.After(30 * time.Second)
	select {
	case <-ch:
		t.Fatal("timer fired before Advance")
	default:
	}

	f.Advance(time.Minute)
	select {
	case fired := <-ch:
		if want := f.Now().Add(-30 * time.Second); !fired.Equal(want) {
			t.Errorf("timer fired at %v, want %v", fired, want)
		}
	default:
		t.Fatal("timer did not fire after Advance past deadline")
	}
}

func TestFakeTickerPeriodic(t *testing.T) {
	f := NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	ticker := f.NewTicker(time.Second)
	defer ticker.Stop()

	fired := 0
	for i := 0; i < 3; i++ {
		f.Advance(time.Second)
		select {
		case <-ticker.C():
			fired++
		default:
		}
	}
	if fired != 3 {
		t.Errorf("ticker fired %d times, want 3", fired)
	}
}

func TestFakeTickerStops(t *testing.T) {
	f := NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	ticker := f.NewTicker(time.Second)
	ticker.Stop()

	f.Advance(10 * time.Second)
	select {
	case <-ticker.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestRealClock(t *testing.T) {
	c := New()

	before := time.Now()
	now := c.Now()
	if now.Before(before) {
		t.Errorf("Now() = %v is before %v", now, before)
	}

	select {
	case <-c.After(time.Millisecond):
	case <-time.After(time.Second):
		t.Fatal("After(1ms) did not fire within a second")
	}
}
