package camera

import (
	"testing"
	"time"
)

func TestManualClockFiresInOrder(t *testing.T) {
	c := NewManualClock(epoch)

	var order []string
	c.AfterFunc(300*time.Millisecond, func() { order = append(order, "late") })
	c.AfterFunc(100*time.Millisecond, func() { order = append(order, "early") })
	c.AfterFunc(100*time.Millisecond, func() { order = append(order, "early-2") })

	c.Advance(50 * time.Millisecond)
	if len(order) != 0 {
		t.Fatalf("fired too soon: %v", order)
	}

	c.Advance(time.Second)
	want := []string{"early", "early-2", "late"}
	if len(order) != len(want) {
		t.Fatalf("fired %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
	if !c.Now().Equal(epoch.Add(1050 * time.Millisecond)) {
		t.Errorf("Now = %v", c.Now())
	}
}

func TestManualClockStop(t *testing.T) {
	c := NewManualClock(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("first Stop should report true")
	}
	if timer.Stop() {
		t.Error("second Stop should report false")
	}
	c.Advance(2 * time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
}

func TestManualClockTimerScheduledFromCallback(t *testing.T) {
	c := NewManualClock(epoch)
	second := false
	c.AfterFunc(time.Second, func() {
		c.AfterFunc(time.Second, func() { second = true })
	})

	c.Advance(time.Second)
	if second {
		t.Fatal("nested timer fired in the same Advance")
	}
	c.Advance(time.Second)
	if !second {
		t.Fatal("nested timer did not fire")
	}
}
