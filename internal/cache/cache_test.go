package cache

import (
	"testing"
	"time"
)

func TestFingerprintOrderIndependent(t *testing.T) {
	t.Parallel()

	a := Fingerprint("analyze", map[string]string{
		"keyword": "go", "max_results": "100", "time_window_hours": "24",
	})
	b := Fingerprint("analyze", map[string]string{
		"time_window_hours": "24", "max_results": "100", "keyword": "go",
	})

	if a != b {
		t.Fatalf("same params should fingerprint equal: %s vs %s", a, b)
	}
}

func TestFingerprintDistinguishesParams(t *testing.T) {
	t.Parallel()

	a := Fingerprint("analyze", map[string]string{"keyword": "go"})
	b := Fingerprint("analyze", map[string]string{"keyword": "rust"})
	c := Fingerprint("latest", map[string]string{"keyword": "go"})

	if a == b {
		t.Fatal("different params should fingerprint differently")
	}
	if a == c {
		t.Fatal("different operations should fingerprint differently")
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	t.Parallel()

	c := New(time.Minute, nil)
	fp := Fingerprint("analyze", map[string]string{"keyword": "go"})

	if _, ok := c.Get(fp); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set(fp, "value", 0)

	got, ok := c.Get(fp)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if got.(string) != "value" {
		t.Fatalf("unexpected value: %v", got)
	}
}

func TestGetEvictsExpired(t *testing.T) {
	t.Parallel()

	c := New(time.Minute, nil)

	current := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Set("fp", 1, 10*time.Second)

	current = current.Add(5 * time.Second)
	if _, ok := c.Get("fp"); !ok {
		t.Fatal("expected hit before expiry")
	}

	current = current.Add(10 * time.Second)
	if _, ok := c.Get("fp"); ok {
		t.Fatal("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be evicted on read, len %d", c.Len())
	}
}

func TestSweepExpired(t *testing.T) {
	t.Parallel()

	c := New(time.Minute, nil)

	current := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)

	current = current.Add(10 * time.Second)

	if removed := c.SweepExpired(); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 remaining, got %d", c.Len())
	}
	if _, ok := c.Get("long"); !ok {
		t.Fatal("long-lived entry should survive the sweep")
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	c := New(time.Minute, nil)
	c.Set("fp", 1, 0)
	c.Delete("fp")

	if _, ok := c.Get("fp"); ok {
		t.Fatal("expected miss after delete")
	}
}
