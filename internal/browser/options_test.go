package browser

import "testing"

func TestOptionsAddsHeadlessFlags(t *testing.T) {
	base := len(Options(false, ""))
	headless := len(Options(true, "custom-agent"))
	if headless != base+1 {
		t.Fatalf("headless options should add disable-gpu: base=%d headless=%d", base, headless)
	}
}

func TestOptionsDoesNotMutateDefaults(t *testing.T) {
	_ = Options(true, "")
	_ = Options(false, "")
	a := Options(true, "")
	b := Options(true, "")
	if len(a) != len(b) {
		t.Fatalf("option slices should be stable: %d vs %d", len(a), len(b))
	}
}
