package reader

import "testing"

func TestLocationIndex_PercentFor(t *testing.T) {
	ix := NewLocationIndex(sampleEntries(), nil)

	tests := []struct {
		locator string
		want    float64
	}{
		{"loc-00", 0},
		{"loc-05", 0.5},
		{"loc-10", 1},
		// Between samples: the next sampled location answers.
		{"loc-03x", 0.4},
		// Past the last sample clamps to the end.
		{"loc-zz", 1},
	}
	for _, tt := range tests {
		got, ok := ix.PercentFor(tt.locator)
		if !ok {
			t.Errorf("PercentFor(%q) not ok", tt.locator)
			continue
		}
		if got != tt.want {
			t.Errorf("PercentFor(%q) = %v, want %v", tt.locator, got, tt.want)
		}
	}
}

func TestLocationIndex_LocatorFor(t *testing.T) {
	ix := NewLocationIndex(sampleEntries(), nil)

	tests := []struct {
		percent float64
		want    string
	}{
		{0, "loc-00"},
		{0.5, "loc-05"},
		{1, "loc-10"},
		{0.42, "loc-05"},
		// Past the end clamps to the last sample.
		{1.5, "loc-10"},
	}
	for _, tt := range tests {
		got, ok := ix.LocatorFor(tt.percent)
		if !ok {
			t.Errorf("LocatorFor(%v) not ok", tt.percent)
			continue
		}
		if got != tt.want {
			t.Errorf("LocatorFor(%v) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestLocationIndex_SortsEntries(t *testing.T) {
	ix := NewLocationIndex([]IndexEntry{
		{Locator: "loc-09", Percent: 0.9},
		{Locator: "loc-01", Percent: 0.1},
		{Locator: "loc-05", Percent: 0.5},
	}, nil)

	if got, _ := ix.LocatorFor(0); got != "loc-01" {
		t.Errorf("LocatorFor(0) = %q, want loc-01", got)
	}
	if got, _ := ix.LocatorFor(0.3); got != "loc-05" {
		t.Errorf("LocatorFor(0.3) = %q, want loc-05", got)
	}
}

func TestLocationIndex_StaleRefusesConversion(t *testing.T) {
	ix := NewLocationIndex(sampleEntries(), nil)
	ix.MarkStale()

	if _, ok := ix.PercentFor("loc-05"); ok {
		t.Error("PercentFor answered while stale")
	}
	if _, ok := ix.LocatorFor(0.5); ok {
		t.Error("LocatorFor answered while stale")
	}
	if !ix.Stale() {
		t.Error("Stale = false after MarkStale")
	}
}

func TestLocationIndex_Empty(t *testing.T) {
	ix := NewLocationIndex(nil, nil)

	if _, ok := ix.PercentFor("loc-01"); ok {
		t.Error("PercentFor answered on empty index")
	}
	if _, ok := ix.LocatorFor(0.5); ok {
		t.Error("LocatorFor answered on empty index")
	}
	if ix.Len() != 0 {
		t.Errorf("Len = %d, want 0", ix.Len())
	}
}
