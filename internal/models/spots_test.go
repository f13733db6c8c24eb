package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLookupSpot(t *testing.T) {
	got, ok := LookupSpot("batu-bolong")
	if !ok {
		t.Fatal("batu-bolong missing from registry")
	}

	want := SpotProfile{
		Name:            "batu-bolong",
		OptimalHeight:   HeightRange{Min: 0.5, Max: 1.5},
		SwellWindow:     SwellWindow{Start: 200, End: 270},
		OrientationDeg:  240,
		TidalRange:      TidalRangeAll,
		WindSensitivity: 0.3,
		Type:            SpotTypeBeach,
		Skill:           SkillBeginner,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}

	if _, ok := LookupSpot("mavericks"); ok {
		t.Error("unregistered spot should not resolve")
	}
}

func TestRegistryInvariants(t *testing.T) {
	spots := AllSpots()
	if len(spots) == 0 {
		t.Fatal("registry is empty")
	}

	for _, p := range spots {
		if p.Name == "" {
			t.Error("spot with empty name")
		}
		if p.OptimalHeight.Min <= 0 || p.OptimalHeight.Max <= p.OptimalHeight.Min {
			t.Errorf("%s: bad optimal height range %+v", p.Name, p.OptimalHeight)
		}
		if p.WindSensitivity < 0 || p.WindSensitivity > 1 {
			t.Errorf("%s: wind sensitivity %v outside [0,1]", p.Name, p.WindSensitivity)
		}
		if p.TideWindow != nil && p.TideWindow.Max <= p.TideWindow.Min {
			t.Errorf("%s: bad tide window %+v", p.Name, p.TideWindow)
		}
	}
}

func TestRegistryHasWrappedWindow(t *testing.T) {
	p, ok := LookupSpot("sanur")
	if !ok {
		t.Fatal("sanur missing from registry")
	}
	if p.SwellWindow.Start <= p.SwellWindow.End {
		t.Errorf("expected a window wrapping past 360, got %+v", p.SwellWindow)
	}
}
