package fallback

import "testing"

func TestMapToThemeKeywords(t *testing.T) {
	tests := []struct {
		prompt string
		effect string
	}{
		{"ocean waves crashing", "waves"},
		{"journey through deep space", "globe"},
		{"a science laboratory experiment", "net"},
		{"rainforest jungle canopy", "cells"},
		{"crystal cave formations", "topology"},
		{"an enchanted magical kingdom", "halo"},
		{"desert archaeology dig site", "rings"},
		{"arctic ice shelf", "clouds2"},
		{"volcano eruption with lava", "birds"},
		{"photosynthesis basics", "globe"}, // default
	}
	for _, tc := range tests {
		if got := MapToTheme(tc.prompt); got.EffectID != tc.effect {
			t.Errorf("MapToTheme(%q).EffectID = %q, want %q", tc.prompt, got.EffectID, tc.effect)
		}
	}
}

func TestMapToThemePriorityOrder(t *testing.T) {
	// Both keyword sets match; the earlier rule must win.
	theme := MapToTheme("stars reflected on the ocean")
	if theme.EffectID != "globe" {
		t.Fatalf("EffectID = %q, want globe (space rule has priority)", theme.EffectID)
	}
}

func TestMapToThemeIsDeterministic(t *testing.T) {
	first := MapToTheme("ocean waves crashing")
	for i := 0; i < 10; i++ {
		got := MapToTheme("ocean waves crashing")
		if got != first {
			t.Fatalf("theme changed between calls: %+v vs %+v", first, got)
		}
	}
	if first.GradientID != "g3" {
		// daily.Hash("ocean waves crashing") = 2451739395; 2451739395 % 4 = 3.
		t.Fatalf("GradientID = %q, want g3", first.GradientID)
	}
}

func TestDecorativeGradientBounds(t *testing.T) {
	if DecorativeGradient("bogus") != DecorativeGradient("g0") {
		t.Fatal("unknown id should fall back to the first palette entry")
	}
	if DecorativeGradient("g99") != DecorativeGradient("g0") {
		t.Fatal("out-of-range id should fall back to the first palette entry")
	}
	if DecorativeGradient("g1") == "" {
		t.Fatal("palette entries must be non-empty")
	}
	if DecorativeGradient("g1") == DecorativeGradient("g2") {
		t.Fatal("palette entries should differ")
	}
}
