package domain

import "testing"

func TestValidGuideID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"valid corrie", "corrie", true},
		{"valid ezra", "ezra", true},
		{"valid maud", "maud", true},
		{"valid silas", "silas", true},
		{"invalid empty", "", false},
		{"invalid unknown", "unknown", false},
		{"invalid capitalized", "Corrie", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidGuideID(tt.id); got != tt.valid {
				t.Errorf("ValidGuideID(%q) = %v, want %v", tt.id, got, tt.valid)
			}
		})
	}
}

func TestGuidesCount(t *testing.T) {
	if got := len(Guides); got != 4 {
		t.Errorf("len(Guides) = %d, want 4", got)
	}
	if got := len(GuideOrder); got != len(Guides) {
		t.Errorf("len(GuideOrder) = %d, want %d", got, len(Guides))
	}
}

func TestGuidesInOrder(t *testing.T) {
	guides := GuidesInOrder()
	for i, g := range guides {
		if g.ID != GuideOrder[i] {
			t.Errorf("guides[%d].ID = %q, want %q", i, g.ID, GuideOrder[i])
		}
		if g.Name == "" || g.Title == "" {
			t.Errorf("guide %q is missing name or title", g.ID)
		}
		if len(g.SamplePrompts) == 0 {
			t.Errorf("guide %q has no sample prompts", g.ID)
		}
	}
}

func TestLookupGuide(t *testing.T) {
	g, ok := LookupGuide("maud")
	if !ok {
		t.Fatal("LookupGuide(maud) not found")
	}
	if g.ShortName != "Maud" {
		t.Errorf("ShortName = %q, want %q", g.ShortName, "Maud")
	}
	if _, ok := LookupGuide("nobody"); ok {
		t.Error("LookupGuide(nobody) should not be found")
	}
}
