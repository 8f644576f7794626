package models

import "testing"

func TestCategories_ClosedSet(t *testing.T) {
	if len(Categories) != 13 {
		t.Fatalf("len(Categories) = %d, want 13", len(Categories))
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Restaurants", CategoryRestaurants, true},
		{"restaurants", CategoryRestaurants, true},
		{"  SHOPPING ", CategoryShopping, true},
		{"Miscellaneous", CategoryMiscellaneous, true},
		{"Food", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseCategory(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseCategory(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
