package trend

import (
	"encoding/json"
	"testing"
)

func TestParseSalaryRange(t *testing.T) {
	tests := []struct {
		in      string
		wantOK  bool
		wantMid float64
	}{
		{"$50,000 - $70,000", true, 60000},
		{"$60K-$90K", true, 75},
		{"59K-99K", true, 79},
		{"Not Disclosed", false, 0},
		{"$50,000", false, 0},
		{"$50,000 - $70,000 - $90,000", false, 0},
		{"- $70,000", false, 0},
		{"", false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			r, ok := ParseSalaryRange(tc.in)
			if ok != tc.wantOK {
				t.Fatalf("ParseSalaryRange(%q) ok = %v, want %v", tc.in, ok, tc.wantOK)
			}
			if ok && r.Midpoint() != tc.wantMid {
				t.Errorf("midpoint = %v, want %v", r.Midpoint(), tc.wantMid)
			}
		})
	}
}

func TestParseExperienceRange(t *testing.T) {
	tests := []struct {
		in      string
		wantOK  bool
		wantMid float64
	}{
		{"3 to 5 Years", true, 4},
		{"0 to 15 Years", true, 7.5},
		{"2-4", true, 3},
		{"Entry Level", false, 0},
		{"5 Years", false, 0},
		{"1 to 3 Years, 2 preferred", false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			r, ok := ParseExperienceRange(tc.in)
			if ok != tc.wantOK {
				t.Fatalf("ParseExperienceRange(%q) ok = %v, want %v", tc.in, ok, tc.wantOK)
			}
			if ok && r.Midpoint() != tc.wantMid {
				t.Errorf("midpoint = %v, want %v", r.Midpoint(), tc.wantMid)
			}
		})
	}
}

func TestTrailingRegion(t *testing.T) {
	tests := []struct{ in, want string }{
		{"San Francisco, CA", "CA"},
		{"CA", "CA"},
		{"NY", "NY"},
		{"X", "X"},
		{"", ""},
		{"Zürich", "ch"},
	}
	for _, tc := range tests {
		if got := TrailingRegion(tc.in); got != tc.want {
			t.Errorf("TrailingRegion(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestProgression_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		p    Progression
		want string
	}{
		{"whole and half years", Progression{4.5: 80000, 4: 60000}, `{"4.0":60000,"4.5":80000}`},
		{"zero years", Progression{0: 30000}, `{"0.0":30000}`},
		{"double digits", Progression{12: 150000, 1.25: 40000}, `{"1.25":40000,"12.0":150000}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.p)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("json = %s, want %s", data, tt.want)
			}
		})
	}

	empty, err := json.Marshal(Progression{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(empty) != `{}` {
		t.Errorf("unexpected json: %s", empty)
	}
}
