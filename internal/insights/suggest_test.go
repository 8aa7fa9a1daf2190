package insights

import "testing"

func TestSuggestCategory(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Lunch at Starbucks", "Food"},
		{"Uber to airport", "Transport"},
		{"NETFLIX subscription", "Entertainment"},
		{"wifi bill march", "Utilities"},
		{"gym membership", "Health"},
		{"groceries for the week", "Households"},
		{"course on woodworking", "Education"},
		{"misc stuff", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SuggestCategory(tt.text); got != tt.want {
			t.Fatalf("SuggestCategory(%q): expected %q, got %q", tt.text, tt.want, got)
		}
	}
}

func TestSuggestCategoryFirstRuleWins(t *testing.T) {
	// "gas bill" matches both Transport and Utilities; the table order
	// decides in favor of Transport.
	if got := SuggestCategory("gas bill"); got != "Transport" {
		t.Fatalf("expected Transport, got %q", got)
	}
}

func TestSelectorAutoSuggestion(t *testing.T) {
	known := []string{"Food", "Transport", "Utilities"}

	var s Selector
	s.ObserveNote("Lunch at Starbucks", known)
	if got := s.Category(); got != "Food" {
		t.Fatalf("expected Food, got %q", got)
	}

	// Later note text keeps steering the selection while still automatic.
	s.ObserveNote("Uber to airport", known)
	if got := s.Category(); got != "Transport" {
		t.Fatalf("expected Transport, got %q", got)
	}

	// A suggestion outside the known set leaves the selection alone.
	s.ObserveNote("gym membership", known)
	if got := s.Category(); got != "Transport" {
		t.Fatalf("expected Transport to stick, got %q", got)
	}
}

func TestSelectorManualLatch(t *testing.T) {
	known := []string{"Food", "Transport"}

	var s Selector
	s.Select("Transport")
	s.ObserveNote("Lunch at Starbucks", known)
	if got := s.Category(); got != "Transport" {
		t.Fatalf("manual pick must not be overridden, got %q", got)
	}

	s.Reset()
	s.ObserveNote("Lunch at Starbucks", known)
	if got := s.Category(); got != "Food" {
		t.Fatalf("reset must re-arm suggestion, got %q", got)
	}
}
