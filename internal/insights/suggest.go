package insights

import "strings"

// keywordRule maps a category to the note substrings that imply it.
// Order matters: the first matching category wins.
type keywordRule struct {
	category string
	keywords []string
}

var keywordTable = []keywordRule{
	{"Food", []string{"coffee", "burger", "lunch", "dinner", "starbuck", "mcdonald", "pizza", "food", "cafe", "restaurant", "meal", "snack"}},
	{"Transport", []string{"uber", "lyft", "taxi", "bus", "train", "metro", "gas", "fuel", "petrol", "parking"}},
	{"Utilities", []string{"rent", "bill", "electricity", "water", "internet", "wifi", "phone", "mobile"}},
	{"Entertainment", []string{"movie", "netflix", "cinema", "game", "spotify", "sub"}},
	{"Health", []string{"doctor", "pharmacy", "meds", "gym", "medicine", "hospital"}},
	{"Households", []string{"grocery", "groceries", "soap", "detergent", "ikea"}},
	{"Education", []string{"book", "course", "class", "tuition", "school"}},
}

// SuggestCategory returns the first category whose keyword list contains a
// case-insensitive substring of text, or "" when nothing matches.
func SuggestCategory(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range keywordTable {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return ""
}

// Selector tracks the active category of one entry session. Note text drives
// auto-suggestion only until the user picks a category by hand; that manual
// pick is a one-way latch until Reset.
type Selector struct {
	category string
	manual   bool
}

// ObserveNote feeds updated note text into the selector. A suggestion is
// applied only when auto-suggestion is still armed and the suggested name is
// among the known category names.
func (s *Selector) ObserveNote(text string, known []string) {
	if s.manual {
		return
	}
	suggested := SuggestCategory(text)
	if suggested == "" {
		return
	}
	for _, name := range known {
		if name == suggested {
			s.category = suggested
			return
		}
	}
}

// Select records a manual category pick and disarms auto-suggestion.
func (s *Selector) Select(category string) {
	s.category = category
	s.manual = true
}

// Category returns the currently active category, which may be empty.
func (s *Selector) Category() string {
	return s.category
}

// Reset clears the selection and re-arms auto-suggestion for a new entry.
func (s *Selector) Reset() {
	s.category = ""
	s.manual = false
}
