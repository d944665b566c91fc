// Package extract pulls structured facts out of free-text applicant
// utterances using deterministic lexical rules. Every helper returns the
// parsed value plus an ok flag; a miss is normal conversational input, not
// an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// ==========================
// 1. Fact Kinds
// ==========================

// Kind names a category of fact the conversation may ask for.
type Kind string

const (
	KindName    Kind = "name"
	KindSalary  Kind = "salary"
	KindCity    Kind = "city"
	KindAge     Kind = "age"
	KindAmount  Kind = "amount"
	KindPurpose Kind = "purpose"
	KindTenure  Kind = "tenure"
)

// Fact is one extracted value with its kind.
type Fact struct {
	Kind    Kind
	Text    string
	Number  int64
	Numeric bool
}

// ==========================
// 2. Extractor
// ==========================

// Extractor holds the compiled patterns. It is stateless and safe for
// concurrent use.
type Extractor struct {
	nameTemplates []*regexp.Regexp
	bareWord      *regexp.Regexp
	number        *regexp.Regexp
	kSuffix       *regexp.Regexp
	lakhAmount    *regexp.Regexp
	ageExplicit   *regexp.Regexp
	tenureMonths  *regexp.Regexp
	tenureYears   *regexp.Regexp
}

// New compiles the extraction patterns.
func New() *Extractor {
	return &Extractor{
		nameTemplates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bmy name is\s+([a-z]+)`),
			regexp.MustCompile(`(?i)\bi\s*am\s+([a-z]+)`),
			regexp.MustCompile(`(?i)\bi'm\s+([a-z]+)`),
			regexp.MustCompile(`(?i)\bcall me\s+([a-z]+)`),
			regexp.MustCompile(`(?i)\bthis is\s+([a-z]+)`),
		},
		bareWord:     regexp.MustCompile(`(?i)^([a-z]+)$`),
		number:       regexp.MustCompile(`(\d+(?:\.\d+)?)`),
		kSuffix:      regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*k\b`),
		lakhAmount:   regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:lakh|lakhs|lac|lacs)`),
		ageExplicit:  regexp.MustCompile(`(?i)(?:i\s*am|i'm|age\s*(?:is)?)\s*(\d{2})\b|\b(\d{2})\s*years?\s*old\b`),
		tenureMonths: regexp.MustCompile(`(?i)(\d+)\s*month`),
		tenureYears:  regexp.MustCompile(`(?i)(\d+)\s*year`),
	}
}

// nameStoplist holds words that template matches must never treat as names.
var nameStoplist = map[string]bool{
	"hello": true, "hi": true, "hey": true,
	"yes": true, "no": true, "ok": true, "okay": true,
	"loan": true, "money": true, "sure": true, "not": true,
	"interested": true, "good": true, "fine": true,
}

// Extract dispatches to the typed helper for the requested kind.
func (e *Extractor) Extract(utterance string, kind Kind) (Fact, bool) {
	switch kind {
	case KindName:
		if v, ok := e.Name(utterance); ok {
			return Fact{Kind: kind, Text: v}, true
		}
	case KindSalary:
		if v, ok := e.Salary(utterance); ok {
			return Fact{Kind: kind, Number: v, Numeric: true}, true
		}
	case KindCity:
		if v, ok := e.City(utterance); ok {
			return Fact{Kind: kind, Text: v}, true
		}
	case KindAge:
		if v, ok := e.Age(utterance); ok {
			return Fact{Kind: kind, Number: int64(v), Numeric: true}, true
		}
	case KindAmount:
		if v, ok := e.Amount(utterance); ok {
			return Fact{Kind: kind, Number: v, Numeric: true}, true
		}
	case KindPurpose:
		if v, ok := e.Purpose(utterance); ok {
			return Fact{Kind: kind, Text: v}, true
		}
	case KindTenure:
		if v, ok := e.Tenure(utterance); ok {
			return Fact{Kind: kind, Number: int64(v), Numeric: true}, true
		}
	}
	return Fact{}, false
}

// ==========================
// 3. Typed Helpers
// ==========================

// Name extracts an applicant name. Template forms win over a bare word; the
// stoplist blocks greeting vocabulary from being mistaken for a name.
func (e *Extractor) Name(utterance string) (string, bool) {
	for _, re := range e.nameTemplates {
		if m := re.FindStringSubmatch(utterance); m != nil {
			candidate := strings.ToLower(m[1])
			if !nameStoplist[candidate] {
				return title(candidate), true
			}
		}
	}

	trimmed := strings.TrimSpace(utterance)
	if m := e.bareWord.FindStringSubmatch(trimmed); m != nil {
		candidate := strings.ToLower(m[1])
		if !nameStoplist[candidate] && len(candidate) > 2 {
			return title(candidate), true
		}
	}
	return "", false
}

// Salary extracts a monthly salary in rupees. Suffix forms scale first,
// then small bare figures are assumed to be in thousands. Values outside
// [15000, 500000] are rejected as implausible.
func (e *Extractor) Salary(utterance string) (int64, bool) {
	var value float64
	found := false

	if m := e.lakhAmount.FindStringSubmatch(utterance); m != nil {
		f, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			value = f * 100000
			found = true
		}
	}
	if !found {
		if m := e.kSuffix.FindStringSubmatch(utterance); m != nil {
			f, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				if f < 1000 {
					f *= 1000
				}
				value = f
				found = true
			}
		}
	}
	if !found {
		if m := e.number.FindStringSubmatch(utterance); m != nil {
			f, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				if f < 10000 {
					f *= 1000
				}
				value = f
				found = true
			}
		}
	}

	if !found {
		return 0, false
	}
	v := int64(value)
	if v < 15000 || v > 500000 {
		return 0, false
	}
	return v, true
}

// Age extracts an applicant age within the lendable band [18, 65].
func (e *Extractor) Age(utterance string) (int, bool) {
	if m := e.ageExplicit.FindStringSubmatch(utterance); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if n, err := strconv.Atoi(raw); err == nil && n >= 18 && n <= 65 {
			return n, true
		}
	}

	// Fallback: any standalone two-digit number in band
	for _, m := range e.number.FindAllStringSubmatch(utterance, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 18 && n <= 65 && len(m[1]) == 2 {
			return n, true
		}
	}
	return 0, false
}

// Amount extracts a requested loan amount in rupees. Lakh forms scale by
// 100000; a bare figure under 10000 is assumed to be stated in lakhs.
func (e *Extractor) Amount(utterance string) (int64, bool) {
	if m := e.lakhAmount.FindStringSubmatch(utterance); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return int64(f * 100000), true
		}
	}

	if m := e.number.FindStringSubmatch(utterance); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			if f < 10000 {
				f *= 100000
			}
			return int64(f), true
		}
	}
	return 0, false
}

// purposeKeywords maps trigger words to the canonical purpose label.
var purposeKeywords = []struct {
	words   []string
	purpose string
}{
	{[]string{"business", "shop", "startup"}, "Business Loan"},
	{[]string{"home", "house", "renovation", "repair"}, "Home Renovation Loan"},
	{[]string{"wedding", "marriage"}, "Wedding Loan"},
	{[]string{"travel", "trip", "vacation", "holiday"}, "Travel Loan"},
	{[]string{"medical", "hospital", "surgery", "treatment"}, "Medical Loan"},
	{[]string{"education", "study", "course", "college", "school"}, "Education Loan"},
	{[]string{"personal"}, "Personal Loan"},
}

// Purpose maps keywords in the utterance to a loan purpose label.
func (e *Extractor) Purpose(utterance string) (string, bool) {
	lower := strings.ToLower(utterance)
	for _, entry := range purposeKeywords {
		for _, w := range entry.words {
			if strings.Contains(lower, w) {
				return entry.purpose, true
			}
		}
	}
	return "", false
}

// tenureWords maps spelled-out tenures onto months.
var tenureWords = map[string]int{
	"one year":    12,
	"two years":   24,
	"three years": 36,
	"four years":  48,
	"five years":  60,
}

// Tenure extracts a repayment tenure in months; only the offered tenures
// {12, 24, 36, 48, 60} are accepted.
func (e *Extractor) Tenure(utterance string) (int, bool) {
	lower := strings.ToLower(utterance)

	for phrase, months := range tenureWords {
		if strings.Contains(lower, phrase) {
			return months, true
		}
	}

	if m := e.tenureYears.FindStringSubmatch(utterance); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			months := n * 12
			if offeredTenure(months) {
				return months, true
			}
		}
	}

	if m := e.tenureMonths.FindStringSubmatch(utterance); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && offeredTenure(n) {
			return n, true
		}
	}
	return 0, false
}

func offeredTenure(months int) bool {
	switch months {
	case 12, 24, 36, 48, 60:
		return true
	}
	return false
}

// ==========================
// 4. Intent Helpers
// ==========================

var affirmativeWords = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "sure": true, "ok": true,
	"okay": true, "confirm": true, "proceed": true, "interested": true,
	"go": true, "great": true, "definitely": true, "absolutely": true,
	"done": true, "uploaded": true, "agreed": true, "accept": true,
}

var negativeWords = map[string]bool{
	"no": true, "nope": true, "not": true, "later": true, "cancel": true,
	"skip": true, "dont": true, "don't": true, "decline": true, "nah": true,
}

// IsAffirmative reports whether the utterance reads as a yes. Negation wins
// on mixed signals ("no, not now, ok?").
func IsAffirmative(utterance string) bool {
	if IsNegative(utterance) {
		return false
	}
	for _, w := range tokenize(utterance) {
		if affirmativeWords[w] {
			return true
		}
	}
	return false
}

// IsNegative reports whether the utterance reads as a no.
func IsNegative(utterance string) bool {
	for _, w := range tokenize(utterance) {
		if negativeWords[w] {
			return true
		}
	}
	return false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z') && r != '\''
	})
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
