package extract

import "strings"

// cityGazetteer maps lowercase city spellings, including common aliases, to
// the canonical city name.
var cityGazetteer = map[string]string{
	"mumbai":    "Mumbai",
	"bombay":    "Mumbai",
	"delhi":     "Delhi",
	"new delhi": "Delhi",
	"bangalore": "Bangalore",
	"bengaluru": "Bangalore",
	"hyderabad": "Hyderabad",
	"chennai":   "Chennai",
	"madras":    "Chennai",
	"kolkata":   "Kolkata",
	"calcutta":  "Kolkata",
	"pune":      "Pune",
	"ahmedabad": "Ahmedabad",
	"jaipur":    "Jaipur",
	"lucknow":   "Lucknow",
	"chandigarh": "Chandigarh",
	"indore":    "Indore",
	"nagpur":    "Nagpur",
	"surat":     "Surat",
	"kochi":     "Kochi",
	"cochin":    "Kochi",
	"coimbatore": "Coimbatore",
	"bhopal":    "Bhopal",
	"patna":     "Patna",
	"vadodara":  "Vadodara",
	"baroda":    "Vadodara",
	"gurgaon":   "Gurgaon",
	"gurugram":  "Gurgaon",
	"noida":     "Noida",
}

// cityStopwords blocks common sentence words from the fallback path.
var cityStopwords = map[string]bool{
	"from": true, "live": true, "living": true, "city": true, "stay": true,
	"staying": true, "based": true, "currently": true, "working": true,
	"yes": true, "okay": true, "hello": true, "salary": true, "loan": true,
	"month": true, "earn": true, "about": true, "around": true, "that": true,
	"this": true, "with": true, "have": true, "will": true, "need": true,
}

// City extracts a city name. Gazetteer spellings, aliases included, resolve
// to their canonical form; otherwise the first plausible alphabetic word
// longer than three characters is title-cased and accepted.
func (e *Extractor) City(utterance string) (string, bool) {
	lower := strings.ToLower(utterance)

	for spelling, canonical := range cityGazetteer {
		if strings.Contains(lower, spelling) {
			return canonical, true
		}
	}

	for _, w := range tokenize(utterance) {
		if len(w) > 3 && !cityStopwords[w] && !nameStoplist[w] {
			return title(w), true
		}
	}
	return "", false
}
