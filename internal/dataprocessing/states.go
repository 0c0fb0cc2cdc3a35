package dataprocessing

import (
	"strings"
)

// stateAbbreviations maps USPS state and territory names to their codes.
var stateAbbreviations = map[string]string{
	"alabama":                  "AL",
	"alaska":                   "AK",
	"arizona":                  "AZ",
	"arkansas":                 "AR",
	"california":               "CA",
	"colorado":                 "CO",
	"connecticut":              "CT",
	"delaware":                 "DE",
	"district of columbia":     "DC",
	"florida":                  "FL",
	"georgia":                  "GA",
	"hawaii":                   "HI",
	"idaho":                    "ID",
	"illinois":                 "IL",
	"indiana":                  "IN",
	"iowa":                     "IA",
	"kansas":                   "KS",
	"kentucky":                 "KY",
	"louisiana":                "LA",
	"maine":                    "ME",
	"maryland":                 "MD",
	"massachusetts":            "MA",
	"michigan":                 "MI",
	"minnesota":                "MN",
	"mississippi":              "MS",
	"missouri":                 "MO",
	"montana":                  "MT",
	"nebraska":                 "NE",
	"nevada":                   "NV",
	"new hampshire":            "NH",
	"new jersey":               "NJ",
	"new mexico":               "NM",
	"new york":                 "NY",
	"north carolina":           "NC",
	"north dakota":             "ND",
	"ohio":                     "OH",
	"oklahoma":                 "OK",
	"oregon":                   "OR",
	"pennsylvania":             "PA",
	"rhode island":             "RI",
	"south carolina":           "SC",
	"south dakota":             "SD",
	"tennessee":                "TN",
	"texas":                    "TX",
	"utah":                     "UT",
	"vermont":                  "VT",
	"virginia":                 "VA",
	"washington":               "WA",
	"west virginia":            "WV",
	"wisconsin":                "WI",
	"wyoming":                  "WY",
	"american samoa":           "AS",
	"guam":                     "GU",
	"northern mariana islands": "MP",
	"puerto rico":              "PR",
	"virgin islands":           "VI",
}

// StateAbbreviation resolves a state name (or an abbreviation) to its USPS
// code. Any name mentioning "District" resolves to DC.
func StateAbbreviation(name string) (string, bool) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", false
	}
	if abbr, ok := stateAbbreviations[strings.ToLower(n)]; ok {
		return abbr, true
	}
	upper := strings.ToUpper(n)
	for _, abbr := range stateAbbreviations {
		if abbr == upper {
			return abbr, true
		}
	}
	if strings.Contains(n, "District") {
		return "DC", true
	}
	return "", false
}

// ClimateZoneCounts pairs state abbreviations with their climate zone counts,
// as laid out in two parallel columns of the state sheet. Blank or
// non-numeric counts are left out.
func ClimateZoneCounts(abbreviations, counts []string) map[string]int {
	out := make(map[string]int, len(abbreviations))
	for i, abbr := range abbreviations {
		abbr = strings.TrimSpace(abbr)
		if abbr == "" || i >= len(counts) {
			continue
		}
		n, ok := parseCount(counts[i])
		if !ok {
			continue
		}
		out[abbr] = n
	}
	return out
}
