package model

import "regexp"

// Dosage patterns recognized inside a medication description. The pill and
// tablet words cover the French and Italian spellings used by the voice
// interface. First match wins.
var dosagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+\s*(pill|pills|tablet|tablets|comprim[ée]s?|pastiglia|pastiglie)`),
	regexp.MustCompile(`(?i)\d+\s*mg`),
	regexp.MustCompile(`(?i)\d+\s*ml`),
}

// ExtractDosage pulls a dosage phrase like "2 pills" or "5mg" out of a task
// description. Returns the empty string when no pattern matches.
func ExtractDosage(description string) string {
	for _, pattern := range dosagePatterns {
		if match := pattern.FindString(description); match != "" {
			return match
		}
	}
	return ""
}
