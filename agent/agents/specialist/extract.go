package specialist

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

const (
	placeName = `[a-z][a-z'-]*(?:\s+[a-z][a-z'-]*)*?`
	placeEnd  = `(?:\s*[,;.!?]|\s+(?:on|departing|returning|leaving|for|from|with|in|at|near|between|next|tomorrow|this)\b|\s*$)`
)

var (
	// Place names match in any case. A name ends at punctuation, the end of
	// the text or a connecting word.
	routePattern = regexp.MustCompile(`(?i)\bfrom\s+(` + placeName + `)\s+to\s+(` + placeName + `)` + placeEnd)
	cityPattern  = regexp.MustCompile(`(?i)\bin\s+(` + placeName + `)` + placeEnd)

	datePattern       = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	passengerPattern  = regexp.MustCompile(`(?i)\b(\d+)\s+(?:passengers?|travell?ers?|adults?|people|persons)\b`)
	guestPattern      = regexp.MustCompile(`(?i)\b(\d+)\s+(?:guests?|adults?|people|persons)\b`)
	roomPattern       = regexp.MustCompile(`(?i)\b(\d+)\s+rooms?\b`)
	cabinPattern      = regexp.MustCompile(`(?i)\b(economy|business|first)\s+class\b`)
	preferencePattern = regexp.MustCompile(`(?i)\bpreferences?:\s*(.+)$`)
	airportPattern    = regexp.MustCompile(`\b[Aa]irport\s+([A-Z]{3})\b|\b([A-Z]{3})\s+[Aa]irport\b`)
	namePattern       = regexp.MustCompile(`\b(?:for|named?|passenger|guest)\s+([A-Z][a-z]+(?:\s[A-Z][a-z]+)+)`)
	emailPattern      = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// Matches MAR7, AERO1:NYC-LON, MAR1:NewYork and HI-AIRPORT:JFK.
	itemIDPattern = regexp.MustCompile(`\b(?:[A-Z]{2,5}-AIRPORT:[A-Z]{3}|[A-Z]{2,5}\d+(?::[A-Za-z]+(?:-[A-Za-z]+)?)?)`)
)

func route(text string) (from, to string, ok bool) {
	m := routePattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func city(text string) (string, bool) {
	m := cityPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func dates(text string) []string {
	var out []string
	for _, d := range datePattern.FindAllString(text, -1) {
		if _, err := time.Parse(isoDate, d); err == nil {
			out = append(out, d)
		}
	}
	return out
}

func count(pattern *regexp.Regexp, text string) (int, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func cabin(text string) string {
	m := cabinPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

func preferences(text string) string {
	m := preferencePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func airportCode(text string) (string, bool) {
	m := airportPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], true
}

func itemID(text string) (string, bool) {
	id := itemIDPattern.FindString(text)
	return id, id != ""
}

// contactDetails collects the traveler fields a booking tool requires.
func contactDetails(text string) map[string]any {
	details := map[string]any{"name": "Guest Traveler"}
	if m := namePattern.FindStringSubmatch(text); m != nil {
		details["name"] = m[1]
	}
	if email := emailPattern.FindString(text); email != "" {
		details["email"] = email
	}
	return details
}

func addDays(date string, days int) string {
	t, err := time.Parse(isoDate, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format(isoDate)
}
