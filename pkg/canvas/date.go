package canvas

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	duePrefixRe = regexp.MustCompile(`(?i)^due\s*`)
	numericRe   = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})(?:[/-](\d{4}))?$`)
	monthNameRe = regexp.MustCompile(`^([A-Za-z]{3,12})\.?\s+(\d{1,2})(?:,\s*(\d{4}))?$`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"sept": time.September, "oct": time.October, "nov": time.November,
	"dec": time.December,
}

// NormalizeDue converts a scraped due date into the RFC3339 form the
// Google Tasks API accepts, or reports ok=false when the input carries
// no usable date. Accepted inputs: a full RFC3339 timestamp, numeric
// "M/D" or "M/D/YYYY", and month-name "Sep 9" / "September 9, 2025"
// (with an optional leading "Due"). A missing year defaults to the
// current year.
//
// Google Tasks keeps only the calendar-day part of a due date, so the
// result is snapped to local midnight with an explicit zone offset;
// that way the day the scraper reported survives the round trip in any
// timezone.
func NormalizeDue(raw string) (string, bool) {
	return normalizeDueAt(raw, time.Now(), time.Local)
}

func normalizeDueAt(raw string, now time.Time, loc *time.Location) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	s = strings.TrimSpace(duePrefixRe.ReplaceAllString(s, ""))
	if strings.EqualFold(s, "no due date") {
		return "", false
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return midnight(t.In(loc)), true
	}

	if m := numericRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year := now.In(loc).Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		return calendarDay(year, time.Month(month), day, loc)
	}

	if m := monthNameRe.FindStringSubmatch(s); m != nil {
		month, ok := monthByName(m[1])
		if !ok {
			return "", false
		}
		day, _ := strconv.Atoi(m[2])
		year := now.In(loc).Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		return calendarDay(year, month, day, loc)
	}

	return "", false
}

func monthByName(name string) (time.Month, bool) {
	key := strings.ToLower(name)
	if m, ok := monthsByPrefix[key]; ok {
		return m, true
	}
	if len(key) > 4 {
		key = key[:4]
	}
	if m, ok := monthsByPrefix[key]; ok {
		return m, true
	}
	if len(key) > 3 {
		key = key[:3]
	}
	m, ok := monthsByPrefix[key]
	return m, ok
}

// calendarDay builds the RFC3339 midnight for year/month/day, rejecting
// inputs that time.Date would silently roll over (e.g. 2/30).
func calendarDay(year int, month time.Month, day int, loc *time.Location) (string, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Month() != month || t.Day() != day {
		return "", false
	}
	return t.Format(time.RFC3339), true
}

func midnight(t time.Time) string {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).Format(time.RFC3339)
}
