package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	amountPattern    = regexp.MustCompile(`\$?\d+(?:,\d+)*`)
	slashDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	dashDatePattern  = regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`)
	monthYearPattern = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{4})\b`)
	isoDatePattern   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	integerPattern   = regexp.MustCompile(`\d+`)
	currencyNoise    = regexp.MustCompile(`[$,\s]`)
)

var monthPrefixes = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ExtractAmount returns the first dollar amount in text as a whole number.
// Cents are not part of the match and are dropped.
func ExtractAmount(text string) (int, bool) {
	match := amountPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	digits := strings.NewReplacer("$", "", ",", "").Replace(match)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractDate returns the first date in text, trying MM/DD/YYYY, then MM-DD-YYYY,
// then "Mon YYYY" (resolved to the first of the month).
func ExtractDate(text string) (time.Time, bool) {
	for _, re := range []*regexp.Regexp{slashDatePattern, dashDatePattern} {
		if m := re.FindStringSubmatch(text); m != nil {
			if d, ok := dateFromParts(m[3], m[1], m[2]); ok {
				return d, true
			}
		}
	}
	if m := monthYearPattern.FindStringSubmatch(text); m != nil {
		year, err := strconv.Atoi(m[2])
		if err != nil {
			return time.Time{}, false
		}
		month := monthPrefixes[strings.ToLower(m[1])]
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// FirstInteger returns the first run of digits in text
func FirstInteger(text string) (int, bool) {
	match := integerPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CleanCurrency strips currency symbols and thousands separators and returns the
// canonical decimal string, e.g. "$1,200.00" -> "1200".
func CleanCurrency(value string) (string, bool) {
	raw := strings.TrimSpace(value)
	negative := strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")")
	raw = strings.Trim(raw, "()")
	raw = currencyNoise.ReplaceAllString(raw, "")
	if raw == "" {
		return "", false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return "", false
	}
	if negative {
		d = d.Neg()
	}
	return d.String(), true
}

// CleanPercentage strips a trailing percent sign, e.g. "24.99%" -> "24.99".
func CleanPercentage(value string) (string, bool) {
	raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "%"))
	if raw == "" {
		return "", false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return "", false
	}
	return d.String(), true
}

// NormalizeDate converts the date formats seen in reports and spreadsheets to
// YYYY-MM-DD.
func NormalizeDate(value string) (string, bool) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return "", false
	}
	if m := isoDatePattern.FindStringSubmatch(raw); m != nil {
		if d, ok := dateFromParts(m[1], m[2], m[3]); ok {
			return d.Format("2006-01-02"), true
		}
		return "", false
	}
	d, ok := ExtractDate(raw)
	if !ok {
		return "", false
	}
	return d.Format("2006-01-02"), true
}

func dateFromParts(year, month, day string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// reject rollovers like 02/30
	if t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
