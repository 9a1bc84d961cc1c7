package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrDateFormat = errors.New("unrecognized date")

// Locale holds the month names and casing rules used for stored dates.
type Locale struct {
	Tag    language.Tag
	Months [12]string // lower case, January first
}

var (
	Turkish = Locale{
		Tag: language.Turkish,
		Months: [12]string{
			"ocak", "şubat", "mart", "nisan", "mayıs", "haziran",
			"temmuz", "ağustos", "eylül", "ekim", "kasım", "aralık",
		},
	}
	English = Locale{
		Tag: language.English,
		Months: [12]string{
			"january", "february", "march", "april", "may", "june",
			"july", "august", "september", "october", "november", "december",
		},
	}
)

// LocaleFor maps a language code to a known locale, defaulting to Turkish.
func LocaleFor(code string) Locale {
	if strings.HasPrefix(strings.ToLower(code), "en") {
		return English
	}
	return Turkish
}

func (l Locale) orDefault() Locale {
	if l.Months[0] == "" {
		return Turkish
	}
	return l
}

func (l Locale) lower(s string) string {
	return cases.Lower(l.Tag).String(s)
}

func (l Locale) month(name string) int {
	for i, m := range l.Months {
		if m == name {
			return i + 1
		}
	}
	return 0
}

// ParseDate parses "day month-name year" (e.g. "12 Ekim 2023") into a date
// at midnight UTC.
func (l Locale) ParseDate(s string) (time.Time, error) {
	parts := strings.Fields(l.lower(s))
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDateFormat, s)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: day %q", ErrDateFormat, parts[0])
	}
	month := l.month(parts[1])
	if month == 0 {
		// "EKIM" typed without the dotted capital lowers to "ekım" under
		// Turkish rules; retry with neutral casing.
		month = l.month(cases.Lower(language.Und).String(strings.Fields(s)[1]))
	}
	if month == 0 {
		return time.Time{}, fmt.Errorf("%w: month %q", ErrDateFormat, parts[1])
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: year %q", ErrDateFormat, parts[2])
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes "31 Şubat" into March; treat that as invalid.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("%w: no such day %q", ErrDateFormat, s)
	}
	return t, nil
}

// PublishedAt parses s, falling back to the Unix epoch so that articles with
// broken dates sink to the bottom of the ranking.
func (l Locale) PublishedAt(s string) time.Time {
	t, err := l.ParseDate(s)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}

// FormatDate renders t the way dates are stored, e.g. "5 Ocak 2024".
func (l Locale) FormatDate(t time.Time) string {
	name := l.Months[t.Month()-1]
	title := cases.Title(l.Tag).String(name)
	return fmt.Sprintf("%d %s %d", t.Day(), title, t.Year())
}

// DaysBetween counts whole calendar days from published to now, never negative.
func DaysBetween(published, now time.Time) int {
	from := time.Date(published.Year(), published.Month(), published.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int((to.Unix() - from.Unix()) / 86400)
	if days < 0 {
		return 0
	}
	return days
}
