package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is how dates are shown to and typed by clients.
const DateLayout = "02.01.2006"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate reads a DD.MM.YYYY date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

var weekdays = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

// FormatDay renders a date button label such as "Пн 20.10".
func FormatDay(t time.Time) string {
	return weekdays[t.Weekday()] + " " + t.Format("02.01")
}

// FormatRub renders a whole-ruble amount with grouped thousands, e.g. "2 500 ₽".
func FormatRub(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String() + " ₽"
	if neg {
		return "-" + out
	}
	return out
}
