package providers

import (
	"fmt"
	"strings"
	"time"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
	"github.com/ncruces/go-strftime"
)

var dateAttributeOrder = []string{
	"date", "year", "yy", "month", "mon", "mm", "dd", "dow", "doy", "hour", "min", "sec", "strftime",
}

var dateAttributeHelp = map[string]string{
	"date":     "ISO date, e.g. 2020-03-22",
	"year":     "4-digit year, e.g. 2021",
	"yy":       "2-digit year, e.g. 21",
	"month":    "Month full name, e.g. December",
	"mon":      "Month abbreviated name, e.g. Dec",
	"mm":       "2-digit month, e.g. 12",
	"dd":       "2-digit day of the month, e.g. 22",
	"dow":      "Day of the week full name, e.g. Tuesday",
	"doy":      "Julian day of year starting from 001",
	"hour":     "2-digit hour, e.g. 10",
	"min":      "2-digit minute, e.g. 15",
	"sec":      "2-digit second, e.g. 30",
	"strftime": "Apply strftime template to date/time, used as {created.strftime,TEMPLATE}, e.g. {created.strftime,%Y-%U} gives year-week number of year: '2020-23'. Without a template the value is null.",
}

// DateAttributeHelp lists the attributes accepted by DateAttribute.
func DateAttributeHelp() []mtl.HelpEntry {
	entries := make([]mtl.HelpEntry, 0, len(dateAttributeOrder))
	for _, name := range dateAttributeOrder {
		entries = append(entries, mtl.HelpEntry{Name: name, Description: dateAttributeHelp[name]})
	}
	return entries
}

// IsDateAttribute reports whether attr names a date attribute.
func IsDateAttribute(attr string) bool {
	_, ok := dateAttributeHelp[attr]
	return ok
}

// DateAttribute renders one attribute of t. The strftime attribute formats t
// with the first default value and is null when there is none.
func DateAttribute(t time.Time, attr string, defaults []string) (mtl.Value, error) {
	switch attr {
	case "date":
		return mtl.Str(t.Format("2006-01-02")), nil
	case "year":
		return mtl.Str(fmt.Sprintf("%04d", t.Year())), nil
	case "yy":
		return mtl.Str(fmt.Sprintf("%02d", t.Year()%100)), nil
	case "month":
		return mtl.Str(t.Month().String()), nil
	case "mon":
		return mtl.Str(t.Format("Jan")), nil
	case "mm":
		return mtl.Str(fmt.Sprintf("%02d", int(t.Month()))), nil
	case "dd":
		return mtl.Str(fmt.Sprintf("%02d", t.Day())), nil
	case "dow":
		return mtl.Str(t.Weekday().String()), nil
	case "doy":
		return mtl.Str(fmt.Sprintf("%03d", t.YearDay())), nil
	case "hour":
		return mtl.Str(fmt.Sprintf("%02d", t.Hour())), nil
	case "min":
		return mtl.Str(fmt.Sprintf("%02d", t.Minute())), nil
	case "sec":
		return mtl.Str(fmt.Sprintf("%02d", t.Second())), nil
	case "strftime":
		if len(defaults) == 0 || defaults[0] == "" {
			return mtl.Null(), nil
		}
		return mtl.Str(strftime.Format(defaults[0], t)), nil
	default:
		return mtl.Value{}, fmt.Errorf("unknown date/time attribute %q", attr)
	}
}

// isoFormat renders t as YYYY-MM-DDTHH:MM:SS with microseconds when present
// and, if withZone is set, the UTC offset.
func isoFormat(t time.Time, withZone bool) string {
	return isoFormatSep(t, "T", withZone)
}

func isoFormatSep(t time.Time, sep string, withZone bool) string {
	var b strings.Builder
	b.WriteString(t.Format("2006-01-02"))
	b.WriteString(sep)
	b.WriteString(t.Format("15:04:05"))
	if us := t.Nanosecond() / 1000; us != 0 {
		fmt.Fprintf(&b, ".%06d", us)
	}
	if withZone {
		b.WriteString(t.Format("-07:00"))
	}
	return b.String()
}

// dateField splits "name.attr" and validates attr.
func dateField(s string) (name, attr string, err error) {
	name, attr, found := strings.Cut(s, ".")
	if found && !IsDateAttribute(attr) {
		return name, attr, fmt.Errorf("unknown date/time attribute %q", attr)
	}
	return name, attr, nil
}

// resolveDate renders t, or one attribute of it, as a single value.
func resolveDate(t time.Time, attr string, withZone bool, defaults []string) ([]mtl.Value, error) {
	if attr == "" {
		return []mtl.Value{mtl.Str(isoFormat(t, withZone))}, nil
	}
	v, err := DateAttribute(t, attr, defaults)
	if err != nil {
		return nil, err
	}
	return []mtl.Value{v}, nil
}
