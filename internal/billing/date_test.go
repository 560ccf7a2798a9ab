package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  Date
		valid bool
	}{
		{"iso", "2024-03-05", NewDate(2024, time.March, 5), true},
		{"day first", "05/03/2024", NewDate(2024, time.March, 5), true},
		{"day first is not month first", "07/03/2024", NewDate(2024, time.March, 7), true},
		{"unpadded day first", "5/3/2024", NewDate(2024, time.March, 5), true},
		{"iso with time suffix", "2024-03-05T10:30:00Z", NewDate(2024, time.March, 5), true},
		{"surrounding spaces", "  2024-03-05 ", NewDate(2024, time.March, 5), true},
		{"leap day", "29/02/2024", NewDate(2024, time.February, 29), true},
		{"empty", "", Date{}, false},
		{"blank", "   ", Date{}, false},
		{"not available", "N/A", Date{}, false},
		{"not available lower case", "n/a", Date{}, false},
		{"no separator", "20240305", Date{}, false},
		{"dotted", "05.03.2024", Date{}, false},
		{"month out of range", "2024-13-01", Date{}, false},
		{"day out of range", "31/04/2024", Date{}, false},
		{"feb 29 outside leap year", "2023-02-29", Date{}, false},
		{"zero day", "2024-03-00", Date{}, false},
		{"two digit year", "05/03/24", Date{}, false},
		{"too many parts", "2024-03-05-01", Date{}, false},
		{"letters", "2024-Mar-05", Date{}, false},
		{"signed component", "2024-+3-05", Date{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2024, time.January))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2023, time.February))
	assert.Equal(t, 30, DaysInMonth(2024, time.April))
	assert.Equal(t, 31, DaysInMonth(2024, time.December))
	assert.Equal(t, 28, DaysInMonth(1900, time.February))
	assert.Equal(t, 29, DaysInMonth(2000, time.February))
}

func TestDate_Formatting(t *testing.T) {
	d := NewDate(2024, time.February, 5)

	assert.Equal(t, "2024-02-05", d.String())
	assert.Equal(t, "5/2/2024", d.DayFirst())

	text, err := d.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "2024-02-05", string(text))

	var back Date
	assert.NoError(t, back.UnmarshalText([]byte("05/02/2024")))
	assert.Equal(t, d, back)
	assert.Error(t, back.UnmarshalText([]byte("N/A")))
}

func TestDate_AfterAndAddDays(t *testing.T) {
	d := NewDate(2024, time.February, 28)

	assert.True(t, d.AddDays(1).After(d))
	assert.False(t, d.After(d))
	assert.True(t, NewDate(2025, time.January, 1).After(NewDate(2024, time.December, 31)))
	assert.Equal(t, NewDate(2024, time.February, 29), d.AddDays(1))
	assert.Equal(t, NewDate(2024, time.March, 1), d.AddDays(2))
}

func TestDateOf_IgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	ts := time.Date(2024, time.March, 5, 23, 59, 59, 0, loc)

	assert.Equal(t, NewDate(2024, time.March, 5), DateOf(ts))
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), DateOf(ts).Time())
}
