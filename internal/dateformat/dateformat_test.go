package dateformat

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		date   time.Time
		layout string
		want   string
	}{
		{"iso", day(2024, time.January, 5), "yyyy-MM-dd", "2024-01-05"},
		{"ordinal long month", day(2024, time.March, 21), "do MMMM yyyy", "21st March 2024"},
		{"default journal", day(2024, time.January, 5), DefaultFormat, "Jan 5th, 2024"},
		{"full weekday", day(2024, time.January, 5), "EEEE", "Friday"},
		{"short weekday", day(2024, time.January, 5), "EEE", "Fri"},
		{"single E", day(2024, time.January, 5), "E, dd", "Fri, 05"},
		{"EE passes through", day(2024, time.January, 5), "EE", "EE"},
		{"long month not shadowed", day(2024, time.September, 2), "MMMM", "September"},
		{"short month", day(2024, time.September, 2), "MMM", "Sep"},
		{"literal text", day(2024, time.January, 5), "journal/yyyy_MM_dd", "journal/2024_01_05"},
		{"no tokens", day(2024, time.January, 5), "hello", "hello"},
		{"weekday and ordinal", day(2024, time.February, 12), "EEE, MMM do, yyyy", "Mon, Feb 12th, 2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.date, tt.layout); got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}

func TestOrdinal(t *testing.T) {
	want := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 10: "10th",
		11: "11th", 12: "12th", 13: "13th", 14: "14th", 20: "20th",
		21: "21st", 22: "22nd", 23: "23rd", 24: "24th", 30: "30th", 31: "31st",
		101: "101st", 111: "111th", 112: "112th", 113: "113th", 122: "122nd",
	}
	for n, w := range want {
		if got := Ordinal(n); got != w {
			t.Errorf("Ordinal(%d) = %q, want %q", n, got, w)
		}
	}
}
