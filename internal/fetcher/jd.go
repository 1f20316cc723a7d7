package fetcher

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// JDFromTime converts a UTC instant to a Julian Date using the
// Fliegel–Van Flandern algorithm.
func JDFromTime(t time.Time) float64 {
	t = t.UTC()
	y := t.Year()
	m := int(t.Month())
	d := float64(t.Day()) +
		(float64(t.Hour())+(float64(t.Minute())+float64(t.Second())/60.0)/60.0)/24.0

	if m <= 2 {
		y--
		m += 12
	}

	a := y / 100
	b := 2 - a + a/4
	return math.Floor(365.25*float64(y+4716)) + math.Floor(30.6001*float64(m+1)) + d + float64(b) - 1524.5
}

// TimeFromJD converts a Julian Date back to a UTC time, truncated to seconds.
func TimeFromJD(jd decimal.Decimal) time.Time {
	v := jd.InexactFloat64()

	z := math.Floor(v + 0.5)
	f := v + 0.5 - z

	a := z
	if z >= 2299161 {
		alpha := math.Floor((z - 1867216.25) / 36524.25)
		a = z + 1 + alpha - math.Floor(alpha/4)
	}

	b := a + 1524
	c := math.Floor((b - 122.1) / 365.25)
	d := math.Floor(365.25 * c)
	e := math.Floor((b - d) / 30.6001)

	dayFrac := b - d - math.Floor(30.6001*e) + f
	day := math.Floor(dayFrac)

	month := e - 1
	if e >= 14 {
		month = e - 13
	}
	year := c - 4715
	if month > 2 {
		year = c - 4716
	}

	secs := (dayFrac - day) * 86400
	return time.Date(int(year), time.Month(month), int(day), 0, 0, 0, 0, time.UTC).
		Add(time.Duration(math.Round(secs)) * time.Second)
}
