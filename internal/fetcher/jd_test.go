package fetcher

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestJDFromTimeKnownEpoch(t *testing.T) {
	// J2000.0: 2000-01-01 12:00 UTC = JD 2451545.0
	jd := JDFromTime(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC))
	if math.Abs(jd-2451545.0) > 1e-9 {
		t.Fatalf("期望 JD 2451545.0, 实际 %f", jd)
	}

	jd = JDFromTime(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC))
	if math.Abs(jd-2451179.5) > 1e-9 {
		t.Fatalf("期望 JD 2451179.5, 实际 %f", jd)
	}
}

func TestTimeFromJDInverse(t *testing.T) {
	got := TimeFromJD(decimal.RequireFromString("2451545.0"))
	want := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("期望 %s, 实际 %s", want, got)
	}
}

func TestJDRoundTrip(t *testing.T) {
	original := time.Date(2025, 8, 20, 3, 47, 12, 0, time.UTC)
	jd := JDFromTime(original)
	back := TimeFromJD(decimal.NewFromFloat(jd))

	if diff := back.Sub(original); diff > time.Second || diff < -time.Second {
		t.Fatalf("往返误差超过 1s: %s vs %s", original, back)
	}
}
