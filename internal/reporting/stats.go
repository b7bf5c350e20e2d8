package reporting

import (
	"fmt"
	"math"
)

// Descriptive statistics backing the dashboard insight boxes. Nothing here
// goes beyond sample moments; these are summaries, not models.

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// StdDev returns the sample standard deviation, or 0 for fewer than two
// values.
func StdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := Mean(vals)
	var ss float64
	for _, v := range vals {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

// Volatility returns the coefficient of variation as a percentage, or 0
// when the mean is zero.
func Volatility(vals []float64) float64 {
	m := Mean(vals)
	if m == 0 {
		return 0
	}
	return StdDev(vals) / m * 100
}

// Trend compares the mean of the latest window against the window before
// it. With fewer than two windows of data the earliest window stands in for
// the previous one.
type Trend struct {
	Direction string  `json:"direction"`
	ChangePct float64 `json:"change_pct"`
}

const trendWindow = 3

// WindowTrend computes the trend of a value series ordered oldest-first.
func WindowTrend(vals []float64) Trend {
	if len(vals) == 0 {
		return Trend{Direction: "flat"}
	}

	latest := Mean(tail(vals, trendWindow))
	var previous float64
	if len(vals) >= 2*trendWindow {
		prev := vals[len(vals)-2*trendWindow : len(vals)-trendWindow]
		previous = Mean(prev)
	} else {
		previous = Mean(head(vals, trendWindow))
	}

	t := Trend{Direction: "flat"}
	switch {
	case latest > previous:
		t.Direction = "growing"
	case latest < previous:
		t.Direction = "declining"
	}
	if previous != 0 {
		t.ChangePct = math.Abs((latest - previous) / previous * 100)
	}
	return t
}

// Correlation returns the Pearson correlation coefficient of two
// equal-length series.
func Correlation(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("series length mismatch: %d vs %d", len(x), len(y))
	}
	if len(x) < 2 {
		return 0, fmt.Errorf("need at least 2 points, got %d", len(x))
	}

	mx, my := Mean(x), Mean(y)
	var cov, vx, vy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0, fmt.Errorf("zero variance series")
	}
	return cov / math.Sqrt(vx*vy), nil
}

func head(vals []float64, n int) []float64 {
	if len(vals) < n {
		return vals
	}
	return vals[:n]
}

func tail(vals []float64, n int) []float64 {
	if len(vals) < n {
		return vals
	}
	return vals[len(vals)-n:]
}
