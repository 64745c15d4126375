// Package format renders report figures the way the board deck prints them.
package format

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/AngelCh415/spark-report/internal/models"
)

// Kind selects how a YoY absolute change is printed.
type Kind int

const (
	KindNumber Kind = iota
	KindCurrency
	KindRatio
)

// Blank is shown when a comparison has no meaningful baseline.
const Blank = "—"

const minus = "−"

func Number(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// ZAR formats a rand amount rounded to whole rands.
func ZAR(v float64) string {
	return "R" + Number(v)
}

// Percent formats a fraction (0.0123) as "1.23%".
func Percent(fraction float64) string {
	return fmt.Sprintf("%.2f%%", fraction*100)
}

func signed(s string, positive bool) string {
	if positive {
		return "+" + s
	}
	return minus + s
}

// YoY compares current against previous. Percent stays nil and both display
// strings are Blank when previous is not positive.
func YoY(current, previous float64, kind Kind) models.YoYValue {
	v := models.YoYValue{
		Current:        current,
		Previous:       previous,
		Delta:          current - previous,
		AbsoluteChange: Blank,
		PercentChange:  Blank,
	}
	if math.IsNaN(previous) || math.IsInf(previous, 0) || previous <= 0 {
		return v
	}

	pct := v.Delta / previous
	v.Percent = &pct
	positive := v.Delta >= 0
	abs := math.Abs(v.Delta)

	switch kind {
	case KindCurrency:
		v.AbsoluteChange = signed(ZAR(abs), positive)
	case KindRatio:
		v.AbsoluteChange = signed(Percent(abs), positive)
	default:
		v.AbsoluteChange = signed(Number(abs), positive)
	}
	v.PercentChange = signed(fmt.Sprintf("%.1f%%", math.Abs(pct)*100), pct >= 0)
	return v
}
