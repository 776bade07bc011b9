// Package format renders economy numbers the way every client shows them:
// small values with cents, mid values with separators, large values on a
// K/M/B suffix ladder.
package format

import (
	"math"

	"github.com/dustin/go-humanize"
)

var suffixes = []string{"", "K", "M", "B", "T", "Qa", "Qi", "Sx", "Sp", "Oc", "No", "Dc"}

// Points formats a currency or rate value.
func Points(v float64) string {
	switch {
	case v == 0 || math.IsNaN(v):
		return "0"
	case math.IsInf(v, 0):
		return humanize.FormatFloat("", v)
	case v < 10:
		return humanize.FormatFloat("#.##", v)
	case v <= 1000:
		return humanize.Comma(int64(math.Floor(v)))
	}

	tier := int(math.Floor(math.Log10(math.Abs(v)) / 3))
	if tier >= len(suffixes) {
		tier = len(suffixes) - 1
	}
	scaled := v / math.Pow(10, float64(tier*3))

	return humanize.FormatFloat("#,###.###", scaled) + suffixes[tier]
}

// Rate formats a per-second production value.
func Rate(v float64) string {
	return Points(v) + "/s"
}
