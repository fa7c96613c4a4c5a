package schema

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout renders timestamps as "5 Mar, 2021".
const DateLayout = "2 Jan, 2006"

// Decimal unit factors for byte sizes.
const (
	kiloFactor = 1e3
	megaFactor = 1e6
	gigaFactor = 1e9
)

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatBytes renders a byte count with decimal units and two decimals.
// The unit is chosen after rounding, so 999,999 bytes is "1.00 MB" and never "1000.00 KB".
func FormatBytes(n int64) string {
	v := float64(n)
	if gb := round2(v / gigaFactor); gb >= 1 {
		return strconv.FormatFloat(gb, 'f', 2, 64) + " GB"
	}
	if mb := round2(v / megaFactor); mb >= 1 {
		return strconv.FormatFloat(mb, 'f', 2, 64) + " MB"
	}
	return strconv.FormatFloat(round2(v/kiloFactor), 'f', 2, 64) + " KB"
}

// FormatDate renders a timestamp in UTC as "D Mon, YYYY".
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// FormatLanguageSizes renders "Lang: <size>; " for each language, largest first.
func FormatLanguageSizes(b LanguageBreakdown) string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if b[names[i]] != b[names[j]] {
			return b[names[i]] > b[names[j]]
		}
		return names[i] < names[j]
	})

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(FormatBytes(b[name]))
		sb.WriteString("; ")
	}
	return sb.String()
}

// FormatFileCounts renders "Lang: files; " for each language.
func FormatFileCounts(langs map[string]LanguageCount) string {
	return formatLanguageCounts(langs, func(c LanguageCount) int { return c.Files })
}

// FormatLineCounts renders "Lang: code; " for each language.
func FormatLineCounts(langs map[string]LanguageCount) string {
	return formatLanguageCounts(langs, func(c LanguageCount) int { return c.Code })
}

// formatLanguageCounts orders languages by code lines, then name, so that the
// file and line columns list languages in the same order.
func formatLanguageCounts(langs map[string]LanguageCount, pick func(LanguageCount) int) string {
	names := make([]string, 0, len(langs))
	for name := range langs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := langs[names[i]].Code, langs[names[j]].Code
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(strconv.Itoa(pick(langs[name])))
		sb.WriteString("; ")
	}
	return sb.String()
}

// SummarizeContributors counts contributors and renders "login: total; " in listing order.
func SummarizeContributors(stats []ContributorStat) ContributorSummary {
	var sb strings.Builder
	for _, s := range stats {
		sb.WriteString(s.Login)
		sb.WriteString(": ")
		sb.WriteString(strconv.Itoa(s.Total))
		sb.WriteString("; ")
	}
	return ContributorSummary{Count: len(stats), Breakdown: sb.String()}
}
