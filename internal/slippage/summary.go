package slippage

import (
	"math"
	"sort"
	"strings"

	"github.com/Kuber-code/Arrakis-Assessment/internal/aggregate"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

type groupKey struct {
	venue     string
	direction string
	usd       float64
}

// Summarize groups observations per venue period, canonical direction and size and reports the
// median, 90th percentile and count of finite slippage values.
func Summarize(byVenue map[string][]model.SlippageObservation) []model.SlippageSummary {
	groups := make(map[groupKey][]float64)
	for venue, observations := range byVenue {
		for _, obs := range observations {
			if math.IsNaN(obs.SlippagePct) || math.IsInf(obs.SlippagePct, 0) {
				continue
			}
			key := groupKey{venue: venue, direction: model.CanonicalDirection(obs.Direction), usd: obs.USDNotionalIn}
			groups[key] = append(groups[key], obs.SlippagePct)
		}
	}

	out := make([]model.SlippageSummary, 0, len(groups))
	for key, values := range groups {
		out = append(out, model.SlippageSummary{
			VenuePeriod:   key.venue,
			Direction:     key.direction,
			USDNotionalIn: key.usd,
			Median:        aggregate.Median(values),
			P90:           aggregate.Quantile(values, 0.9),
			N:             len(values),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Direction != b.Direction {
			return a.Direction < b.Direction
		}
		if a.USDNotionalIn != b.USDNotionalIn {
			return a.USDNotionalIn < b.USDNotionalIn
		}
		return a.VenuePeriod < b.VenuePeriod
	})
	return out
}

// Compare pairs pre and post summaries by direction and size. Rows missing a side keep NaN
// for the missing values and the changes.
func Compare(summaries []model.SlippageSummary) []model.SlippageComparison {
	type key struct {
		direction string
		usd       float64
	}
	rows := make(map[key]*model.SlippageComparison)
	order := make([]key, 0)
	for _, s := range summaries {
		k := key{direction: model.CanonicalDirection(s.Direction), usd: s.USDNotionalIn}
		row, ok := rows[k]
		if !ok {
			row = &model.SlippageComparison{
				Direction:     k.direction,
				USDNotionalIn: k.usd,
				PreMedian:     math.NaN(),
				PostMedian:    math.NaN(),
				PreP90:        math.NaN(),
				PostP90:       math.NaN(),
			}
			rows[k] = row
			order = append(order, k)
		}
		switch s.VenuePeriod {
		case model.VenueUniV2Pre:
			row.PreMedian, row.PreP90, row.PreN = s.Median, s.P90, s.N
		case model.VenueUniV4Post:
			row.PostMedian, row.PostP90, row.PostN = s.Median, s.P90, s.N
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].direction != order[j].direction {
			return order[i].direction < order[j].direction
		}
		return order[i].usd < order[j].usd
	})
	out := make([]model.SlippageComparison, 0, len(order))
	for _, k := range order {
		row := rows[k]
		row.MedianChangePct = RelativeChange(row.PreMedian, row.PostMedian)
		row.P90ChangePct = RelativeChange(row.PreP90, row.PostP90)
		out = append(out, *row)
	}
	return out
}

// Directions returns the distinct canonical directions of the observations, sorted.
func Directions(observations ...[]model.SlippageObservation) []string {
	seen := make(map[string]struct{})
	for _, list := range observations {
		for _, obs := range list {
			seen[model.CanonicalDirection(obs.Direction)] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// FigureName is the file name of the per-direction slippage chart.
func FigureName(prefix, direction string) string {
	return prefix + strings.ReplaceAll(direction, "->", "_to_") + ".png"
}
