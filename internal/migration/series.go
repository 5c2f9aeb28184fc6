package migration

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/Kuber-code/Arrakis-Assessment/internal/aggregate"
	"github.com/Kuber-code/Arrakis-Assessment/internal/dex"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// Series is the ordered reserve history of the source pair.
type Series struct {
	Points        []model.SyncPoint
	QuoteIsToken1 bool
}

// Quote returns the scaled quote-token reserve of point i.
func (s Series) Quote(i int) float64 {
	if s.QuoteIsToken1 {
		return s.Points[i].Reserve1
	}
	return s.Points[i].Reserve0
}

func (s Series) quoteRaw(i int) *big.Int {
	raw := s.Points[i].Reserve0Raw
	if s.QuoteIsToken1 {
		raw = s.Points[i].Reserve1Raw
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return big.NewInt(0)
	}
	return v
}

// AggregatePoints exposes the quote reserve as a time series.
func (s Series) AggregatePoints() []aggregate.Point {
	out := make([]aggregate.Point, len(s.Points))
	for i, p := range s.Points {
		out[i] = aggregate.Point{BlockNumber: p.BlockNumber, Timestamp: p.Timestamp, Value: s.Quote(i)}
	}
	return out
}

// BuildSeries converts decoded Sync events into reserve snapshots ordered by block and log index.
// Events other than Sync are ignored. Every block must have a timestamp.
func BuildSeries(events []model.TypedEvent, meta model.PairMetadata, quoteIsToken1 bool, timestamps map[uint64]uint64) (Series, error) {
	points := make([]model.SyncPoint, 0, len(events))
	for _, event := range events {
		sync, ok := event.Decoded.(model.SyncEventData)
		if !ok {
			continue
		}
		ts, ok := timestamps[event.BlockNumber]
		if !ok {
			return Series{}, fmt.Errorf("missing timestamp for block %d", event.BlockNumber)
		}
		r0, ok0 := new(big.Int).SetString(sync.Reserve0, 10)
		r1, ok1 := new(big.Int).SetString(sync.Reserve1, 10)
		if !ok0 || !ok1 {
			return Series{}, fmt.Errorf("invalid reserves at block %d log %d", event.BlockNumber, event.LogIndex)
		}
		points = append(points, model.SyncPoint{
			BlockNumber: event.BlockNumber,
			TxHash:      event.TxHash,
			LogIndex:    event.LogIndex,
			Timestamp:   ts,
			Reserve0Raw: sync.Reserve0,
			Reserve1Raw: sync.Reserve1,
			Reserve0:    dex.ScaleAmount(r0, meta.Token0.Decimals),
			Reserve1:    dex.ScaleAmount(r1, meta.Token1.Decimals),
		})
	}
	sortPoints(points)
	return Series{Points: points, QuoteIsToken1: quoteIsToken1}, nil
}

// Drops lists every decrease of the quote reserve between consecutive Sync events.
func (s Series) Drops() []model.SyncDrop {
	drops := make([]model.SyncDrop, 0)
	for i := 1; i < len(s.Points); i++ {
		prev, cur := s.Quote(i-1), s.Quote(i)
		delta := cur - prev
		if delta >= 0 {
			continue
		}
		fraction := 0.0
		if prev > 0 {
			fraction = -delta / prev
		}
		p := s.Points[i]
		drops = append(drops, model.SyncDrop{
			BlockNumber:  p.BlockNumber,
			TxHash:       p.TxHash,
			LogIndex:     p.LogIndex,
			DatetimeUTC:  model.FormatUTC(p.Timestamp),
			Delta:        delta,
			DropFraction: fraction,
		})
	}
	return drops
}

// LargestDrop returns the most negative quote-reserve jump, or nil without decreases.
func (s Series) LargestDrop() *model.SyncDrop {
	var best *model.SyncDrop
	for _, drop := range s.Drops() {
		if best == nil || drop.Delta < best.Delta {
			d := drop
			best = &d
		}
	}
	return best
}

func sortPoints(points []model.SyncPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].BlockNumber != points[j].BlockNumber {
			return points[i].BlockNumber < points[j].BlockNumber
		}
		return points[i].LogIndex < points[j].LogIndex
	})
}

func sortUint64(values []uint64) {
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
}
