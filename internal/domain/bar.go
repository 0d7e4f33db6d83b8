package domain

import "time"

// Bar is one end-of-day OHLCV record for a single instrument.
type Bar struct {
	Date   time.Time // trading date, truncated to day, UTC
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Instrument is a symbol together with its bar series, sorted ascending by
// date with no duplicate dates.
type Instrument struct {
	Symbol string
	Bars   []Bar
}

// DateRange returns the first and last trading dates of the series.
// Both zero when the series is empty.
func (in *Instrument) DateRange() (time.Time, time.Time) {
	if len(in.Bars) == 0 {
		return time.Time{}, time.Time{}
	}
	return in.Bars[0].Date, in.Bars[len(in.Bars)-1].Date
}
