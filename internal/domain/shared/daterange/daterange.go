package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: checkout must be after checkin")

// DateRange represents a half-open interval [checkIn, checkOut). Both bounds
// are calendar dates; time-of-day is truncated to midnight UTC.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: truncate(checkIn), CheckOut: truncate(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	return int(dr.CheckOut.Sub(dr.CheckIn).Hours() / 24)
}

// Overlaps reports whether two half-open intervals intersect. Abutting ranges
// (one's checkout equals the other's checkin) do not overlap.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

// Abuts reports whether the ranges touch without overlapping.
func (dr DateRange) Abuts(other DateRange) bool {
	return dr.CheckOut.Equal(other.CheckIn) || dr.CheckIn.Equal(other.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = truncate(t)
	return !t.Before(dr.CheckIn) && t.Before(dr.CheckOut)
}

// IntersectsWindow reports whether the range touches the closed calendar
// window [start, end]; used for seasonal rule applicability.
func (dr DateRange) IntersectsWindow(start, end time.Time) bool {
	start = truncate(start)
	end = truncate(end)
	return dr.CheckIn.Before(end.AddDate(0, 0, 1)) && start.Before(dr.CheckOut)
}

func truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
