package booking

import (
	"fmt"
	"time"

	"rentalhub/internal/domain"
)

const busyIntervalTitle = "Booked"

// BusyInterval is one day's occupied portion of a booking, the unit calendar
// UIs render. It deliberately carries no price or customer data.
type BusyInterval struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Busy  bool      `json:"busy"`
}

// ProjectBusyIntervals expands bookings into per-day busy intervals. A
// multi-day booking occupies every calendar day it touches: the first day
// from its start time to 23:59:59.999, full days in between, and the last
// day from midnight to its end time. Output order follows input order, days
// ascending within a booking.
func ProjectBusyIntervals(bookings []domain.Booking) []BusyInterval {
	out := make([]BusyInterval, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, expandBooking(b)...)
	}
	return out
}

func expandBooking(b domain.Booking) []BusyInterval {
	if sameDay(b.StartDate, b.EndDate) {
		return []BusyInterval{{
			ID:    fmt.Sprintf("%d-0", b.ID),
			Title: busyIntervalTitle,
			Start: b.StartDate,
			End:   b.EndDate,
			Busy:  true,
		}}
	}

	var out []BusyInterval
	lastDay := startOfDay(b.EndDate)
	day := startOfDay(b.StartDate)
	for idx := 0; !day.After(lastDay); idx++ {
		iv := BusyInterval{
			ID:    fmt.Sprintf("%d-%d", b.ID, idx),
			Title: busyIntervalTitle,
			Start: day,
			End:   endOfDay(day),
			Busy:  true,
		}
		if idx == 0 {
			iv.Start = b.StartDate
		}
		if day.Equal(lastDay) {
			iv.End = b.EndDate
		}
		out = append(out, iv)
		day = day.AddDate(0, 0, 1)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
