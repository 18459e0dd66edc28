package reservation

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Slot states.
const (
	StatusAvailable = "available"
	StatusFull      = "full"
	StatusPast      = "past"
)

// Reasons a whole day is closed.
const (
	ClosedWeekend  = "weekend"
	ClosedPastDate = "past_date"
)

var (
	ErrDateClosed   = errors.New("date is not open for booking")
	ErrNoSlots      = errors.New("no time slot selected")
	ErrTooManySlots = fmt.Errorf("at most %d time slots can be selected", MaxSlots)
	ErrUnknownSlot  = errors.New("unknown time slot")
	ErrSlotFull     = errors.New("time slot is full")
	ErrSlotPast     = errors.New("time slot has already started")
	ErrSeats        = errors.New("seat count out of range")
)

// Slot is one hourly slot as the kiosk shows it. Remaining is only
// meaningful in count mode.
type Slot struct {
	Time      string `json:"time"`
	Count     int    `json:"count"`
	Remaining int    `json:"remaining"`
	Status    string `json:"status"`
}

// Day is a room's bookable state for one date.
type Day struct {
	Date         string `json:"date"`
	Bookable     bool   `json:"bookable"`
	Reason       string `json:"reason,omitempty"`
	CountMode    bool   `json:"countMode"`
	SeatsPerSlot int    `json:"seatsPerSlot"`
	Slots        []Slot `json:"slots"`
}

// DateOpen reports whether date can be booked at all: weekends and days
// before today are closed.
func DateOpen(date, now time.Time) (bool, string) {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false, ClosedWeekend
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return false, ClosedPastDate
	}
	return true, ""
}

// IsPastTime reports whether slot (HH:MM) on date has already started.
// Only today's slots can be past.
func IsPastTime(date time.Time, slot string, now time.Time) bool {
	if !sameDay(date, now) {
		return false
	}
	hh, mm, ok := strings.Cut(slot, ":")
	if !ok {
		return false
	}
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil {
		return false
	}
	y, mo, d := now.Date()
	start := time.Date(y, mo, d, h, m, 0, 0, now.Location())
	return !start.After(now)
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Evaluate builds the day view of a for date as seen at now.
func Evaluate(a Availability, date, now time.Time) Day {
	open, reason := DateOpen(date, now)
	day := Day{
		Date:         date.Format(DateLayout),
		Bookable:     open,
		Reason:       reason,
		CountMode:    a.CountMode,
		SeatsPerSlot: a.SeatsPerSlot,
		Slots:        make([]Slot, len(TimeSlots)),
	}
	for i, t := range TimeSlots {
		s := Slot{Time: t, Count: a.count(i), Status: StatusAvailable}
		if a.CountMode {
			s.Remaining = Remaining(s.Count, a.SeatsPerSlot)
		}
		switch {
		case IsPastTime(date, t, now):
			s.Status = StatusPast
		case a.Full(i):
			s.Status = StatusFull
		}
		day.Slots[i] = s
	}
	return day
}

func (d Day) slot(t string) (Slot, bool) {
	i := slices.Index(TimeSlots, t)
	if i < 0 || i >= len(d.Slots) {
		return Slot{}, false
	}
	return d.Slots[i], true
}

// MinAvailableSeats is the smallest number of free seats across the
// selected slots, starting from SeatsPerSlot. Unknown slots are ignored,
// as is everything outside count mode.
func (d Day) MinAvailableSeats(times []string) int {
	least := d.SeatsPerSlot
	for _, t := range times {
		s, ok := d.slot(t)
		if !ok || !d.CountMode {
			continue
		}
		least = min(least, s.Remaining)
	}
	return least
}

// MaxSeats is the largest seat count a booking of times may ask for.
func (d Day) MaxSeats(times []string) int {
	return max(0, min(d.SeatsPerSlot, d.MinAvailableSeats(times)))
}

// CheckSelection verifies that times can be booked together on d.
// Duplicates count once.
func (d Day) CheckSelection(times []string) error {
	if !d.Bookable {
		return fmt.Errorf("%w: %s", ErrDateClosed, d.Reason)
	}
	uniq := dedupe(times)
	if len(uniq) == 0 {
		return ErrNoSlots
	}
	if len(uniq) > MaxSlots {
		return ErrTooManySlots
	}
	for _, t := range uniq {
		s, ok := d.slot(t)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSlot, t)
		}
		switch s.Status {
		case StatusPast:
			return fmt.Errorf("%w: %s", ErrSlotPast, t)
		case StatusFull:
			return fmt.Errorf("%w: %s", ErrSlotFull, t)
		}
	}
	return nil
}

func dedupe(times []string) []string {
	var out []string
	for _, t := range times {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
