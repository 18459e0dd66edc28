// Package reservation holds the room booking rules the kiosk applies
// before anything is sent to the backend.
package reservation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/dgallion1/noticegest/internal/backend"
)

const (
	// MaxSlots is how many hourly slots one booking may span.
	MaxSlots = 3
	// DefaultSeatsPerSlot applies when the backend states no capacity.
	DefaultSeatsPerSlot = 4
	// DateLayout is the calendar date format used on the wire.
	DateLayout = "2006-01-02"
)

// TimeSlots are the bookable slot start times, one hour each.
var TimeSlots = []string{
	"09:00", "10:00", "11:00", "12:00", "13:00",
	"14:00", "15:00", "16:00", "17:00", "18:00",
}

// capacityKeys are tried in order; the first one present decides.
var capacityKeys = []string{"maxCount", "max_count", "max-count", "seatsPerSlot", "capacity"}

// Remaining is the number of free seats, never below zero.
func Remaining(count, capacity int) int {
	return max(capacity-count, 0)
}

// FullByCount reports whether no seat is left.
func FullByCount(count, capacity int) bool {
	return Remaining(count, capacity) == 0
}

// Availability is what the backend reports for one room and day. In count
// mode Counts holds booked seats per slot; otherwise a count of 1 marks
// the slot as taken.
type Availability struct {
	Counts       []int
	CountMode    bool
	SeatsPerSlot int
}

// ParseAvailability decodes the backend document. "count" as an array
// switches to count mode; an object keyed by slot index, or no count at
// all, is read as taken/free flags.
func ParseAvailability(raw []byte) (Availability, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Availability{}, fmt.Errorf("decode availability: %w", err)
	}
	a := Availability{
		Counts:       make([]int, len(TimeSlots)),
		SeatsPerSlot: capacity(doc),
	}

	var list []any
	if err := json.Unmarshal(doc["count"], &list); err == nil && list != nil {
		a.CountMode = true
		for i := range min(len(list), len(a.Counts)) {
			a.Counts[i] = number(list[i])
		}
		return a, nil
	}
	var flags map[string]any
	if err := json.Unmarshal(doc["count"], &flags); err == nil {
		for i := range a.Counts {
			a.Counts[i] = number(flags[strconv.Itoa(i)])
		}
	}
	return a, nil
}

func capacity(doc map[string]json.RawMessage) int {
	for _, k := range capacityKeys {
		v, ok := doc[k]
		if !ok || string(v) == "null" {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err == nil && int(f) > 0 {
			return int(f)
		}
		return DefaultSeatsPerSlot
	}
	return DefaultSeatsPerSlot
}

// number converts a decoded JSON value to an int. Anything but a number
// counts as zero.
func number(v any) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}

func (a Availability) count(i int) int {
	if i < 0 || i >= len(a.Counts) {
		return 0
	}
	return a.Counts[i]
}

// Full reports whether slot i cannot take another booking.
func (a Availability) Full(i int) bool {
	if a.CountMode {
		return FullByCount(a.count(i), a.SeatsPerSlot)
	}
	return a.count(i) == 1
}

// SortRooms orders rooms by the last number in their name. Rooms without
// a number sort as 0; ties keep backend order.
func SortRooms(rooms []backend.Room) {
	slices.SortStableFunc(rooms, func(a, b backend.Room) int {
		return roomNumber(a.Name) - roomNumber(b.Name)
	})
}

var digitsRe = regexp.MustCompile(`\d+`)

func roomNumber(name string) int {
	all := digitsRe.FindAllString(name, -1)
	if len(all) == 0 {
		return 0
	}
	n, err := strconv.Atoi(all[len(all)-1])
	if err != nil {
		return 0
	}
	return n
}

// ParseDate reads a YYYY-MM-DD date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}
