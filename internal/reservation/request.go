package reservation

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/noticegest/internal/backend"
)

var (
	studentNumberRe = regexp.MustCompile(`^\d{8}$`)
	phoneRe         = regexp.MustCompile(`^\d{11}$`)
	passwordRe      = regexp.MustCompile(`^\d{4}$`)
)

// Request is a booking as entered on the kiosk keypad.
type Request struct {
	StudentNumber string   `json:"student_number"`
	Phone         string   `json:"phone"`
	Password      string   `json:"password"`
	Date          string   `json:"date"`
	Times         []string `json:"times"`
	Seats         int      `json:"seats"`
}

// Validate checks the form fields. Seats defaults to 1.
func (r *Request) Validate() error {
	if r.Seats == 0 {
		r.Seats = 1
	}
	var errs []error
	if !studentNumberRe.MatchString(r.StudentNumber) {
		errs = append(errs, errors.New("student_number must be 8 digits"))
	}
	if !phoneRe.MatchString(r.Phone) {
		errs = append(errs, errors.New("phone must be 11 digits without hyphens"))
	}
	if !passwordRe.MatchString(r.Password) {
		errs = append(errs, errors.New("password must be 4 digits"))
	}
	if len(r.Times) == 0 {
		errs = append(errs, ErrNoSlots)
	}
	return errors.Join(errs...)
}

// Payload checks the request against d and builds the backend body.
func (r Request) Payload(roomID string, d Day) (backend.ReservationRequest, error) {
	if err := d.CheckSelection(r.Times); err != nil {
		return backend.ReservationRequest{}, err
	}
	if most := d.MaxSeats(r.Times); r.Seats < 1 || r.Seats > most {
		return backend.ReservationRequest{}, fmt.Errorf("%w: 1 to %d seats available", ErrSeats, most)
	}
	return backend.ReservationRequest{
		StudentNumber: r.StudentNumber,
		PhoneNumber:   FormatPhone(r.Phone),
		Password:      r.Password,
		PlaceID:       roomID,
		Date:          d.Date + "T00:00:00",
		Times:         hours(r.Times),
		Seats:         r.Seats,
	}, nil
}

// FormatPhone inserts hyphens into 10 or 11 digit numbers.
func FormatPhone(raw string) string {
	var b strings.Builder
	for _, c := range raw {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	d := b.String()
	switch len(d) {
	case 11:
		return d[:3] + "-" + d[3:7] + "-" + d[7:]
	case 10:
		return d[:3] + "-" + d[3:6] + "-" + d[6:]
	}
	return raw
}

// hours returns the distinct slot start hours in ascending order.
func hours(times []string) []int {
	var out []int
	for _, t := range times {
		h, err := strconv.Atoi(t[:min(2, len(t))])
		if err != nil || slices.Contains(out, h) {
			continue
		}
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}
