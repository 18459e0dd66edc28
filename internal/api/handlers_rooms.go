package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/noticegest/internal/backend"
	"github.com/dgallion1/noticegest/internal/reservation"
	"github.com/go-chi/chi/v5"
)

// RoomSource is the part of the backend client the room endpoints use.
type RoomSource interface {
	ListRooms(ctx context.Context) ([]backend.Room, error)
	RoomAvailability(ctx context.Context, roomID, date string) (json.RawMessage, error)
	CreateReservation(ctx context.Context, r backend.ReservationRequest) error
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.rooms.ListRooms(r.Context())
	if err != nil {
		s.log.Error("list rooms failed", "error", err)
		jsonError(w, "room backend unavailable", http.StatusBadGateway)
		return
	}
	if rooms == nil {
		rooms = []backend.Room{}
	}
	reservation.SortRooms(rooms)
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

// handleRoomAvailability serves the slot table of a room for ?date=
// (YYYY-MM-DD, today when omitted). Closed dates are answered without
// asking the backend.
func (s *Server) handleRoomAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	day, status, msg := s.roomDay(r.Context(), id, r.URL.Query().Get("date"))
	if status != http.StatusOK {
		jsonError(w, msg, status)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// roomDay loads and evaluates one room day. A non-200 status comes with
// the message to send.
func (s *Server) roomDay(ctx context.Context, id, date string) (reservation.Day, int, string) {
	now := s.now()
	if date == "" {
		date = now.Format(reservation.DateLayout)
	}
	d, err := reservation.ParseDate(date, now.Location())
	if err != nil {
		return reservation.Day{}, http.StatusBadRequest, err.Error()
	}
	if open, reason := reservation.DateOpen(d, now); !open {
		return reservation.Day{
			Date:         d.Format(reservation.DateLayout),
			Reason:       reason,
			SeatsPerSlot: reservation.DefaultSeatsPerSlot,
			Slots:        []reservation.Slot{},
		}, http.StatusOK, ""
	}

	raw, err := s.rooms.RoomAvailability(ctx, id, d.Format(reservation.DateLayout))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return reservation.Day{}, http.StatusNotFound, "room not found"
		}
		s.log.Error("room availability failed", "room", id, "date", date, "error", err)
		return reservation.Day{}, http.StatusBadGateway, "room backend unavailable"
	}
	a, err := reservation.ParseAvailability(raw)
	if err != nil {
		s.log.Error("room availability unreadable", "room", id, "date", date, "error", err)
		return reservation.Day{}, http.StatusBadGateway, "room backend unavailable"
	}
	return reservation.Evaluate(a, d, now), http.StatusOK, ""
}

// handleCreateReservation checks a booking against the live slot table
// and forwards it. It is refused unless reservations are enabled.
func (s *Server) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.ReservationsEnabled {
		jsonError(w, "reservations are disabled", http.StatusForbidden)
		return
	}
	id := chi.URLParam(r, "id")
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req reservation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Date == "" {
		jsonError(w, "date is required", http.StatusBadRequest)
		return
	}

	day, status, msg := s.roomDay(r.Context(), id, req.Date)
	if status != http.StatusOK {
		jsonError(w, msg, status)
		return
	}
	payload, err := req.Payload(id, day)
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, reservation.ErrSlotFull) || errors.Is(err, reservation.ErrSeats) {
			code = http.StatusConflict
		}
		jsonError(w, err.Error(), code)
		return
	}

	log := s.log.With("room", id, "date", day.Date, "times", payload.Times, "seats", payload.Seats)
	if err := s.rooms.CreateReservation(r.Context(), payload); err != nil {
		var rej *backend.RejectedError
		if errors.As(err, &rej) && rej.StatusCode >= 400 && rej.StatusCode < 500 {
			log.Warn("reservation rejected", "status", rej.StatusCode, "message", rej.Message)
			jsonError(w, rej.Message, rej.StatusCode)
			return
		}
		log.Error("reservation failed", "error", err)
		jsonError(w, "room backend unavailable", http.StatusBadGateway)
		return
	}
	log.Info("reservation created")
	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "reserved",
		"room":   id,
		"date":   day.Date,
		"times":  payload.Times,
		"seats":  payload.Seats,
	})
}
