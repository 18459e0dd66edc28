package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const placePath = "place/"

// Room is a bookable space.
type Room struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ReservationRequest is the body the backend expects for a booking.
type ReservationRequest struct {
	StudentNumber string `json:"student_number"`
	PhoneNumber   string `json:"phone_number"`
	Password      string `json:"password"`
	PlaceID       string `json:"place_id"`
	Date          string `json:"date"`
	Times         []int  `json:"times"`
	Seats         int    `json:"res_count"`
}

// ListRooms returns the rooms in backend order.
func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	body, status, err := c.get(ctx, c.baseURL+placePath+"places", jsonAccept, 1<<20)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	if err := statusError(status, body); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	var out struct {
		Places []Room `json:"places"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}
	return out.Places, nil
}

// RoomAvailability returns the raw availability document of a room for
// date (YYYY-MM-DD). Its shape varies, so decoding is left to the caller.
func (c *Client) RoomAvailability(ctx context.Context, roomID, date string) (json.RawMessage, error) {
	u := c.baseURL + placePath + "places/" + url.PathEscape(roomID) + "?date=" + url.QueryEscape(date)
	body, status, err := c.get(ctx, u, jsonAccept, 1<<20)
	if err != nil {
		return nil, fmt.Errorf("room %s availability: %w", roomID, err)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	if err := statusError(status, body); err != nil {
		return nil, fmt.Errorf("room %s availability: %w", roomID, err)
	}
	return body, nil
}

// CreateReservation submits a booking. A rejection carries the backend's
// message when it sends one.
func (c *Client) CreateReservation(ctx context.Context, r ReservationRequest) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode reservation: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+placePath+"reservations", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", jsonAccept)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("create reservation: %w", statusError(resp.StatusCode, body))
	}
	var msg struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &msg) == nil && msg.Message != "" {
		return &RejectedError{StatusCode: resp.StatusCode, Message: msg.Message}
	}
	return &RejectedError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
}

// RejectedError is a booking the backend refused.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("reservation rejected (status %d): %s", e.StatusCode, e.Message)
}
