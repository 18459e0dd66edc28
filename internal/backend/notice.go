package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a backend identifier. Some endpoints send numbers, others strings.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Attachment is a file linked from a notice.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Notice is a board entry. List responses usually omit Content.
type Notice struct {
	ID            ID           `json:"id"`
	Title         string       `json:"title"`
	CreatedAt     string       `json:"createdAt"`
	Pinned        bool         `json:"is_pin"`
	Content       string       `json:"content,omitempty"`
	HasAttachment bool         `json:"has_attachment"`
	URL           string       `json:"url,omitempty"`
	Attachments   []Attachment `json:"attachments,omitempty"`
}

// UnmarshalJSON accepts created_at when createdAt is missing or empty.
func (n *Notice) UnmarshalJSON(data []byte) error {
	type plain Notice
	var aux struct {
		plain
		CreatedAtSnake string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = Notice(aux.plain)
	if n.CreatedAt == "" {
		n.CreatedAt = aux.CreatedAtSnake
	}
	return nil
}

// decodeList reads a list body: a bare array, or an array under one of keys.
// Unknown shapes decode to an empty list.
func decodeList(body []byte, keys []string) ([]Notice, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var list []Notice
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("decode notice list: %w", err)
		}
		return list, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("decode notice list: %w", err)
	}
	for _, k := range keys {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '[' {
			continue
		}
		var list []Notice
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode notice list %s: %w", strconv.Quote(k), err)
		}
		return list, nil
	}
	return []Notice{}, nil
}
