package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/blackjack/internal/blackjack"
)

// MessageType names a command or event on the wire.
type MessageType string

const (
	// Client -> Server
	TypeCreateRoom   MessageType = "create_room"
	TypeJoinRoom     MessageType = "join_room"
	TypeLeaveRoom    MessageType = "leave_room"
	TypeTakeSeat     MessageType = "take_seat"
	TypeStandUp      MessageType = "stand_up"
	TypePlaceBet     MessageType = "place_bet"
	TypeStartRound   MessageType = "start_round"
	TypeBuyInsurance MessageType = "buy_insurance"
	TypeAction       MessageType = "action"

	// Server -> Client
	TypeState MessageType = "state"
	TypeError MessageType = "error"
	TypeLeft  MessageType = "left"
)

func (t MessageType) String() string {
	return string(t)
}

// Message is the envelope every frame travels in.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps data in an envelope stamped with the current time.
func NewMessage(t MessageType, data any) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", t, err)
		}
		raw = b
	}
	return &Message{Type: t, Data: raw, Timestamp: time.Now()}, nil
}

// Decode unmarshals the payload into v. An empty payload leaves v untouched.
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", m.Type, err)
	}
	return nil
}

// Client -> Server payloads

type CreateRoom struct {
	Name string `json:"name"`
}

type JoinRoom struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// RoomRef is the payload of commands that only name a room: leave_room,
// take_seat, stand_up and start_round.
type RoomRef struct {
	Code string `json:"code"`
}

type PlaceBet struct {
	Code   string `json:"code"`
	Amount int    `json:"amount"`
}

type BuyInsurance struct {
	Code string `json:"code"`
	Buy  bool   `json:"buy"`
}

type Action struct {
	Code string `json:"code"`
	Act  string `json:"act"`
}

// Server -> Client payloads

// State is a room snapshot. You is set only on a member's private copy.
type State = blackjack.View

// Left confirms a leave_room.
type Left struct {
	Code string `json:"code"`
}

// Error reports a rejected command. Code is a stable machine-readable tag.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoomSummary is one entry of the room listing.
type RoomSummary struct {
	Code    string `json:"code"`
	Phase   string `json:"phase"`
	Members int    `json:"members"`
	Seated  int    `json:"seated"`
}
