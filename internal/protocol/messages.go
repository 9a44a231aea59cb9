// Package protocol defines the realtime event surface: the JSON envelope
// every websocket frame carries, the event names in both directions and the
// payloads of inbound events.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPayload is returned when a schema-valid payload does not fit the
// request type, such as 1.0 for an integer field.
var ErrInvalidPayload = errors.New("invalid payload")

// Event names a realtime message.
type Event string

const (
	// Client -> Server
	EventCreateGame     Event = "createGame"
	EventJoinGame       Event = "joinGame"
	EventLeaveGame      Event = "leaveGame"
	EventStartGame      Event = "startGame"
	EventJoinGameRoom   Event = "joinGameRoom"
	EventLeaveGameRoom  Event = "leaveGameRoom"
	EventPlayCard       Event = "playCard"
	EventGetPlayerRooms Event = "getPlayerRooms"

	// Server -> Client
	EventGameCreated  Event = "gameCreated"
	EventPlayerJoined Event = "playerJoined"
	EventPlayerLeft   Event = "playerLeft"
	EventGameLeft     Event = "gameLeft"
	EventRoomError    Event = "roomError"
	EventGameStarted  Event = "gameStarted"
	EventGameUpdate   Event = "gameUpdate"
	EventGameError    Event = "gameError"
	EventPlayerRooms  Event = "playerRooms"
)

// Inbound lists the events a client may send.
var Inbound = []Event{
	EventCreateGame,
	EventJoinGame,
	EventLeaveGame,
	EventStartGame,
	EventJoinGameRoom,
	EventLeaveGameRoom,
	EventPlayCard,
	EventGetPlayerRooms,
}

// ErrorEvent returns the event a rejection of in is reported with: gameError
// for actions on a running game, roomError for everything else.
func ErrorEvent(in Event) Event {
	switch in {
	case EventJoinGameRoom, EventLeaveGameRoom, EventPlayCard:
		return EventGameError
	default:
		return EventRoomError
	}
}

// Message is the envelope of every websocket frame.
type Message struct {
	Type      Event           `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp,omitzero"`
}

// NewMessage wraps data in an envelope stamped with now.
func NewMessage(event Event, data any, now time.Time) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event, err)
	}
	return &Message{Type: event, Data: raw, Timestamp: now}, nil
}

// Encode renders an envelope for the wire.
func Encode(event Event, data any, now time.Time) ([]byte, error) {
	msg, err := NewMessage(event, data, now)
	if err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}

// Client -> Server payloads. createGame and getPlayerRooms carry a bare
// player id string.

type RoomRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type GameRoomRequest struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId,omitempty"`
}

type PlayCardRequest struct {
	GameID    string `json:"gameId"`
	CardIndex int    `json:"cardIndex"`
}

// Decode unmarshals the payload of msg into v.
func (m *Message) Decode(v any) error {
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrInvalidPayload, m.Type, err)
	}
	return nil
}
