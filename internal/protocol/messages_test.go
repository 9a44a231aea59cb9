package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeEnvelope(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	frame, err := Encode(EventGameLeft, "ab12", now)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"gameLeft","data":"ab12","timestamp":"2025-03-01T12:00:00Z"}`, string(frame))

	frame, err = Encode(EventGameError, "not your turn", time.Time{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"gameError","data":"not your turn"}`, string(frame))
}

func TestParse(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name  string
		frame string
		ok    bool
	}{
		{"create", `{"type":"createGame","data":"p1"}`, true},
		{"create empty player", `{"type":"createGame","data":""}`, false},
		{"create object payload", `{"type":"createGame","data":{"playerId":"p1"}}`, false},
		{"join", `{"type":"joinGame","data":{"roomId":"ab12","playerId":"p2"}}`, true},
		{"join missing room", `{"type":"joinGame","data":{"playerId":"p2"}}`, false},
		{"start", `{"type":"startGame","data":{"roomId":"ab12","playerId":"p1"}}`, true},
		{"attach", `{"type":"joinGameRoom","data":{"gameId":"ab12","playerId":"p1"}}`, true},
		{"attach without player", `{"type":"joinGameRoom","data":{"gameId":"ab12"}}`, false},
		{"detach without player", `{"type":"leaveGameRoom","data":{"gameId":"ab12"}}`, true},
		{"play", `{"type":"playCard","data":{"gameId":"ab12","cardIndex":3}}`, true},
		{"play fractional index", `{"type":"playCard","data":{"gameId":"ab12","cardIndex":1.5}}`, false},
		{"play string index", `{"type":"playCard","data":{"gameId":"ab12","cardIndex":"3"}}`, false},
		{"play negative index", `{"type":"playCard","data":{"gameId":"ab12","cardIndex":-1}}`, false},
		{"play huge index", `{"type":"playCard","data":{"gameId":"ab12","cardIndex":1e30}}`, false},
		{"rooms", `{"type":"getPlayerRooms","data":"p1"}`, true},
		{"unknown", `{"type":"dealCards","data":{}}`, false},
		{"missing data", `{"type":"createGame"}`, false},
		{"not json", `{"type":`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := v.Parse([]byte(tt.frame))
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, msg.Type)
		})
	}
}

func TestParseUnknownEvent(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	_, err = v.Parse([]byte(`{"type":"gameUpdate","data":{}}`))
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestDecodePayloads(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	msg, err := v.Parse([]byte(`{"type":"playCard","data":{"gameId":"ab12","cardIndex":4}}`))
	require.NoError(t, err)
	var play PlayCardRequest
	require.NoError(t, msg.Decode(&play))
	assert.Equal(t, PlayCardRequest{GameID: "ab12", CardIndex: 4}, play)

	msg, err = v.Parse([]byte(`{"type":"createGame","data":"p1"}`))
	require.NoError(t, err)
	var player string
	require.NoError(t, msg.Decode(&player))
	assert.Equal(t, "p1", player)

	var room RoomRequest
	assert.ErrorIs(t, msg.Decode(&room), ErrInvalidPayload)

	// 1.0 satisfies "integer" but does not unmarshal into an int.
	msg, err = v.Parse([]byte(`{"type":"playCard","data":{"gameId":"ab12","cardIndex":1.0}}`))
	require.NoError(t, err)
	assert.ErrorIs(t, msg.Decode(&play), ErrInvalidPayload)
}

func TestInboundEventsHaveSchemas(t *testing.T) {
	for _, e := range Inbound {
		_, ok := schemaFor[e]
		assert.True(t, ok, e)
	}
	raw, err := json.Marshal(EventPlayCard)
	require.NoError(t, err)
	assert.Equal(t, `"playCard"`, string(raw))
}

func TestErrorEvent(t *testing.T) {
	for _, in := range Inbound {
		want := EventRoomError
		switch in {
		case EventJoinGameRoom, EventLeaveGameRoom, EventPlayCard:
			want = EventGameError
		}
		assert.Equal(t, want, ErrorEvent(in), in)
	}
	assert.Equal(t, EventRoomError, ErrorEvent("bogus"))
}
