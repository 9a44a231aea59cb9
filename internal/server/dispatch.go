package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lox/millebornes/internal/game"
	"github.com/lox/millebornes/internal/lobby"
	"github.com/lox/millebornes/internal/protocol"
)

// requestTimeout bounds how long one inbound event may wait for its room.
const requestTimeout = 10 * time.Second

const internalErrorMessage = "internal server error"

// dispatch handles one inbound frame. Frames from a connection are handled
// in the order they arrive.
func (s *Server) dispatch(c *Connection, frame []byte) {
	msg, err := s.validator.Parse(frame)
	if err != nil {
		var env struct {
			Type protocol.Event `json:"type"`
		}
		_ = json.Unmarshal(frame, &env)
		c.logger.Debug().Err(err).Str("event", string(env.Type)).Msg("Rejected invalid message")
		s.reply(c, protocol.ErrorEvent(env.Type), fmt.Sprintf("invalid message: %v", err))
		return
	}

	c.logger.Debug().Str("event", string(msg.Type)).Msg("Received message")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := s.route(ctx, c, msg); err != nil {
		s.reject(c, msg.Type, err)
	}
}

func (s *Server) route(ctx context.Context, c *Connection, msg *protocol.Message) error {
	switch msg.Type {
	case protocol.EventCreateGame:
		var playerID string
		if err := msg.Decode(&playerID); err != nil {
			return err
		}
		_, err := s.dir.CreateRoom(ctx, c.ID(), playerID)
		return err

	case protocol.EventJoinGame:
		var req protocol.RoomRequest
		if err := msg.Decode(&req); err != nil {
			return err
		}
		_, err := s.dir.JoinRoom(ctx, c.ID(), req.RoomID, req.PlayerID)
		return err

	case protocol.EventLeaveGame:
		var req protocol.RoomRequest
		if err := msg.Decode(&req); err != nil {
			return err
		}
		return s.dir.LeaveRoom(ctx, c.ID(), req.RoomID, req.PlayerID)

	case protocol.EventStartGame:
		var req protocol.RoomRequest
		if err := msg.Decode(&req); err != nil {
			return err
		}
		return s.dir.StartGame(ctx, c.ID(), req.RoomID, req.PlayerID)

	case protocol.EventJoinGameRoom:
		var req protocol.GameRoomRequest
		if err := msg.Decode(&req); err != nil {
			return err
		}
		return s.dir.AttachGame(ctx, c.ID(), req.GameID, req.PlayerID)

	case protocol.EventLeaveGameRoom:
		var req protocol.GameRoomRequest
		if err := msg.Decode(&req); err != nil {
			return err
		}
		return s.dir.DetachGame(ctx, c.ID(), req.GameID)

	case protocol.EventPlayCard:
		var req protocol.PlayCardRequest
		if err := msg.Decode(&req); err != nil {
			return err
		}
		return s.dir.PlayCard(ctx, c.ID(), req.GameID, req.CardIndex)

	case protocol.EventGetPlayerRooms:
		var playerID string
		if err := msg.Decode(&playerID); err != nil {
			return err
		}
		rooms, err := s.dir.PlayerRooms(ctx, playerID)
		if err != nil {
			return err
		}
		s.hub.Send([]string{c.ID()}, protocol.EventPlayerRooms, rooms)
		return nil

	default:
		return fmt.Errorf("%w: %s", protocol.ErrUnknownEvent, msg.Type)
	}
}

// reject reports a failed action to the connection that sent it. Lobby and
// gameplay errors carry their message; anything else is logged and replaced
// with a generic notice.
func (s *Server) reject(c *Connection, in protocol.Event, err error) {
	switch {
	case errors.Is(err, protocol.ErrInvalidPayload):
		c.logger.Debug().Err(err).Str("event", string(in)).Msg("Rejected invalid message")
		s.reply(c, protocol.ErrorEvent(in), fmt.Sprintf("invalid message: %v", err))
	case lobby.IsLobbyError(err):
		c.logger.Debug().Err(err).Str("event", string(in)).Msg("Lobby action rejected")
		s.reply(c, protocol.EventRoomError, err.Error())
	case game.IsGameplayError(err):
		c.logger.Debug().Err(err).Str("event", string(in)).Msg("Game action rejected")
		s.reply(c, protocol.EventGameError, err.Error())
	default:
		c.logger.Error().Err(err).Str("event", string(in)).Msg("Failed to handle message")
		s.reply(c, protocol.ErrorEvent(in), internalErrorMessage)
	}
}

func (s *Server) reply(c *Connection, event protocol.Event, message string) {
	s.hub.Send([]string{c.ID()}, event, message)
}
