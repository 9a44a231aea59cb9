package lobby

import "errors"

// Lobby errors are reported to the requesting connection as roomError.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrAlreadyJoined      = errors.New("you are already in this room")
	ErrRoomFull           = errors.New("room is full")
	ErrNotEnoughPlayers   = errors.New("not enough players to start")
	ErrNotRoomCreator     = errors.New("only the room creator can start the game")
	ErrNotInRoom          = errors.New("you are not in this room")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrPersistFailed      = errors.New("failed to save game")
)

var lobbyErrors = []error{
	ErrRoomNotFound,
	ErrAlreadyJoined,
	ErrRoomFull,
	ErrNotEnoughPlayers,
	ErrNotRoomCreator,
	ErrNotInRoom,
	ErrGameAlreadyStarted,
	ErrPersistFailed,
}

// IsLobbyError reports whether err belongs to the lobby taxonomy.
func IsLobbyError(err error) bool {
	for _, target := range lobbyErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
