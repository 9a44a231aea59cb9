package game

import "errors"

// Gameplay errors. All are expected, recoverable conditions reported only to
// the connection that attempted the action.
var (
	ErrGameNotFound     = errors.New("game not found")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrInvalidCardIndex = errors.New("invalid card index")
	ErrCannotPlayCard   = errors.New("cannot play this card")
	ErrNotInGame        = errors.New("you are not part of this game")
	ErrGameFinished     = errors.New("game is finished")
)

var gameplayErrors = []error{
	ErrGameNotFound,
	ErrNotYourTurn,
	ErrInvalidCardIndex,
	ErrCannotPlayCard,
	ErrNotInGame,
	ErrGameFinished,
}

// IsGameplayError reports whether err belongs to the gameplay taxonomy.
func IsGameplayError(err error) bool {
	for _, target := range gameplayErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
