// Package cards defines the Mille Bornes card population and the deck builder.
package cards

import "fmt"

// Kind is one of the four card categories.
type Kind string

const (
	Distance Kind = "distance"
	Hazard   Kind = "hazard"
	Remedy   Kind = "remedy"
	Safety   Kind = "safety"
)

// Card values. Distance cards use their point value as the value string.
const (
	Stop       = "Stop"
	SpeedLimit = "SpeedLimit"
	OutOfGas   = "OutOfGas"
	FlatTire   = "FlatTire"
	Accident   = "Accident"

	Go         = "Go"
	EndOfLimit = "EndOfLimit"
	Gasoline   = "Gasoline"
	SpareTire  = "SpareTire"
	Repairs    = "Repairs"

	RightOfWay    = "RightOfWay"
	FuelTruck     = "FuelTruck"
	PunctureProof = "PunctureProof"
	DrivingAce    = "DrivingAce"
)

// Card is immutable once created; only its location changes during a game.
type Card struct {
	Type   Kind   `json:"type"`
	Value  string `json:"value"`
	Points int    `json:"points,omitempty"`
}

// NewDistance returns a distance card worth points kilometres.
func NewDistance(points int) Card {
	return Card{Type: Distance, Value: fmt.Sprint(points), Points: points}
}

// NewHazard returns a hazard card.
func NewHazard(value string) Card { return Card{Type: Hazard, Value: value} }

// NewRemedy returns a remedy card.
func NewRemedy(value string) Card { return Card{Type: Remedy, Value: value} }

// NewSafety returns a safety card.
func NewSafety(value string) Card { return Card{Type: Safety, Value: value} }

// String renders the card as "type:value".
func (c Card) String() string {
	return string(c.Type) + ":" + c.Value
}
