package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas
var schemaFiles embed.FS

const schemaBase = "https://millebornes.dev/schemas/"

// ErrUnknownEvent is returned for an envelope whose type is not an inbound
// event.
var ErrUnknownEvent = errors.New("unknown event")

// schemaFor maps each inbound event to the schema of its full envelope.
var schemaFor = map[Event]string{
	EventCreateGame:     "player",
	EventGetPlayerRooms: "player",
	EventJoinGame:       "room",
	EventLeaveGame:      "room",
	EventStartGame:      "room",
	EventJoinGameRoom:   "gameroom",
	EventLeaveGameRoom:  "gameroom",
	EventPlayCard:       "playcard",
}

// Validator checks inbound frames against the embedded JSON schemas.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles every embedded schema.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	schemas := make(map[string]*jsonschema.Schema)
	for _, name := range []string{"message", "player", "room", "gameroom", "playcard"} {
		data, err := schemaFiles.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		url := schemaBase + name + ".json"
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		schemas[name] = schema
	}
	return &Validator{schemas: schemas}, nil
}

// Parse validates a raw inbound frame and returns its envelope.
func (v *Validator) Parse(frame []byte) (*Message, error) {
	var doc any
	if err := json.Unmarshal(frame, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := v.schemas["message"].Validate(doc); err != nil {
		return nil, fmt.Errorf("message format validation failed: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}
	name, ok := schemaFor[msg.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, msg.Type)
	}
	if err := v.schemas[name].Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", msg.Type, err)
	}
	return &msg, nil
}
