// Package save implements JSON serialization and deserialization of player records.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nathoo/parley/engine/state"
	"github.com/nathoo/parley/types"
)

// Version is the current save format version.
const Version = 1

// ErrVersion is returned when loading a save written by a newer format.
var ErrVersion = errors.New("unsupported save version")

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version int          `json:"version"`
	SavedAt time.Time    `json:"saved_at"`
	Player  state.Record `json:"player"`
}

// Save serializes a player to JSON bytes.
func Save(p *state.Player, now time.Time) ([]byte, error) {
	data := SaveData{
		Version: Version,
		SavedAt: now.UTC(),
		Player:  p.Record(),
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Version > Version {
		return nil, fmt.Errorf("version %d: %w", sd.Version, ErrVersion)
	}
	// Ensure collections are never nil after load.
	if sd.Player.Quests == nil {
		sd.Player.Quests = map[string]string{}
	}
	for _, s := range sd.Player.Slots {
		if s.Items == nil {
			s.Items = []*types.Item{}
		}
	}
	return &sd, nil
}

// Restore rebuilds the in-memory player from loaded save data.
func (sd *SaveData) Restore() *state.Player {
	return state.FromRecord(sd.Player)
}
