package subscription

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Subscribe frames are a JSON array:
//
//	[{"ticket":<random id>},
//	 {"type":<channel>,"codes":[<market>...],"isOnlyRealtime":true},
//	 {"format":"SIMPLE"}]          // private channels only
//
// The ticket is required by the protocol but carries no meaning for the
// client beyond uniqueness.

type ticketElement struct {
	Ticket string `json:"ticket"`
}

type typeElement struct {
	Type           Channel  `json:"type"`
	Codes          []string `json:"codes"`
	IsOnlyRealtime bool     `json:"isOnlyRealtime"`
}

type formatElement struct {
	Format string `json:"format"`
}

// BuildFrame builds one consolidated subscribe frame for a channel type.
func BuildFrame(ch Channel, codes []string) ([]byte, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("unknown channel type %q", ch)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no market codes for channel %q", ch)
	}

	elements := []interface{}{
		ticketElement{Ticket: uuid.NewString()},
		typeElement{Type: ch, Codes: codes, IsOnlyRealtime: true},
	}
	if ch.Private() {
		elements = append(elements, formatElement{Format: "SIMPLE"})
	}

	data, err := json.Marshal(elements)
	if err != nil {
		return nil, fmt.Errorf("marshal subscribe frame: %w", err)
	}
	return data, nil
}
