package shadow

//go:generate mockgen -destination=mock/mock_shadow.go -package=mock bitbucket.org/sotavant/relay-skill/internal/shadow Client

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrRejected is returned when the shadow service refuses an update.
var ErrRejected = errors.New("shadow update rejected")

// Client updates the desired state of a device shadow.
type Client interface {
	// UpdateDesiredState returns the acknowledgement document sent back by
	// the shadow service.
	UpdateDesiredState(ctx context.Context, thingName string, desired DesiredState) ([]byte, error)
}

type DesiredState struct {
	RelayState bool `json:"RelayState"`
}

type State struct {
	Desired DesiredState `json:"desired"`
}

// Document is the body of a shadow update.
type Document struct {
	State       State  `json:"state"`
	ClientToken string `json:"clientToken,omitempty"`
}

func NewDocument(desired DesiredState) Document {
	return Document{State: State{Desired: desired}}
}

func (d Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// DesiredRelayState maps a spoken status to the relay position. Only an
// exact "on" closes the relay.
func DesiredRelayState(status string) DesiredState {
	return DesiredState{RelayState: status == "on"}
}
