package main

import (
	"context"
	"testing"
	"time"

	"bitbucket.org/sotavant/relay-skill/internal/models"
	"bitbucket.org/sotavant/relay-skill/internal/shadow"
	"bitbucket.org/sotavant/relay-skill/internal/shadow/mock"
	"bitbucket.org/sotavant/relay-skill/internal/skill"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relayRequest(intent string, value string) models.Request {
	return models.Request{
		Version: "1.0",
		Session: models.Session{SessionID: "sess-1"},
		Request: models.RequestBody{
			Type:      models.TypeIntentRequest,
			RequestID: "req-1",
			Intent: &models.Intent{
				Name:  intent,
				Slots: map[string]models.Slot{models.SlotStatus: {Name: models.SlotStatus, Value: value}},
			},
		},
	}
}

func TestHandleWaitsForShadowUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewMockClient(ctrl)

	var updated bool
	client.EXPECT().
		UpdateDesiredState(gomock.Any(), "EdisonDemo", shadow.DesiredState{RelayState: false}).
		DoAndReturn(func(context.Context, string, shadow.DesiredState) ([]byte, error) {
			time.Sleep(20 * time.Millisecond)
			updated = true
			return []byte(`{}`), nil
		})

	h := handler{skill: skill.New(skill.Config{ThingName: "EdisonDemo"}, client, nil)}

	resp, err := h.Handle(context.Background(), relayRequest(models.IntentRelayStatusIs, "off"))
	require.NoError(t, err)
	assert.True(t, updated, "invocation returned before the shadow update settled")
	assert.Equal(t, "off", resp.SessionAttributes[models.AttrDesiredRelayStatus])
}

func TestHandleUnhandledIntent(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := handler{skill: skill.New(skill.Config{ThingName: "EdisonDemo"}, mock.NewMockClient(ctrl), nil)}

	resp, err := h.Handle(context.Background(), relayRequest("TurnOnTheToasterIntent", "on"))
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, skill.ErrUnhandledIntent)
}

func TestHandleSessionEnded(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := handler{skill: skill.New(skill.Config{ThingName: "EdisonDemo"}, mock.NewMockClient(ctrl), nil)}

	resp, err := h.Handle(context.Background(), models.Request{
		Request: models.RequestBody{Type: models.TypeSessionEndedRequest, RequestID: "req-1"},
	})
	require.NoError(t, err)
	assert.Nil(t, resp)
}
