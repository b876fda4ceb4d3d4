package skill

import (
	"context"
	"fmt"

	"bitbucket.org/sotavant/relay-skill/internal/models"
	"bitbucket.org/sotavant/relay-skill/internal/shadow"
)

const (
	welcomeTitle    = "Welcome"
	welcomeSpeech   = "Welcome to the Edison Internet of Things demo. Please tell me if you want the light on or off by saying, turn the light on"
	welcomeReprompt = "Please tell me if you want the light on or off by saying, turn the light on"

	sessionEndTitle  = "Session Ended"
	sessionEndSpeech = "Thank you for using the Edison Internet of Things demo. Have a nice day!"

	relaySetSpeech    = "The light has been turned "
	relaySetReprompt  = "You can ask me if the light is on or off by saying, is the light on or off?"
	relayUnsureSpeech = "I'm not sure if you want the light on or off. Please try again."
	relayUnsureRepr   = "I'm not sure if you want the light on or off. You can tell me if you want the light on or off by saying, turn the light on"

	relayStatusSpeech  = "You turned the light %s. Congratulations!"
	relayUnknownSpeech = "I'm not sure if you want the light on or off, you can say, turn the light  on"
)

// welcome also serves AMAZON.HelpIntent.
func (s *Skill) welcome(_ context.Context, _ *models.Intent, _ models.Session) *models.Response {
	return models.NewResponse(nil,
		models.NewSpeechletResponse(welcomeTitle, welcomeSpeech, models.Text(welcomeReprompt), false))
}

// sessionEnd also serves AMAZON.StopIntent and AMAZON.CancelIntent.
func (s *Skill) sessionEnd(_ context.Context, _ *models.Intent, _ models.Session) *models.Response {
	return models.NewResponse(nil,
		models.NewSpeechletResponse(sessionEndTitle, sessionEndSpeech, nil, true))
}

func (s *Skill) setRelayStatus(ctx context.Context, intent *models.Intent, _ models.Session) *models.Response {
	status, ok := intent.Slot(models.SlotStatus)
	if !ok {
		return models.NewResponse(nil,
			models.NewSpeechletResponse(intent.Name, relayUnsureSpeech, models.Text(relayUnsureRepr), false))
	}

	s.updateShadow(ctx, shadow.DesiredRelayState(status))

	attrs := map[string]string{models.AttrDesiredRelayStatus: status}
	return models.NewResponse(attrs,
		models.NewSpeechletResponse(intent.Name, relaySetSpeech+status, models.Text(relaySetReprompt), false))
}

// getRelayStatus never reprompts: without an answer the session just ends.
func (s *Skill) getRelayStatus(_ context.Context, intent *models.Intent, session models.Session) *models.Response {
	status := session.Attribute(models.AttrDesiredRelayStatus)
	if status == "" {
		return models.NewResponse(nil,
			models.NewSpeechletResponse(intent.Name, relayUnknownSpeech, nil, false))
	}

	return models.NewResponse(nil,
		models.NewSpeechletResponse(intent.Name, fmt.Sprintf(relayStatusSpeech, status), nil, true))
}
