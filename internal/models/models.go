package models

const (
	TypeLaunchRequest       = "LaunchRequest"
	TypeIntentRequest       = "IntentRequest"
	TypeSessionEndedRequest = "SessionEndedRequest"
)

const (
	IntentRelayStatusIs    = "RelayStatusIsIntent"
	IntentWhatsRelayStatus = "WhatsRelayStatusIntent"
	IntentHelp             = "AMAZON.HelpIntent"
	IntentStop             = "AMAZON.StopIntent"
	IntentCancel           = "AMAZON.CancelIntent"
)

const (
	SlotStatus = "Status"

	AttrDesiredRelayStatus = "desiredRelayStatus"
)

const (
	Version = "1.0"

	SpeechPlainText = "PlainText"
	CardSimple      = "Simple"
)

// Request is the event posted by the voice platform for every turn.
type Request struct {
	Version string      `json:"version"`
	Session Session     `json:"session"`
	Request RequestBody `json:"request"`
}

type Session struct {
	New         bool              `json:"new"`
	SessionID   string            `json:"sessionId"`
	Application Application       `json:"application"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	User        User              `json:"user"`
}

type Application struct {
	ApplicationID string `json:"applicationId"`
}

type User struct {
	UserID string `json:"userId"`
}

// RequestBody carries one of LaunchRequest, IntentRequest or
// SessionEndedRequest, distinguished by Type.
type RequestBody struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp,omitempty"`
	Locale    string `json:"locale,omitempty"`

	Intent *Intent `json:"intent,omitempty"`

	// SessionEndedRequest only.
	Reason string        `json:"reason,omitempty"`
	Error  *RequestError `json:"error,omitempty"`
}

type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

type RequestError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Slot returns the value of the named slot. A slot the platform sent
// without a value is reported as absent.
func (i *Intent) Slot(name string) (string, bool) {
	if i == nil {
		return "", false
	}
	s, ok := i.Slots[name]
	if !ok || s.Value == "" {
		return "", false
	}
	return s.Value, true
}

// Attribute returns the named session attribute, or "" when unset.
func (s Session) Attribute(name string) string {
	return s.Attributes[name]
}

// Response is the envelope returned to the voice platform.
type Response struct {
	Version           string            `json:"version"`
	SessionAttributes map[string]string `json:"sessionAttributes"`
	Response          SpeechletResponse `json:"response"`
}

type SpeechletResponse struct {
	OutputSpeech     OutputSpeech `json:"outputSpeech"`
	Card             Card         `json:"card"`
	Reprompt         Reprompt     `json:"reprompt"`
	ShouldEndSession bool         `json:"shouldEndSession"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Card struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Reprompt struct {
	OutputSpeech RepromptSpeech `json:"outputSpeech"`
}

// RepromptSpeech has a nullable text: null tells the platform not to
// reprompt and to close the turn silently.
type RepromptSpeech struct {
	Type string  `json:"type"`
	Text *string `json:"text"`
}
