package models

const cardPrefix = "SessionSpeechlet - "

// NewSpeechletResponse builds the speech, card and reprompt of a reply.
// A nil reprompt is sent as null.
func NewSpeechletResponse(title, output string, reprompt *string, shouldEndSession bool) SpeechletResponse {
	return SpeechletResponse{
		OutputSpeech: OutputSpeech{
			Type: SpeechPlainText,
			Text: output,
		},
		Card: Card{
			Type:    CardSimple,
			Title:   cardPrefix + title,
			Content: cardPrefix + output,
		},
		Reprompt: Reprompt{
			OutputSpeech: RepromptSpeech{
				Type: SpeechPlainText,
				Text: reprompt,
			},
		},
		ShouldEndSession: shouldEndSession,
	}
}

// NewResponse wraps a speechlet response and the attributes the platform
// should hand back on the next turn.
func NewResponse(sessionAttributes map[string]string, speechlet SpeechletResponse) *Response {
	if sessionAttributes == nil {
		sessionAttributes = map[string]string{}
	}
	return &Response{
		Version:           Version,
		SessionAttributes: sessionAttributes,
		Response:          speechlet,
	}
}

// Text is a convenience for optional reprompt texts.
func Text(s string) *string {
	return &s
}
