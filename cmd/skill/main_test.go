package main

import (
	"bitbucket.org/sotavant/relay-skill/internal/shadow"
	"bitbucket.org/sotavant/relay-skill/internal/shadow/mock"
	"bitbucket.org/sotavant/relay-skill/internal/skill"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"github.com/go-resty/resty/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const (
	launchBody = `{
		"version": "1.0",
		"session": {"new": true, "sessionId": "sess-1", "application": {"applicationId": "amzn1.ask.skill.1"}},
		"request": {"type": "LaunchRequest", "requestId": "req-1"}
	}`

	relayOnBody = `{
		"version": "1.0",
		"session": {"new": false, "sessionId": "sess-1", "application": {"applicationId": "amzn1.ask.skill.1"}},
		"request": {
			"type": "IntentRequest",
			"requestId": "req-2",
			"intent": {"name": "RelayStatusIsIntent", "slots": {"Status": {"name": "Status", "value": "on"}}}
		}
	}`

	relayOnResponse = `{
		"version": "1.0",
		"sessionAttributes": {"desiredRelayStatus": "on"},
		"response": {
			"outputSpeech": {"type": "PlainText", "text": "The light has been turned on"},
			"card": {
				"type": "Simple",
				"title": "SessionSpeechlet - RelayStatusIsIntent",
				"content": "SessionSpeechlet - The light has been turned on"
			},
			"reprompt": {"outputSpeech": {"type": "PlainText", "text": "You can ask me if the light is on or off by saying, is the light on or off?"}},
			"shouldEndSession": false
		}
	}`
)

func newTestSkill(t *testing.T) (*skill.Skill, *mock.MockClient) {
	ctrl := gomock.NewController(t)
	c := mock.NewMockClient(ctrl)
	return skill.New(skill.Config{ThingName: "EdisonDemo"}, c, nil), c
}

func waitShadow(t *testing.T, s *skill.Skill) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

func TestWebhook(t *testing.T) {
	s, c := newTestSkill(t)

	c.EXPECT().
		UpdateDesiredState(gomock.Any(), "EdisonDemo", shadow.DesiredState{RelayState: true}).
		Return([]byte(`{}`), nil).
		Times(1)

	appInstance := newApp(s)

	handler := http.HandlerFunc(appInstance.webhook)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	testCases := []struct {
		name         string
		method       string
		body         string
		expectedCode int
		expectedBody string
		expectedJSON string
	}{
		{
			name:         "method_get",
			method:       http.MethodGet,
			expectedCode: http.StatusMethodNotAllowed,
		},
		{
			name:         "method_put",
			method:       http.MethodPut,
			expectedCode: http.StatusMethodNotAllowed,
		},
		{
			name:         "method_post_without_body",
			method:       http.MethodPost,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "method_post_unsupported_type",
			method:       http.MethodPost,
			body:         `{"request": {"type": "idunno", "requestId": "r"}, "version": "1.0"}`,
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:         "method_post_unhandled_intent",
			method:       http.MethodPost,
			body:         `{"request": {"type": "IntentRequest", "intent": {"name": "AMAZON.FallbackIntent"}}, "version": "1.0"}`,
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:         "method_post_launch",
			method:       http.MethodPost,
			body:         launchBody,
			expectedCode: http.StatusOK,
			expectedBody: `Welcome to the Edison Internet of Things demo\..*"shouldEndSession":false`,
		},
		{
			name:         "method_post_session_ended",
			method:       http.MethodPost,
			body:         `{"request": {"type": "SessionEndedRequest", "requestId": "r", "reason": "USER_INITIATED"}, "version": "1.0"}`,
			expectedCode: http.StatusOK,
			expectedBody: `^$`,
		},
		{
			name:         "method_post_relay_on",
			method:       http.MethodPost,
			body:         relayOnBody,
			expectedCode: http.StatusOK,
			expectedJSON: relayOnResponse,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := resty.New().R()
			r.Method = tc.method
			r.URL = srv.URL

			if len(tc.body) > 0 {
				r.SetHeader("Content-Type", "application/json")
				r.SetBody(tc.body)
			}

			resp, err := r.Send()
			assert.NoError(t, err, "error making request")

			assert.Equal(t, tc.expectedCode, resp.StatusCode(), "response code mismatch")
			if tc.expectedBody != "" {
				assert.Regexp(t, tc.expectedBody, string(resp.Body()))
			}
			if tc.expectedJSON != "" {
				assert.JSONEq(t, tc.expectedJSON, string(resp.Body()))
			}
		})
	}

	waitShadow(t, s)
}

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{err: &skill.UnhandledIntentError{Name: "x"}, want: http.StatusUnprocessableEntity},
		{err: fmt.Errorf("wrapped: %w", skill.ErrUnsupportedRequestType), want: http.StatusUnprocessableEntity},
		{err: skill.ErrInvalidApplication, want: http.StatusForbidden},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.want, statusFor(tc.err))
		})
	}
}

func TestGzipCompression(t *testing.T) {
	s, _ := newTestSkill(t)
	appInstance := newApp(s)

	handler := gzipMiddleware(appInstance.webhook)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	t.Run("sends_gzip", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		zb := gzip.NewWriter(buf)
		_, err := zb.Write([]byte(launchBody))
		require.NoError(t, err)
		err = zb.Close()
		require.NoError(t, err)

		r := httptest.NewRequest("POST", srv.URL, buf)
		r.RequestURI = ""
		r.Header.Set("Content-Encoding", "gzip")
		r.Header.Set("Accept-Encoding", "0")

		resp, err := http.DefaultClient.Do(r)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		defer func(Body io.ReadCloser) {
			err := Body.Close()
			require.NoError(t, err)
		}(resp.Body)

		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(b), "Welcome to the Edison Internet of Things demo.")
	})

	t.Run("accept_gzip", func(t *testing.T) {
		buf := bytes.NewBufferString(launchBody)
		r := httptest.NewRequest("POST", srv.URL, buf)
		r.RequestURI = ""
		r.Header.Set("Accept-Encoding", "gzip")

		resp, err := http.DefaultClient.Do(r)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

		defer resp.Body.Close()

		zr, err := gzip.NewReader(resp.Body)
		require.NoError(t, err)

		b, err := io.ReadAll(zr)
		require.NoError(t, err)

		require.Contains(t, string(b), `"shouldEndSession":false`)
	})

	t.Run("error_not_compressed", func(t *testing.T) {
		r := httptest.NewRequest("GET", srv.URL, nil)
		r.RequestURI = ""
		r.Header.Set("Accept-Encoding", "gzip")

		resp, err := http.DefaultClient.Do(r)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("Content-Encoding"))

		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Empty(t, b)
	})

	t.Run("broken_gzip", func(t *testing.T) {
		r := httptest.NewRequest("POST", srv.URL, bytes.NewBufferString("not gzip"))
		r.RequestURI = ""
		r.Header.Set("Content-Encoding", "gzip")

		resp, err := http.DefaultClient.Do(r)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
