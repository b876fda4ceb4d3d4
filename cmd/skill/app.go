package main

import (
	"bitbucket.org/sotavant/relay-skill/internal/logger"
	"bitbucket.org/sotavant/relay-skill/internal/models"
	"bitbucket.org/sotavant/relay-skill/internal/skill"
	"context"
	"encoding/json"
	"errors"
	"go.uber.org/zap"
	"net/http"
)

type handler interface {
	Handle(ctx context.Context, req models.Request) (*models.Response, error)
}

type app struct {
	skill handler
}

func newApp(s handler) *app {
	return &app{skill: s}
}

func (a *app) webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		logger.Log.Debug("got request with bad method", zap.String("method", r.Method))

		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	logger.Log.Debug("decoding request")
	var req models.Request
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		logger.Log.Debug("cannot decode request JSON body", zap.Error(err))

		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp, err := a.skill.Handle(ctx, req)
	if err != nil {
		logger.Log.Error("cannot handle request",
			zap.String("requestId", req.Request.RequestID),
			zap.Error(err),
		)
		w.WriteHeader(statusFor(err))
		return
	}

	if resp == nil {
		logger.Log.Debug("sending empty acknowledgement")
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	if err := enc.Encode(resp); err != nil {
		logger.Log.Debug("error encoding response", zap.Error(err))
		return
	}
	logger.Log.Debug("sending HTTP 200 response")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, skill.ErrInvalidApplication):
		return http.StatusForbidden
	case errors.Is(err, skill.ErrUnhandledIntent), errors.Is(err, skill.ErrUnsupportedRequestType):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
