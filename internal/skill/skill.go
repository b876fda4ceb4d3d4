// Package skill routes voice platform requests to the relay intent
// handlers and pushes the requested relay position to the device shadow.
package skill

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bitbucket.org/sotavant/relay-skill/internal/logger"
	"bitbucket.org/sotavant/relay-skill/internal/models"
	"bitbucket.org/sotavant/relay-skill/internal/shadow"
	"go.uber.org/zap"
)

var (
	ErrUnhandledIntent        = errors.New("unhandled intent")
	ErrUnsupportedRequestType = errors.New("unsupported request type")
	ErrInvalidApplication     = errors.New("invalid application id")
)

// UnhandledIntentError is returned for intent names the skill does not know.
type UnhandledIntentError struct {
	Name string
}

func (e *UnhandledIntentError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnhandledIntent, e.Name)
}

func (e *UnhandledIntentError) Is(target error) bool {
	return target == ErrUnhandledIntent
}

type Config struct {
	// ThingName addresses the device shadow that holds the relay state.
	ThingName string
	// ApplicationID, when set, rejects requests sent for other skills.
	ApplicationID string
	// ShadowTimeout bounds a single shadow update. Zero means no bound.
	ShadowTimeout time.Duration
}

type intentHandler func(ctx context.Context, intent *models.Intent, session models.Session) *models.Response

type Skill struct {
	cfg     Config
	shadow  shadow.Client
	log     *zap.Logger
	intents map[string]intentHandler

	pending sync.WaitGroup
}

func New(cfg Config, client shadow.Client, log *zap.Logger) *Skill {
	if log == nil {
		log = logger.Log
	}

	s := &Skill{
		cfg:    cfg,
		shadow: client,
		log:    log,
	}

	s.intents = map[string]intentHandler{
		models.IntentRelayStatusIs:    s.setRelayStatus,
		models.IntentWhatsRelayStatus: s.getRelayStatus,
		models.IntentHelp:             s.welcome,
		models.IntentStop:             s.sessionEnd,
		models.IntentCancel:           s.sessionEnd,
	}

	return s
}

// Handle answers one turn. A nil response with a nil error means the
// request only needs an empty acknowledgement.
func (s *Skill) Handle(ctx context.Context, req models.Request) (*models.Response, error) {
	log := s.log.With(
		zap.String("requestId", req.Request.RequestID),
		zap.String("sessionId", req.Session.SessionID),
	)

	appID := req.Session.Application.ApplicationID
	log.Debug("got request", zap.String("applicationId", appID), zap.String("type", req.Request.Type))

	if s.cfg.ApplicationID != "" && appID != s.cfg.ApplicationID {
		return nil, fmt.Errorf("%w: %q", ErrInvalidApplication, appID)
	}

	if req.Session.New {
		log.Info("session started")
	}

	switch req.Request.Type {
	case models.TypeLaunchRequest:
		log.Info("launch")
		return s.welcome(ctx, req.Request.Intent, req.Session), nil

	case models.TypeIntentRequest:
		name := ""
		if req.Request.Intent != nil {
			name = req.Request.Intent.Name
		}
		log.Info("intent", zap.String("intent", name))

		h, ok := s.intents[name]
		if !ok {
			return nil, &UnhandledIntentError{Name: name}
		}
		return h(ctx, req.Request.Intent, req.Session), nil

	case models.TypeSessionEndedRequest:
		fields := []zap.Field{zap.String("reason", req.Request.Reason)}
		if e := req.Request.Error; e != nil {
			fields = append(fields, zap.String("errorType", e.Type), zap.String("errorMessage", e.Message))
		}
		log.Info("session ended", fields...)
		return nil, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedRequestType, req.Request.Type)
}

// Wait blocks until every shadow update started by Handle has finished
// and been logged, or ctx is done.
func (s *Skill) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// updateShadow sends the desired state in the background. The outcome is
// only logged; the turn's response never waits for it.
func (s *Skill) updateShadow(ctx context.Context, desired shadow.DesiredState) {
	ctx = context.WithoutCancel(ctx)
	cancel := func() {}
	if s.cfg.ShadowTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShadowTimeout)
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()

		log := s.log.With(zap.String("thing", s.cfg.ThingName), zap.Bool("relayState", desired.RelayState))

		ack, err := s.shadow.UpdateDesiredState(ctx, s.cfg.ThingName, desired)
		if err != nil {
			log.Error("shadow update failed", zap.Error(err))
			return
		}
		log.Info("shadow updated", zap.ByteString("ack", ack))
	}()
}
