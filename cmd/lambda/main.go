// Command lambda serves the skill as an AWS Lambda function.
package main

import (
	"context"
	"os"

	"bitbucket.org/sotavant/relay-skill/internal/config"
	"bitbucket.org/sotavant/relay-skill/internal/logger"
	"bitbucket.org/sotavant/relay-skill/internal/models"
	"bitbucket.org/sotavant/relay-skill/internal/shadowconn"
	"bitbucket.org/sotavant/relay-skill/internal/skill"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

type turnHandler interface {
	Handle(ctx context.Context, req models.Request) (*models.Response, error)
	Wait(ctx context.Context) error
}

type handler struct {
	skill turnHandler
}

// Handle answers the turn and then keeps the invocation alive until the
// shadow update has been logged; a frozen execution environment would
// drop it otherwise.
func (h handler) Handle(ctx context.Context, req models.Request) (*models.Response, error) {
	resp, err := h.skill.Handle(ctx, req)
	if err != nil {
		logger.Log.Error("cannot handle request",
			zap.String("requestId", req.Request.RequestID),
			zap.Error(err),
		)
		return nil, err
	}

	if werr := h.skill.Wait(ctx); werr != nil {
		logger.Log.Warn("shadow update still pending", zap.Error(werr))
	}

	return resp, nil
}

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		panic(err)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		panic(err)
	}

	ctx := context.Background()
	client, closeShadow, err := shadowconn.Open(ctx, cfg, logger.Log)
	if err != nil {
		logger.Log.Fatal("cannot open shadow client", zap.Error(err))
	}
	defer closeShadow()

	s := skill.New(skill.Config{
		ThingName:     cfg.ThingName,
		ApplicationID: cfg.ApplicationID,
		ShadowTimeout: cfg.ShadowTimeout,
	}, client, logger.Log)

	lambda.Start(handler{skill: s}.Handle)
}
