package main

import (
	"bitbucket.org/sotavant/relay-skill/internal/config"
	"bitbucket.org/sotavant/relay-skill/internal/logger"
	"bitbucket.org/sotavant/relay-skill/internal/shadowconn"
	"bitbucket.org/sotavant/relay-skill/internal/skill"
	"context"
	"errors"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		panic(err)
	}
	if err := run(cfg); err != nil {
		panic(err)
	}
}

func gzipMiddleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ow := w

		acceptEncoding := r.Header.Get("Accept-Encoding")
		supportGzip := strings.Contains(acceptEncoding, "gzip")

		if supportGzip {
			cw := newCompressWriter(w)
			ow = cw
			defer func(cw *compressWriter) {
				if err := cw.Close(); err != nil {
					logger.Log.Debug("compressWriterError", zap.Error(err))
				}
			}(cw)
		}

		contentEncoding := r.Header.Get("Content-Encoding")

		sendsGzip := strings.Contains(contentEncoding, "gzip")
		if sendsGzip {
			cr, err := newCompressReader(r.Body)
			if err != nil {
				logger.Log.Debug("newCompressReaderError", zap.Error(err))
				ow.WriteHeader(http.StatusBadRequest)
				return
			}
			r.Body = cr
			defer func(cr *compressReader) {
				if err := cr.Close(); err != nil {
					logger.Log.Debug("closeCompressReaderError", zap.Error(err))
				}
			}(cr)
		}

		h.ServeHTTP(ow, r)
	}
}

func run(cfg *config.Config) error {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}
	defer func() { _ = logger.Log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, closeShadow, err := shadowconn.Open(ctx, cfg, logger.Log)
	if err != nil {
		return err
	}
	defer closeShadow()

	s := skill.New(skill.Config{
		ThingName:     cfg.ThingName,
		ApplicationID: cfg.ApplicationID,
		ShadowTimeout: cfg.ShadowTimeout,
	}, client, logger.Log)
	a := newApp(s)

	srv := &http.Server{
		Addr:    cfg.RunAddr,
		Handler: logger.RequestLogger(gzipMiddleware(a.webhook)),
	}

	errc := make(chan error, 1)
	go func() {
		logger.Log.Info("Running server",
			zap.String("address", cfg.RunAddr),
			zap.String("thing", cfg.ThingName),
			zap.String("transport", cfg.ShadowTransport),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	// let in-flight shadow updates log their outcome
	return s.Wait(sctx)
}
