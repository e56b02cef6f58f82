package service

import (
	"context"
	"log/slog"

	"emargement/pkg/requestcontext"
)

func (s *Service) log(ctx context.Context, level slog.Level, msg string, attributes ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	s.logger.Log(ctx, level, msg, attributes...)
}

func (s *Service) logDebug(ctx context.Context, msg string, attributes ...any) {
	s.log(ctx, slog.LevelDebug, msg, attributes...)
}

func (s *Service) logInfo(ctx context.Context, msg string, attributes ...any) {
	s.log(ctx, slog.LevelInfo, msg, attributes...)
}

func (s *Service) logWarn(ctx context.Context, msg string, attributes ...any) {
	s.log(ctx, slog.LevelWarn, msg, attributes...)
}
