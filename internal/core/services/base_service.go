package services

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/money_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_ledger/internal/platform/logging"
)

// BaseService provides common functionality for all services
type BaseService struct {
	clock    func() time.Time
	notifier portssvc.ChangeNotifier
}

// ServiceOption is a functional option for the behaviour every service shares
type ServiceOption func(*BaseService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.clock = clock
	}
}

// WithNotifier publishes committed changes to notifier.
func WithNotifier(notifier portssvc.ChangeNotifier) ServiceOption {
	return func(s *BaseService) {
		s.notifier = notifier
	}
}

func newBaseService(options []ServiceOption) BaseService {
	base := BaseService{clock: time.Now}
	for _, option := range options {
		option(&base)
	}
	return base
}

// Now returns the current time in UTC.
func (s *BaseService) Now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

// Publish forwards change events once a write has committed.
func (s *BaseService) Publish(ctx context.Context, events ...portssvc.ChangeEvent) {
	if s.notifier == nil || len(events) == 0 {
		return
	}
	s.notifier.Publish(ctx, events...)
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return logging.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}
