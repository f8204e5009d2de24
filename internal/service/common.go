package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// Caller is the authenticated account on whose behalf a service call runs.
type Caller struct {
	AccountID string
	Role      domain.RoleName
}

// CallerFromClaims derives the caller from verified token claims.
func CallerFromClaims(claims *auth.Claims) Caller {
	if claims == nil {
		return Caller{}
	}
	return Caller{AccountID: claims.SubjectID, Role: claims.Role}
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}

func (c Caller) actor() events.Actor {
	return events.Actor{AccountID: c.AccountID, Role: c.Role}
}

// publisher stamps and publishes events. Delivery failures are logged and
// never fail the operation that produced the event.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

func newPublisher(dispatcher events.Dispatcher, logger *zap.Logger) publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return publisher{dispatcher: dispatcher, logger: logger, now: time.Now}
}

func (p publisher) publishEvent(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("resource_id", event.ResourceID),
			zap.Error(err))
	}
}

func notFoundOr(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
