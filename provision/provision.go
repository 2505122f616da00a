// Package provision turns the fields of an inbound message into a user record
// and category access grants.
package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"access-gateway-api/db"
	"access-gateway-api/events"
	"access-gateway-api/extract"
	"access-gateway-api/metrics"
)

// Store is the persistence the provisioner needs. Every write is an
// insert-or-ignore so concurrent deliveries never conflict.
type Store interface {
	EnsureGrantSchema(ctx context.Context) error
	UpsertUser(ctx context.Context, user db.NewUser) (id string, created bool, err error)
	FindCategory(ctx context.Context, name string) (*db.Category, error)
	Grant(ctx context.Context, userID, categoryID string, axis extract.Axis) (bool, error)
}

// Request carries the extracted fields of one message.
type Request struct {
	ExternalID string
	Phone      string
	Name       string
	AccessCode string
	RawText    string
}

type Provisioner struct {
	store     Store
	publisher events.Publisher
	metrics   *metrics.Metrics
}

type Option func(*Provisioner)

func WithPublisher(publisher events.Publisher) Option {
	return func(p *Provisioner) {
		if publisher != nil {
			p.publisher = publisher
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Provisioner) {
		p.metrics = m
	}
}

func New(store Store, opts ...Option) *Provisioner {
	p := &Provisioner{
		store:     store,
		publisher: events.Nop{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateOrUpdateUser ensures a user exists for req.Phone and grants every
// category named in req.RawText. It reports whether anything changed: a new
// user or at least one new grant. Only a failure to resolve the user is
// returned as an error; category misses and grant failures are logged and
// skipped.
func (p *Provisioner) CreateOrUpdateUser(ctx context.Context, req Request) (bool, error) {
	if req.Phone == "" {
		return false, nil
	}

	if err := p.store.EnsureGrantSchema(ctx); err != nil {
		log.Warnw("access grant schema bootstrap failed", "error", err)
	}

	secret := req.AccessCode
	if secret == "" {
		secret = req.Phone
	}
	userID, isNewUser, err := p.store.UpsertUser(ctx, db.NewUser{
		Identifier:   req.Phone,
		AccessSecret: secret,
		DisplayName:  req.Name,
	})
	if err != nil {
		return false, fmt.Errorf("failed to resolve user %s: %w", req.Phone, err)
	}
	if isNewUser {
		p.metrics.ObserveUserCreated()
		log.Infow("user created", "identifier", req.Phone, "user_id", userID)
	}

	fields := extract.Extract(req.RawText)
	granted := make(map[string][]string)
	for _, axis := range extract.Axes {
		for _, name := range fields.Categories[axis] {
			if p.grant(ctx, userID, axis, name) {
				granted[axis.String()] = append(granted[axis.String()], name)
			}
		}
	}

	changed := isNewUser || len(granted) > 0
	if changed {
		event := events.Provisioned{
			ExternalID: req.ExternalID,
			Identifier: req.Phone,
			UserID:     userID,
			NewUser:    isNewUser,
			Grants:     granted,
			OccurredAt: time.Now().UTC(),
		}
		if err := p.publisher.Publish(ctx, event); err != nil {
			log.Warnw("failed to publish provisioning event", "user_id", userID, "error", err)
		}
	}
	return changed, nil
}

// grant resolves one category name and records access to it. It returns true
// only when a new grant row was inserted.
func (p *Provisioner) grant(ctx context.Context, userID string, axis extract.Axis, name string) bool {
	category, err := p.store.FindCategory(ctx, name)
	if errors.Is(err, db.ErrNotFound) {
		log.Infow("category not found, skipping", "axis", axis, "category", name)
		return false
	}
	if err != nil {
		log.Errorw("category lookup failed", "axis", axis, "category", name, "error", err)
		return false
	}

	inserted, err := p.store.Grant(ctx, userID, category.ID, axis)
	if err != nil {
		log.Errorw("grant failed", "axis", axis, "category", category.Name, "user_id", userID, "error", err)
		return false
	}
	if inserted {
		p.metrics.ObserveGrant(axis.String())
		log.Infow("access granted", "axis", axis, "category", category.Name, "user_id", userID)
	}
	return inserted
}
