// Package pipeline runs one inbound chat message through duplicate detection,
// keyword gating, provisioning and relaying, and records the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"access-gateway-api/db"
	"access-gateway-api/extract"
	"access-gateway-api/keyword"
	"access-gateway-api/metrics"
	"access-gateway-api/provision"
	"access-gateway-api/relay"
)

const (
	StatusSuccess   = "success"
	StatusDuplicate = "Message already processed"
)

var ErrEmptyMessage = errors.New("message id and text are required")

// MessageStore is the duplicate guard and result log.
type MessageStore interface {
	AlreadyProcessed(ctx context.Context, externalID string) (bool, error)
	ClaimMessage(ctx context.Context, externalID, content string) (bool, error)
	ReleaseMessage(ctx context.Context, externalID string) error
	CompleteMessage(ctx context.Context, message db.ProcessedMessage, entry db.ForwardLog) error
}

type Provisioner interface {
	CreateOrUpdateUser(ctx context.Context, req provision.Request) (bool, error)
}

type Forwarder interface {
	Forward(ctx context.Context, text string, creds relay.Credentials) relay.Result
}

type Message struct {
	ExternalID string
	Text       string
}

// Summary is what the webhook answers with. Keyword is empty when the gate
// did not pass.
type Summary struct {
	Status    string
	Forwarded bool
	Keyword   string
	Processed bool
}

func (s Summary) Duplicate() bool {
	return s.Status == StatusDuplicate
}

type Deps struct {
	Messages    MessageStore
	Settings    *SettingsLoader
	Provisioner Provisioner
	Forwarder   Forwarder
	Gate        *keyword.Gate
	Metrics     *metrics.Metrics
}

type Pipeline struct {
	messages    MessageStore
	settings    *SettingsLoader
	provisioner Provisioner
	forwarder   Forwarder
	gate        *keyword.Gate
	metrics     *metrics.Metrics
}

func New(deps Deps) *Pipeline {
	gate := deps.Gate
	if gate == nil {
		gate = keyword.NewGate("")
	}
	return &Pipeline{
		messages:    deps.Messages,
		settings:    deps.Settings,
		provisioner: deps.Provisioner,
		forwarder:   deps.Forwarder,
		gate:        gate,
		metrics:     deps.Metrics,
	}
}

// Process handles one message. Every delivered id is processed at most once:
// redeliveries and concurrent duplicates get a duplicate summary. An error is
// returned only for storage failures, in which case the claim is released so
// the upstream retry can run the message again.
func (p *Pipeline) Process(ctx context.Context, msg Message) (Summary, error) {
	if msg.ExternalID == "" || msg.Text == "" {
		return Summary{}, ErrEmptyMessage
	}

	seen, err := p.messages.AlreadyProcessed(ctx, msg.ExternalID)
	if err != nil {
		p.metrics.ObserveOutcome(metrics.OutcomeFailed)
		return Summary{}, fmt.Errorf("failed to check message %s: %w", msg.ExternalID, err)
	}
	if seen {
		return p.duplicate(msg.ExternalID), nil
	}

	snapshot := p.settings.Load(ctx)

	claimed, err := p.messages.ClaimMessage(ctx, msg.ExternalID, msg.Text)
	if err != nil {
		p.metrics.ObserveOutcome(metrics.OutcomeFailed)
		return Summary{}, fmt.Errorf("failed to claim message %s: %w", msg.ExternalID, err)
	}
	if !claimed {
		return p.duplicate(msg.ExternalID), nil
	}

	record := db.ProcessedMessage{ExternalID: msg.ExternalID, Content: msg.Text}
	entry := db.ForwardLog{ExternalID: msg.ExternalID, Content: msg.Text}
	outcome := metrics.OutcomeGated

	var decision keyword.Decision
	if snapshot.KeywordsLoaded {
		decision = p.gate.ShouldForward(msg.Text, snapshot.Keywords)
	}

	if decision.Forward {
		matched := decision.Keyword
		entry.MatchedKeyword = &matched

		fields := extract.Extract(msg.Text)
		if fields.Name != "" {
			record.ExtractedName = &fields.Name
		}

		if fields.Phone == "" {
			outcome = metrics.OutcomeNoPhone
		} else {
			record.ExtractedPhone = &fields.Phone

			processed, err := p.provisioner.CreateOrUpdateUser(ctx, provision.Request{
				ExternalID: msg.ExternalID,
				Phone:      fields.Phone,
				Name:       fields.Name,
				AccessCode: fields.AccessCode,
				RawText:    msg.Text,
			})
			if err != nil {
				p.fail(ctx, msg.ExternalID)
				return Summary{}, fmt.Errorf("failed to provision message %s: %w", msg.ExternalID, err)
			}
			record.Processed = processed
			outcome = metrics.OutcomeUnchanged
			if processed {
				outcome = metrics.OutcomeProcessed
			}

			if snapshot.ForwardingActive {
				result := p.forwarder.Forward(ctx, msg.Text, snapshot.Relay)
				entry.Forwarded = result.Success
				if !result.Success {
					reason := result.Error
					entry.Error = &reason
				}
				p.metrics.ObserveRelay(result.Success)
			}
		}
	}

	if err := p.messages.CompleteMessage(ctx, record, entry); err != nil {
		p.fail(ctx, msg.ExternalID)
		return Summary{}, fmt.Errorf("failed to record message %s: %w", msg.ExternalID, err)
	}

	p.metrics.ObserveOutcome(outcome)
	log.Infow("message processed",
		"external_id", msg.ExternalID,
		"outcome", outcome,
		"forwarded", entry.Forwarded,
	)

	return Summary{
		Status:    StatusSuccess,
		Forwarded: entry.Forwarded,
		Keyword:   decision.Keyword,
		Processed: record.Processed,
	}, nil
}

func (p *Pipeline) duplicate(externalID string) Summary {
	p.metrics.ObserveOutcome(metrics.OutcomeDuplicate)
	log.Infow("duplicate message skipped", "external_id", externalID)
	return Summary{Status: StatusDuplicate}
}

// fail releases the claim so a redelivery is not mistaken for a duplicate.
func (p *Pipeline) fail(ctx context.Context, externalID string) {
	p.metrics.ObserveOutcome(metrics.OutcomeFailed)
	if err := p.messages.ReleaseMessage(context.WithoutCancel(ctx), externalID); err != nil {
		log.Errorw("failed to release message claim", "external_id", externalID, "error", err)
	}
}
