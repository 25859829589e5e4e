// Package publisher packages generated insights for delivery. The actual
// transport (message broker, push gateway) is owned by the caller; the
// engine only sees the Publisher interface. Publication is best-effort:
// failures are logged by the caller and never retried here.
package publisher

import (
	"context"
	"fmt"

	"github.com/vitalflow/analytics/internal/logger"
	"github.com/vitalflow/analytics/internal/models"
)

// Publisher hands a generated insight to the outbound transport.
type Publisher interface {
	Publish(ctx context.Context, insight models.Insight) error
}

type logPublisher struct {
	log logger.Logger
}

// NewLogPublisher creates a publisher that only logs insights. Used when no
// outbound transport is configured.
func NewLogPublisher(log logger.Logger) Publisher {
	return &logPublisher{log: log}
}

func (p *logPublisher) Publish(ctx context.Context, insight models.Insight) error {
	p.log.Info("insight generated",
		logger.String("username", insight.Username),
		logger.String("type", string(insight.Type)),
		logger.String("severity", string(insight.Severity)),
		logger.String("message", insight.Message),
	)
	return nil
}

type channelPublisher struct {
	ch chan<- models.Insight
}

// NewChannelPublisher creates a publisher that forwards insights to an
// in-process channel. A full channel is a publish failure, not a block:
// insight delivery must never stall event application.
func NewChannelPublisher(ch chan<- models.Insight) Publisher {
	return &channelPublisher{ch: ch}
}

func (p *channelPublisher) Publish(ctx context.Context, insight models.Insight) error {
	select {
	case p.ch <- insight:
		return nil
	default:
		return fmt.Errorf("insight channel full, dropping insight for %s", insight.Username)
	}
}
