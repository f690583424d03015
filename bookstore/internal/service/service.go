package service

import (
	"context"
	"io"
	"time"

	"github.com/Astemirdum/bookstore/pkg/auth"
	"github.com/Astemirdum/bookstore/pkg/kafka"
	"go.uber.org/zap"
)

type EventPublisher interface {
	Publish(ctx context.Context, e kafka.Event) error
}

type TokenIssuer interface {
	Issue(id auth.Identity) (string, time.Time, error)
}

type ImageStore interface {
	// Save stores the content under a fresh name with the extension of filename
	// and returns its public url.
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
	Remove(url string) error
}

func publish(ctx context.Context, events EventPublisher, log *zap.Logger, e kafka.Event) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, e); err != nil {
		log.Warn("publish event", zap.String("type", string(e.EventType)), zap.Error(err))
	}
}
