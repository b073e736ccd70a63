package service

import (
	"context"
	"errors"
	"log"

	"go-stock-tracker/internal/cache"
	"go-stock-tracker/pkg/apperror"

	"gorm.io/gorm"
)

// Actor is the authenticated caller performing a mutation.
type Actor struct {
	ID       string
	Username string
}

// EventPublisher pushes live inventory events to connected dashboards.
type EventPublisher interface {
	Publish(eventType, actor string, data any)
}

// notFoundOr turns a missing record into a 404 and anything else into a 500.
func notFoundOr(err error, notFoundMsg, failMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(notFoundMsg)
	}
	return apperror.Internal(failMsg, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// notify drops cached reports and fans the event out to live clients.
func notify(c cache.Cache, events EventPublisher, eventType string, actor Actor, data any) {
	if err := c.Flush(context.Background()); err != nil {
		log.Printf("Warning: failed to flush report cache: %v", err)
	}
	events.Publish(eventType, actor.Username, data)
}
