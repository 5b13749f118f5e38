package events

import (
	"context"
	"log"
)

// LogHandler is the default downstream consumer: it records each lifecycle
// change. Notification, analytics and archival consumers plug in by replacing
// it with their own EntryEventHandler.
type LogHandler struct{}

func (LogHandler) HandleCreated(_ context.Context, event ChangeEvent) error {
	log.Printf("entry created: id=%s owner=%s date=%s title=%q", event.EntryID, event.OwnerName, event.EntryDate, event.Title)
	return nil
}

func (LogHandler) HandleUpdated(_ context.Context, event ChangeEvent) error {
	log.Printf("entry updated: id=%s owner=%s date=%s", event.EntryID, event.OwnerName, event.EntryDate)
	return nil
}

func (LogHandler) HandleDeleted(_ context.Context, event ChangeEvent) error {
	log.Printf("entry deleted: id=%s owner=%s date=%s", event.EntryID, event.OwnerName, event.EntryDate)
	return nil
}
