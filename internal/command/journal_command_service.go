package command

import (
	"context"
	"time"

	"github.com/inkleaf/journal/internal/apperr"
	"github.com/inkleaf/journal/internal/cache"
	"github.com/inkleaf/journal/internal/events"
	"github.com/inkleaf/journal/internal/models"
	"github.com/inkleaf/journal/internal/utils"
)

// EntryStore is the slice of the authoritative store the write pipeline uses.
type EntryStore interface {
	Insert(ctx context.Context, entry *models.Entry) error
	Update(ctx context.Context, entry *models.Entry) error
	FindByID(ctx context.Context, id string) (*models.Entry, error)
	FindByOwnerAndDate(ctx context.Context, ownerID string, date models.Date) (*models.Entry, error)
}

// UserDirectory resolves owner ids to user records.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// EventPublisher announces committed mutations. Publish must not block and
// must never fail the caller.
type EventPublisher interface {
	Publish(event events.ChangeEvent)
}

// EntryRequest is the write payload for create and update.
type EntryRequest struct {
	Title     string
	Content   string
	EntryDate models.Date
	Mood      models.Mood
}

// JournalCommandService is the write pipeline: it validates, detects
// duplicates, mutates the store, then invalidates the affected cache keys
// and publishes a change event. Cache invalidation and event publication
// happen strictly after the store write commits; if the write fails,
// neither occurs.
type JournalCommandService struct {
	store      EntryStore
	users      UserDirectory
	entryCache *cache.View[models.EntryView]
	monthCache *cache.View[models.CalendarMonth]
	publisher  EventPublisher
}

func NewJournalCommandService(
	store EntryStore,
	users UserDirectory,
	entryCache *cache.View[models.EntryView],
	monthCache *cache.View[models.CalendarMonth],
	publisher EventPublisher,
) *JournalCommandService {
	return &JournalCommandService{
		store:      store,
		users:      users,
		entryCache: entryCache,
		monthCache: monthCache,
		publisher:  publisher,
	}
}

// Create persists a new entry for the principal. The store's unique index is
// the sole arbiter of concurrent creates for the same (owner, date): the
// pre-check below catches the common case early, and a raced insert still
// comes back as Conflict.
func (s *JournalCommandService) Create(ctx context.Context, principal models.Principal, req EntryRequest) (*models.EntryView, error) {
	owner, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.FindByOwnerAndDate(ctx, owner.ID, req.EntryDate); err == nil {
		return nil, apperr.New(apperr.Conflict, "entry already exists for %s", req.EntryDate)
	} else if !apperr.IsKind(err, apperr.NotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &models.Entry{
		ID:        utils.GenerateID("jnl"),
		OwnerID:   owner.ID,
		Title:     req.Title,
		Content:   req.Content,
		EntryDate: req.EntryDate,
		Mood:      req.Mood,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		return nil, err
	}

	s.invalidateEntry(ctx, entry)
	s.publish(events.EntryCreated, entry, owner.Username)
	return entryToView(entry, owner.Username), nil
}

// Update mutates title, content and mood of an existing entry. The natural
// key is immutable: a request whose date differs from the stored date is
// rejected rather than silently re-keyed, so eviction always targets the one
// date the entry ever had.
func (s *JournalCommandService) Update(ctx context.Context, principal models.Principal, entryID string, req EntryRequest) (*models.EntryView, error) {
	entry, err := s.store.FindByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Deleted {
		return nil, apperr.New(apperr.NotFound, "entry %s not found", entryID)
	}
	if !CanAccess(principal, entry) {
		return nil, apperr.New(apperr.Forbidden, "entry %s does not belong to %s", entryID, principal.UserID)
	}
	if !req.EntryDate.IsZero() && !req.EntryDate.Equal(entry.EntryDate) {
		return nil, apperr.New(apperr.Invalid, "entry date cannot be changed")
	}

	owner, err := s.users.GetByID(ctx, entry.OwnerID)
	if err != nil {
		return nil, err
	}

	entry.Title = req.Title
	entry.Content = req.Content
	entry.Mood = req.Mood
	entry.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.invalidateEntry(ctx, entry)
	s.publish(events.EntryUpdated, entry, owner.Username)
	return entryToView(entry, owner.Username), nil
}

// Delete tombstones the principal's entry. Deleting an entry that is already
// tombstoned returns NotFound.
func (s *JournalCommandService) Delete(ctx context.Context, principal models.Principal, entryID string) error {
	return s.delete(ctx, &principal, entryID)
}

// AdminDelete tombstones any entry, bypassing the ownership check.
func (s *JournalCommandService) AdminDelete(ctx context.Context, entryID string) error {
	return s.delete(ctx, nil, entryID)
}

func (s *JournalCommandService) delete(ctx context.Context, principal *models.Principal, entryID string) error {
	entry, err := s.store.FindByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Deleted {
		return apperr.New(apperr.NotFound, "entry %s not found", entryID)
	}
	if principal != nil && !CanAccess(*principal, entry) {
		return apperr.New(apperr.Forbidden, "entry %s does not belong to %s", entryID, principal.UserID)
	}

	owner, err := s.users.GetByID(ctx, entry.OwnerID)
	if err != nil {
		return err
	}

	entry.Deleted = true
	entry.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, entry); err != nil {
		return err
	}

	// Coarse by intent: the exact date is known, but sweeping both
	// namespaces also clears any aggregate key derived from this entry.
	s.entryCache.InvalidateAll(ctx)
	s.monthCache.InvalidateAll(ctx)
	s.publish(events.EntryDeleted, entry, owner.Username)
	return nil
}

func (s *JournalCommandService) invalidateEntry(ctx context.Context, entry *models.Entry) {
	s.entryCache.Invalidate(ctx, cache.EntryKey(entry.OwnerID, entry.EntryDate))
	year, month, _ := entry.EntryDate.Date()
	s.monthCache.Invalidate(ctx, cache.MonthKey(entry.OwnerID, year, month))
}

func (s *JournalCommandService) publish(kind string, entry *models.Entry, ownerName string) {
	s.publisher.Publish(events.ChangeEvent{
		Kind:       kind,
		EntryID:    entry.ID,
		OwnerID:    entry.OwnerID,
		OwnerName:  ownerName,
		EntryDate:  entry.EntryDate,
		Title:      entry.Title,
		OccurredAt: time.Now().UTC(),
	})
}

func entryToView(entry *models.Entry, ownerName string) *models.EntryView {
	return &models.EntryView{
		ID:        entry.ID,
		Title:     entry.Title,
		Content:   entry.Content,
		EntryDate: entry.EntryDate,
		Mood:      entry.Mood,
		OwnerID:   entry.OwnerID,
		OwnerName: ownerName,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}
