package query

import (
	"context"
	"time"

	"github.com/inkleaf/journal/internal/cache"
	"github.com/inkleaf/journal/internal/models"
)

// EntryFinder is the slice of the authoritative store the read pipeline uses.
// Every method excludes tombstoned rows.
type EntryFinder interface {
	FindByOwnerAndDate(ctx context.Context, ownerID string, date models.Date) (*models.Entry, error)
	FindByOwnerAndRange(ctx context.Context, ownerID string, start, end models.Date) ([]models.Entry, error)
	PageByOwner(ctx context.Context, ownerID string, page models.PageRequest) (*models.Page[models.Entry], error)
	Search(ctx context.Context, ownerID, keyword string, page models.PageRequest) (*models.Page[models.Entry], error)
	PageAll(ctx context.Context, page models.PageRequest) (*models.Page[models.Entry], error)
}

// UserDirectory resolves owner ids to user records.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// JournalQueryService is the read pipeline. Single-entry and month-aggregate
// lookups are read-through cached; pagination, search and admin listings go
// straight to the store. The cache is strictly a performance layer: every
// path returns identical results whether it is cold or warm.
type JournalQueryService struct {
	store      EntryFinder
	users      UserDirectory
	entryCache *cache.View[models.EntryView]
	monthCache *cache.View[models.CalendarMonth]
}

func NewJournalQueryService(
	store EntryFinder,
	users UserDirectory,
	entryCache *cache.View[models.EntryView],
	monthCache *cache.View[models.CalendarMonth],
) *JournalQueryService {
	return &JournalQueryService{
		store:      store,
		users:      users,
		entryCache: entryCache,
		monthCache: monthCache,
	}
}

// GetByDate returns the owner's entry for one date, populating the entry
// cache on a miss. Concurrent populations of the same key are benign: values
// derive from the same store row, so the last writer wins with the same data.
func (s *JournalQueryService) GetByDate(ctx context.Context, ownerID string, date models.Date) (*models.EntryView, error) {
	key := cache.EntryKey(ownerID, date)
	if view, ok := s.entryCache.Get(ctx, key); ok {
		return view, nil
	}

	entry, err := s.store.FindByOwnerAndDate(ctx, ownerID, date)
	if err != nil {
		return nil, err
	}
	owner, err := s.users.GetByID(ctx, entry.OwnerID)
	if err != nil {
		return nil, err
	}

	view := entryToView(entry, owner.Username)
	s.entryCache.Put(ctx, key, view)
	return view, nil
}

// GetPage returns one page of the owner's entries. Store-backed, no caching.
func (s *JournalQueryService) GetPage(ctx context.Context, ownerID string, page models.PageRequest) (*models.Page[models.EntryView], error) {
	entries, err := s.store.PageByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}
	return s.viewPage(ctx, entries)
}

// Search returns one page of the owner's entries whose title or content
// matches keyword case-insensitively. Store-backed, no caching.
func (s *JournalQueryService) Search(ctx context.Context, ownerID, keyword string, page models.PageRequest) (*models.Page[models.EntryView], error) {
	entries, err := s.store.Search(ctx, ownerID, keyword, page)
	if err != nil {
		return nil, err
	}
	return s.viewPage(ctx, entries)
}

// GetCalendarMonth returns one CalendarDay per day of the month, in ascending
// date order, populating the month cache on a miss. Days without a
// non-deleted entry carry HasEntry=false.
func (s *JournalQueryService) GetCalendarMonth(ctx context.Context, ownerID string, year int, month time.Month) ([]models.CalendarDay, error) {
	key := cache.MonthKey(ownerID, year, month)
	if cached, ok := s.monthCache.Get(ctx, key); ok {
		return cached.Days, nil
	}

	start := models.DateOf(year, month, 1)
	end := models.Date{Time: start.AddDate(0, 1, -1)}

	entries, err := s.store.FindByOwnerAndRange(ctx, ownerID, start, end)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*models.Entry, len(entries))
	for i := range entries {
		byDate[entries[i].EntryDate.String()] = &entries[i]
	}

	days := make([]models.CalendarDay, 0, end.Day())
	for day := 1; day <= end.Day(); day++ {
		date := models.DateOf(year, month, day)
		calendarDay := models.CalendarDay{Date: date}
		if entry, ok := byDate[date.String()]; ok {
			calendarDay.HasEntry = true
			calendarDay.EntryID = entry.ID
			calendarDay.Title = entry.Title
		}
		days = append(days, calendarDay)
	}

	s.monthCache.Put(ctx, key, &models.CalendarMonth{Days: days})
	return days, nil
}

// GetAllAdmin returns one page over every owner's entries. Administrative and
// low-frequency, so it always reflects the store directly.
func (s *JournalQueryService) GetAllAdmin(ctx context.Context, page models.PageRequest) (*models.Page[models.EntryView], error) {
	entries, err := s.store.PageAll(ctx, page)
	if err != nil {
		return nil, err
	}
	return s.viewPage(ctx, entries)
}

func (s *JournalQueryService) viewPage(ctx context.Context, page *models.Page[models.Entry]) (*models.Page[models.EntryView], error) {
	names := make(map[string]string)
	views := make([]models.EntryView, 0, len(page.Items))
	for i := range page.Items {
		entry := &page.Items[i]
		name, ok := names[entry.OwnerID]
		if !ok {
			owner, err := s.users.GetByID(ctx, entry.OwnerID)
			if err != nil {
				return nil, err
			}
			name = owner.Username
			names[entry.OwnerID] = name
		}
		views = append(views, *entryToView(entry, name))
	}
	return &models.Page[models.EntryView]{
		Items:         views,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
	}, nil
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
