package models

import "time"

// EntryView is the read-optimised projection of a journal entry. It is the
// canonical response shape for every read and write operation, and the value
// stored in the entry cache namespace.
type EntryView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	EntryDate Date      `json:"entryDate"`
	Mood      Mood      `json:"mood,omitempty"`
	OwnerID   string    `json:"ownerId"`
	OwnerName string    `json:"ownerName"`
	CreatedAt time.Time `json:"createdTimestamp"`
	UpdatedAt time.Time `json:"updatedTimestamp"`
}

// CalendarDay is one day of a month-aggregate view. Days without a non-deleted
// entry carry HasEntry=false and empty EntryID/Title.
type CalendarDay struct {
	Date     Date   `json:"date"`
	HasEntry bool   `json:"hasEntry"`
	EntryID  string `json:"entryId,omitempty"`
	Title    string `json:"title,omitempty"`
}

// CalendarMonth is the full ordered month view, one CalendarDay per day of the
// month. It is the value stored in the month cache namespace.
type CalendarMonth struct {
	Days []CalendarDay `json:"days"`
}

// Page is one page of results plus paging metadata.
type Page[T any] struct {
	Items         []T   `json:"items"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// Sort directions accepted by PageRequest.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// PageRequest carries pagination and sorting parameters. Sort fields are
// whitelisted by the repository; unknown fields fall back to the entry date.
type PageRequest struct {
	Page      int
	Size      int
	SortField string
	SortDir   string
}

// Normalize clamps the request into valid bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = 10
	}
	if p.Size > 100 {
		p.Size = 100
	}
	if p.SortDir != SortAsc {
		p.SortDir = SortDesc
	}
	return p
}

// Offset is the row offset for the normalized page.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}
