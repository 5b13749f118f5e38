package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/inkleaf/journal/internal/apperr"
	"github.com/inkleaf/journal/internal/models"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// EntryRepository is the authoritative store for journal entries. PostgreSQL
// is the single source of truth; a partial unique index on
// (owner_id, entry_date) WHERE NOT deleted arbitrates concurrent creates for
// the same natural key. Rows are never physically removed; Delete flips the
// tombstone flag and every query except FindByID excludes tombstoned rows.
type EntryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

const entryColumns = "id, owner_id, title, content, entry_date, mood, deleted, created_at, updated_at"

// Insert persists a new entry. A unique-index violation on the natural key
// surfaces as Conflict, which is how write races are resolved.
func (r *EntryRepository) Insert(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO journal_entries (id, owner_id, title, content, entry_date, mood, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.OwnerID, entry.Title, entry.Content,
		entry.EntryDate, nullMood(entry.Mood), entry.Deleted,
		entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation {
			return apperr.New(apperr.Conflict, "entry already exists for owner %s on %s", entry.OwnerID, entry.EntryDate)
		}
		return storeErr(err, "failed to insert entry %s", entry.ID)
	}
	return nil
}

// Update rewrites the mutable columns of an existing entry, tombstone
// included. The natural key columns are never touched.
func (r *EntryRepository) Update(ctx context.Context, entry *models.Entry) error {
	query := `
		UPDATE journal_entries
		SET title = $2, content = $3, mood = $4, deleted = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Title, entry.Content, nullMood(entry.Mood),
		entry.Deleted, entry.UpdatedAt,
	)
	if err != nil {
		return storeErr(err, "failed to update entry %s", entry.ID)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperr.New(apperr.NotFound, "entry %s not found", entry.ID)
	}
	return nil
}

// FindByID returns the entry regardless of its tombstone state, so deleted
// entries stay retrievable for audit and the delete path can detect them.
func (r *EntryRepository) FindByID(ctx context.Context, id string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE id = $1`
	return r.scanEntry(r.db.QueryRowContext(ctx, query, id), "entry "+id)
}

// FindByOwnerAndDate returns the non-deleted entry for one natural key.
func (r *EntryRepository) FindByOwnerAndDate(ctx context.Context, ownerID string, date models.Date) (*models.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE owner_id = $1 AND entry_date = $2 AND NOT deleted
	`
	return r.scanEntry(r.db.QueryRowContext(ctx, query, ownerID, date), "entry for "+date.String())
}

// FindByOwnerAndRange returns the owner's non-deleted entries with dates in
// [start, end], in ascending date order.
func (r *EntryRepository) FindByOwnerAndRange(ctx context.Context, ownerID string, start, end models.Date) ([]models.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE owner_id = $1 AND entry_date BETWEEN $2 AND $3 AND NOT deleted
		ORDER BY entry_date ASC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, start, end)
	if err != nil {
		return nil, storeErr(err, "failed to query entries for %s", ownerID)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// PageByOwner returns one page of the owner's non-deleted entries.
func (r *EntryRepository) PageByOwner(ctx context.Context, ownerID string, page models.PageRequest) (*models.Page[models.Entry], error) {
	page = page.Normalize()

	var total int64
	countQuery := `SELECT COUNT(*) FROM journal_entries WHERE owner_id = $1 AND NOT deleted`
	if err := r.db.QueryRowContext(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, storeErr(err, "failed to count entries for %s", ownerID)
	}

	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE owner_id = $1 AND NOT deleted
		ORDER BY ` + sortClause(page) + `
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, page.Size, page.Offset())
	if err != nil {
		return nil, storeErr(err, "failed to page entries for %s", ownerID)
	}
	defer rows.Close()

	items, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	return newPage(items, page, total), nil
}

// Search returns one page of the owner's non-deleted entries whose title or
// content contains keyword, case-insensitively.
func (r *EntryRepository) Search(ctx context.Context, ownerID, keyword string, page models.PageRequest) (*models.Page[models.Entry], error) {
	page = page.Normalize()
	pattern := "%" + keyword + "%"

	var total int64
	countQuery := `
		SELECT COUNT(*) FROM journal_entries
		WHERE owner_id = $1 AND NOT deleted AND (title ILIKE $2 OR content ILIKE $2)
	`
	if err := r.db.QueryRowContext(ctx, countQuery, ownerID, pattern).Scan(&total); err != nil {
		return nil, storeErr(err, "failed to count search results for %s", ownerID)
	}

	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE owner_id = $1 AND NOT deleted AND (title ILIKE $2 OR content ILIKE $2)
		ORDER BY ` + sortClause(page) + `
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, pattern, page.Size, page.Offset())
	if err != nil {
		return nil, storeErr(err, "failed to search entries for %s", ownerID)
	}
	defer rows.Close()

	items, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	return newPage(items, page, total), nil
}

// PageAll returns one page over every owner's non-deleted entries.
// Administrative listing; reads the store directly.
func (r *EntryRepository) PageAll(ctx context.Context, page models.PageRequest) (*models.Page[models.Entry], error) {
	page = page.Normalize()

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_entries WHERE NOT deleted`).Scan(&total); err != nil {
		return nil, storeErr(err, "failed to count entries")
	}

	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE NOT deleted
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, page.Size, page.Offset())
	if err != nil {
		return nil, storeErr(err, "failed to page entries")
	}
	defer rows.Close()

	items, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	return newPage(items, page, total), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *EntryRepository) scanEntry(row rowScanner, what string) (*models.Entry, error) {
	var entry models.Entry
	var mood sql.NullString

	err := row.Scan(
		&entry.ID, &entry.OwnerID, &entry.Title, &entry.Content,
		&entry.EntryDate, &mood, &entry.Deleted,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "%s not found", what)
	}
	if err != nil {
		return nil, storeErr(err, "failed to get %s", what)
	}
	if mood.Valid {
		entry.Mood = models.Mood(mood.String)
	}
	return &entry, nil
}

func scanEntries(rows *sql.Rows) ([]models.Entry, error) {
	var entries []models.Entry
	for rows.Next() {
		var entry models.Entry
		var mood sql.NullString

		if err := rows.Scan(
			&entry.ID, &entry.OwnerID, &entry.Title, &entry.Content,
			&entry.EntryDate, &mood, &entry.Deleted,
			&entry.CreatedAt, &entry.UpdatedAt,
		); err != nil {
			return nil, storeErr(err, "failed to scan entry")
		}
		if mood.Valid {
			entry.Mood = models.Mood(mood.String)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err, "failed to read entries")
	}
	return entries, nil
}

// sortClause maps API sort fields onto whitelisted columns. Unknown fields
// fall back to the entry date.
func sortClause(page models.PageRequest) string {
	column := "entry_date"
	switch page.SortField {
	case "createdAt":
		column = "created_at"
	case "title":
		column = "title"
	case "entryDate", "":
	}
	if page.SortDir == models.SortAsc {
		return column + " ASC"
	}
	return column + " DESC"
}

func newPage(items []models.Entry, page models.PageRequest, total int64) *models.Page[models.Entry] {
	totalPages := int((total + int64(page.Size) - 1) / int64(page.Size))
	return &models.Page[models.Entry]{
		Items:         items,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

func nullMood(m models.Mood) sql.NullString {
	if m == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(m), Valid: true}
}

// storeErr classifies a store failure: connectivity and timeout problems are
// Transient (client may retry), anything else Internal.
func storeErr(err error, format string, args ...any) error {
	kind := apperr.Internal
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = apperr.Transient
	}
	return apperr.Wrap(kind, err, format, args...)
}
