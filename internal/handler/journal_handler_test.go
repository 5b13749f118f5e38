package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkleaf/journal/internal/apperr"
	"github.com/inkleaf/journal/internal/command"
	"github.com/inkleaf/journal/internal/middleware"
	"github.com/inkleaf/journal/internal/models"
)

// ---- mock implementations ----

type mockCommander struct {
	createFn      func(models.Principal, command.EntryRequest) (*models.EntryView, error)
	updateFn      func(models.Principal, string, command.EntryRequest) (*models.EntryView, error)
	deleteFn      func(models.Principal, string) error
	adminDeleteFn func(string) error
}

func (m *mockCommander) Create(_ context.Context, p models.Principal, req command.EntryRequest) (*models.EntryView, error) {
	if m.createFn != nil {
		return m.createFn(p, req)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockCommander) Update(_ context.Context, p models.Principal, id string, req command.EntryRequest) (*models.EntryView, error) {
	if m.updateFn != nil {
		return m.updateFn(p, id, req)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockCommander) Delete(_ context.Context, p models.Principal, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(p, id)
	}
	return fmt.Errorf("not configured")
}
func (m *mockCommander) AdminDelete(_ context.Context, id string) error {
	if m.adminDeleteFn != nil {
		return m.adminDeleteFn(id)
	}
	return fmt.Errorf("not configured")
}

type mockQuerier struct {
	getByDateFn   func(string, models.Date) (*models.EntryView, error)
	getPageFn     func(string, models.PageRequest) (*models.Page[models.EntryView], error)
	searchFn      func(string, string, models.PageRequest) (*models.Page[models.EntryView], error)
	calendarFn    func(string, int, time.Month) ([]models.CalendarDay, error)
	getAllAdminFn func(models.PageRequest) (*models.Page[models.EntryView], error)
}

func (m *mockQuerier) GetByDate(_ context.Context, ownerID string, date models.Date) (*models.EntryView, error) {
	if m.getByDateFn != nil {
		return m.getByDateFn(ownerID, date)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockQuerier) GetPage(_ context.Context, ownerID string, page models.PageRequest) (*models.Page[models.EntryView], error) {
	if m.getPageFn != nil {
		return m.getPageFn(ownerID, page)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockQuerier) Search(_ context.Context, ownerID, keyword string, page models.PageRequest) (*models.Page[models.EntryView], error) {
	if m.searchFn != nil {
		return m.searchFn(ownerID, keyword, page)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockQuerier) GetCalendarMonth(_ context.Context, ownerID string, year int, month time.Month) ([]models.CalendarDay, error) {
	if m.calendarFn != nil {
		return m.calendarFn(ownerID, year, month)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockQuerier) GetAllAdmin(_ context.Context, page models.PageRequest) (*models.Page[models.EntryView], error) {
	if m.getAllAdminFn != nil {
		return m.getAllAdminFn(page)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func fakeAuth(principal models.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetPrincipal(c, principal)
		c.Next()
	}
}

func newJournalTestRouter(cmds JournalCommander, qrys JournalQuerier, principal models.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewJournalHandler(cmds, qrys)
	journals := r.Group("/api/journals")
	journals.Use(fakeAuth(principal))
	journals.POST("", h.CreateEntry)
	journals.GET("", h.GetEntries)
	journals.GET("/date/:date", h.GetEntryByDate)
	journals.GET("/calendar", h.GetCalendarMonth)
	journals.GET("/search", h.SearchEntries)
	journals.PUT("/:id", h.UpdateEntry)
	journals.DELETE("/:id", h.DeleteEntry)
	journals.GET("/admin/all", h.AdminGetAllEntries)
	journals.DELETE("/admin/:id", h.AdminDeleteEntry)
	return r
}

func doRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- test data ----

var aPrincipal = models.Principal{UserID: "usr-001", Username: "alice", Role: models.RoleUser}

var aTestView = &models.EntryView{
	ID: "jnl-001", Title: "A day", Content: "Went for a walk",
	EntryDate: models.DateOf(2026, time.January, 5), Mood: models.MoodCalm,
	OwnerID: "usr-001", OwnerName: "alice",
	CreatedAt: time.Now(), UpdatedAt: time.Now(),
}

func aValidEntryBody() map[string]interface{} {
	return map[string]interface{}{
		"title": "A day", "content": "Went for a walk",
		"entryDate": "2026-01-05", "mood": "calm",
	}
}

func emptyPage() *models.Page[models.EntryView] {
	return &models.Page[models.EntryView]{Items: []models.EntryView{}, Size: 10, TotalPages: 0}
}

// ---- tests ----

func TestCreateEntry(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(models.Principal, command.EntryRequest) (*models.EntryView, error)
		expectedStatus int
	}{
		{
			name: "success - create journal entry",
			body: aValidEntryBody(),
			createFn: func(p models.Principal, req command.EntryRequest) (*models.EntryView, error) {
				return aTestView, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - missing title",
			body:           map[string]interface{}{"content": "x", "entryDate": "2026-01-05"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - title too long",
			body: map[string]interface{}{
				"title": strings.Repeat("a", 101), "content": "x", "entryDate": "2026-01-05",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing entry date",
			body:           map[string]interface{}{"title": "A day", "content": "x"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - unknown mood",
			body: map[string]interface{}{
				"title": "A day", "content": "x", "entryDate": "2026-01-05", "mood": "grumpy",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "conflict - entry already exists for date",
			body: aValidEntryBody(),
			createFn: func(p models.Principal, req command.EntryRequest) (*models.EntryView, error) {
				return nil, apperr.New(apperr.Conflict, "entry already exists for 2026-01-05")
			},
			expectedStatus: http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockCommander{createFn: tt.createFn}
			router := newJournalTestRouter(cmds, &mockQuerier{}, aPrincipal)
			w := doRequest(router, http.MethodPost, "/api/journals", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetEntryByDate(t *testing.T) {
	tests := []struct {
		name           string
		date           string
		getByDateFn    func(string, models.Date) (*models.EntryView, error)
		expectedStatus int
	}{
		{
			name: "success - fetch entry by date",
			date: "2026-01-05",
			getByDateFn: func(ownerID string, date models.Date) (*models.EntryView, error) {
				return aTestView, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found - no entry on that date",
			date: "2026-01-06",
			getByDateFn: func(ownerID string, date models.Date) (*models.EntryView, error) {
				return nil, apperr.New(apperr.NotFound, "no entry")
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - malformed date",
			date:           "05-01-2026",
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newJournalTestRouter(&mockCommander{}, &mockQuerier{getByDateFn: tt.getByDateFn}, aPrincipal)
			w := doRequest(router, http.MethodGet, "/api/journals/date/"+tt.date, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetEntriesParsesPaging(t *testing.T) {
	var captured models.PageRequest
	qrys := &mockQuerier{
		getPageFn: func(ownerID string, page models.PageRequest) (*models.Page[models.EntryView], error) {
			if ownerID != aPrincipal.UserID {
				t.Errorf("expected owner %s, got %s", aPrincipal.UserID, ownerID)
			}
			captured = page
			return emptyPage(), nil
		},
	}
	router := newJournalTestRouter(&mockCommander{}, qrys, aPrincipal)
	w := doRequest(router, http.MethodGet, "/api/journals?page=2&size=5&sort=title,asc", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}
	if captured.Page != 2 || captured.Size != 5 {
		t.Errorf("expected page=2 size=5, got page=%d size=%d", captured.Page, captured.Size)
	}
	if captured.SortField != "title" || captured.SortDir != models.SortAsc {
		t.Errorf("expected sort title,asc, got %s,%s", captured.SortField, captured.SortDir)
	}
}

func TestGetCalendarMonth(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		calendarFn     func(string, int, time.Month) ([]models.CalendarDay, error)
		expectedStatus int
	}{
		{
			name:  "success - fetch calendar month",
			query: "?month=2026-01",
			calendarFn: func(ownerID string, year int, month time.Month) ([]models.CalendarDay, error) {
				if year != 2026 || month != time.January {
					t.Errorf("expected 2026 January, got %d %s", year, month)
				}
				return []models.CalendarDay{}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - malformed month",
			query:          "?month=January",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing month",
			query:          "",
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newJournalTestRouter(&mockCommander{}, &mockQuerier{calendarFn: tt.calendarFn}, aPrincipal)
			w := doRequest(router, http.MethodGet, "/api/journals/calendar"+tt.query, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateEntry(t *testing.T) {
	tests := []struct {
		name           string
		entryID        string
		body           interface{}
		updateFn       func(models.Principal, string, command.EntryRequest) (*models.EntryView, error)
		expectedStatus int
	}{
		{
			name:    "success - update own entry",
			entryID: "jnl-001",
			body:    aValidEntryBody(),
			updateFn: func(p models.Principal, id string, req command.EntryRequest) (*models.EntryView, error) {
				return aTestView, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "forbidden - update another user's entry",
			entryID: "jnl-002",
			body:    aValidEntryBody(),
			updateFn: func(p models.Principal, id string, req command.EntryRequest) (*models.EntryView, error) {
				return nil, apperr.New(apperr.Forbidden, "not yours")
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:    "not found - entry does not exist",
			entryID: "jnl-404",
			body:    aValidEntryBody(),
			updateFn: func(p models.Principal, id string, req command.EntryRequest) (*models.EntryView, error) {
				return nil, apperr.New(apperr.NotFound, "entry not found")
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:    "bad request - changed entry date",
			entryID: "jnl-001",
			body: map[string]interface{}{
				"title": "A day", "content": "x", "entryDate": "2026-01-06",
			},
			updateFn: func(p models.Principal, id string, req command.EntryRequest) (*models.EntryView, error) {
				return nil, apperr.New(apperr.Invalid, "entry date cannot be changed")
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing content",
			entryID:        "jnl-001",
			body:           map[string]interface{}{"title": "A day"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - malformed entry id",
			entryID:        "12345",
			body:           aValidEntryBody(),
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockCommander{updateFn: tt.updateFn}
			router := newJournalTestRouter(cmds, &mockQuerier{}, aPrincipal)
			w := doRequest(router, http.MethodPut, "/api/journals/"+tt.entryID, tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestDeleteEntry(t *testing.T) {
	tests := []struct {
		name           string
		entryID        string
		deleteFn       func(models.Principal, string) error
		expectedStatus int
	}{
		{
			name:           "success - delete own entry",
			entryID:        "jnl-001",
			deleteFn:       func(p models.Principal, id string) error { return nil },
			expectedStatus: http.StatusNoContent,
		},
		{
			name:    "forbidden - delete another user's entry",
			entryID: "jnl-002",
			deleteFn: func(p models.Principal, id string) error {
				return apperr.New(apperr.Forbidden, "not yours")
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:    "not found - already deleted",
			entryID: "jnl-404",
			deleteFn: func(p models.Principal, id string) error {
				return apperr.New(apperr.NotFound, "entry not found")
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - malformed entry id",
			entryID:        "12345",
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockCommander{deleteFn: tt.deleteFn}
			router := newJournalTestRouter(cmds, &mockQuerier{}, aPrincipal)
			w := doRequest(router, http.MethodDelete, "/api/journals/"+tt.entryID, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestSearchEntries(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		searchFn       func(string, string, models.PageRequest) (*models.Page[models.EntryView], error)
		expectedStatus int
	}{
		{
			name:  "success - keyword search",
			query: "?keyword=walk",
			searchFn: func(ownerID, keyword string, page models.PageRequest) (*models.Page[models.EntryView], error) {
				if keyword != "walk" {
					t.Errorf("expected keyword walk, got %s", keyword)
				}
				return emptyPage(), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - missing keyword",
			query:          "",
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newJournalTestRouter(&mockCommander{}, &mockQuerier{searchFn: tt.searchFn}, aPrincipal)
			w := doRequest(router, http.MethodGet, "/api/journals/search"+tt.query, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestAdminEndpoints(t *testing.T) {
	getAllFn := func(page models.PageRequest) (*models.Page[models.EntryView], error) {
		return emptyPage(), nil
	}
	router := newJournalTestRouter(
		&mockCommander{adminDeleteFn: func(id string) error { return nil }},
		&mockQuerier{getAllAdminFn: getAllFn},
		models.Principal{UserID: "usr-admin", Username: "root", Role: models.RoleAdmin},
	)

	w := doRequest(router, http.MethodGet, "/api/journals/admin/all", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodDelete, "/api/journals/admin/jnl-001", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d; body: %s", w.Code, w.Body.String())
	}
}

func TestTransientStoreFailureMapsTo503(t *testing.T) {
	qrys := &mockQuerier{
		getByDateFn: func(ownerID string, date models.Date) (*models.EntryView, error) {
			return nil, apperr.New(apperr.Transient, "store unreachable")
		},
	}
	router := newJournalTestRouter(&mockCommander{}, qrys, aPrincipal)
	w := doRequest(router, http.MethodGet, "/api/journals/date/2026-01-05", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d; body: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "unreachable") {
		t.Errorf("internal detail leaked to client: %s", w.Body.String())
	}
}
