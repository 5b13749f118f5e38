package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkleaf/journal/internal/command"
	"github.com/inkleaf/journal/internal/middleware"
	"github.com/inkleaf/journal/internal/models"
	"github.com/inkleaf/journal/internal/utils"
)

// JournalCommander defines the write-side operations used by JournalHandler.
type JournalCommander interface {
	Create(ctx context.Context, principal models.Principal, req command.EntryRequest) (*models.EntryView, error)
	Update(ctx context.Context, principal models.Principal, entryID string, req command.EntryRequest) (*models.EntryView, error)
	Delete(ctx context.Context, principal models.Principal, entryID string) error
	AdminDelete(ctx context.Context, entryID string) error
}

// JournalQuerier defines the read-side operations used by JournalHandler.
type JournalQuerier interface {
	GetByDate(ctx context.Context, ownerID string, date models.Date) (*models.EntryView, error)
	GetPage(ctx context.Context, ownerID string, page models.PageRequest) (*models.Page[models.EntryView], error)
	Search(ctx context.Context, ownerID, keyword string, page models.PageRequest) (*models.Page[models.EntryView], error)
	GetCalendarMonth(ctx context.Context, ownerID string, year int, month time.Month) ([]models.CalendarDay, error)
	GetAllAdmin(ctx context.Context, page models.PageRequest) (*models.Page[models.EntryView], error)
}

// JournalHandler routes requests to the command or query service as appropriate.
type JournalHandler struct {
	commands JournalCommander
	queries  JournalQuerier
}

func NewJournalHandler(commands JournalCommander, queries JournalQuerier) *JournalHandler {
	return &JournalHandler{commands: commands, queries: queries}
}

type EntryRequest struct {
	Title     string      `json:"title" validate:"required,max=100"`
	Content   string      `json:"content" validate:"required"`
	EntryDate models.Date `json:"entryDate"`
	Mood      models.Mood `json:"mood" validate:"omitempty,oneof=happy sad anxious excited calm angry neutral"`
}

func (h *JournalHandler) CreateEntry(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if req.EntryDate.IsZero() {
		middleware.RespondWithError(c, http.StatusBadRequest, "Entry date is required")
		return
	}

	view, err := h.commands.Create(c.Request.Context(), principal, command.EntryRequest{
		Title:     req.Title,
		Content:   req.Content,
		EntryDate: req.EntryDate,
		Mood:      req.Mood,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *JournalHandler) GetEntryByDate(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	date, err := models.ParseDate(c.Param("date"))
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	view, err := h.queries.GetByDate(c.Request.Context(), principal.UserID, date)
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *JournalHandler) GetEntries(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	page, err := h.queries.GetPage(c.Request.Context(), principal.UserID, pageRequest(c))
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *JournalHandler) GetCalendarMonth(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	month, err := time.Parse("2006-01", c.Query("month"))
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid month, expected YYYY-MM")
		return
	}

	days, err := h.queries.GetCalendarMonth(c.Request.Context(), principal.UserID, month.Year(), month.Month())
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, days)
}

func (h *JournalHandler) UpdateEntry(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	entryID := c.Param("id")
	if !utils.ValidateEntryID(entryID) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid entry ID format")
		return
	}

	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.Update(c.Request.Context(), principal, entryID, command.EntryRequest{
		Title:     req.Title,
		Content:   req.Content,
		EntryDate: req.EntryDate,
		Mood:      req.Mood,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *JournalHandler) DeleteEntry(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	entryID := c.Param("id")
	if !utils.ValidateEntryID(entryID) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid entry ID format")
		return
	}

	if err := h.commands.Delete(c.Request.Context(), principal, entryID); err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *JournalHandler) SearchEntries(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	keyword := c.Query("keyword")
	if keyword == "" {
		middleware.RespondWithError(c, http.StatusBadRequest, "Keyword is required")
		return
	}

	page, err := h.queries.Search(c.Request.Context(), principal.UserID, keyword, pageRequest(c))
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *JournalHandler) AdminGetAllEntries(c *gin.Context) {
	page, err := h.queries.GetAllAdmin(c.Request.Context(), pageRequest(c))
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *JournalHandler) AdminDeleteEntry(c *gin.Context) {
	entryID := c.Param("id")
	if !utils.ValidateEntryID(entryID) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid entry ID format")
		return
	}

	if err := h.commands.AdminDelete(c.Request.Context(), entryID); err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// pageRequest reads page, size and sort query parameters,
// e.g. ?page=0&size=10&sort=entryDate,desc
func pageRequest(c *gin.Context) models.PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	req := models.PageRequest{Page: page, Size: size}
	if sort := c.Query("sort"); sort != "" {
		parts := strings.SplitN(sort, ",", 2)
		req.SortField = parts[0]
		if len(parts) == 2 {
			req.SortDir = parts[1]
		}
	}
	return req.Normalize()
}
