package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/Lagergrenk/grindmode-sub001/internal/session"
	"github.com/gin-gonic/gin"
)

type NutritionHandler struct {
	sessions *session.Manager
}

func NewNutritionHandler(sessions *session.Manager) *NutritionHandler {
	return &NutritionHandler{sessions: sessions}
}

// --- DTOs ---

type EntryRequest struct {
	Date  time.Time     `json:"date"` // Optional; defaults to now on create
	Meals []domain.Meal `json:"meals"`
	Notes string        `json:"notes"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

type AddMealRequest struct {
	Date string      `json:"date"` // YYYY-MM-DD, defaults to today
	Meal domain.Meal `json:"meal"`
}

// --- Handler Methods ---

// GetEntries godoc
// @Summary Get nutrition entries for a day
// @Tags Nutrition
// @Produce json
// @Security BearerAuth
// @Param date query string false "Day as YYYY-MM-DD (default today)"
// @Success 200 {array} domain.NutritionEntry
// @Router /nutrition [get]
func (h *NutritionHandler) GetEntries(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	day, err := parseDay(c, "date")
	if err != nil {
		respondError(c, err)
		return
	}
	entries, err := s.Nutrition.EntriesOn(c.Request.Context(), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetWeeklySummary godoc
// @Summary Totals and averages over the trailing seven days
// @Tags Nutrition
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.WeeklySummary
// @Router /nutrition/summary/weekly [get]
func (h *NutritionHandler) GetWeeklySummary(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	summary, err := s.Nutrition.WeeklySummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *NutritionHandler) GetTodayTotals(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	totals, err := s.Nutrition.TodayTotals(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// CreateEntry godoc
// @Summary Create a nutrition entry
// @Description Totals are computed from the meals; any totals in the body are ignored.
// @Tags Nutrition
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry body EntryRequest true "Entry"
// @Success 201 {object} domain.NutritionEntry
// @Router /nutrition/entries [post]
func (h *NutritionHandler) CreateEntry(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	entry := &domain.NutritionEntry{Meals: req.Meals, Notes: req.Notes}
	entry.Date = req.Date
	created, err := s.Nutrition.AddEntry(c.Request.Context(), entry)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *NutritionHandler) UpdateEntry(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	entry := &domain.NutritionEntry{Meals: req.Meals, Notes: req.Notes}
	entry.ID = c.Param("id")
	entry.Date = req.Date
	updated, err := s.Nutrition.UpdateEntry(c.Request.Context(), entry)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *NutritionHandler) DeleteEntry(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	if err := s.Nutrition.DeleteEntry(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NutritionHandler) UpdateNotes(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	updated, err := s.Nutrition.UpdateNotes(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// AddMeal godoc
// @Summary Add a meal to a day
// @Description Appends to the day's entry, creating the entry when the day has none.
// @Tags Nutrition
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param meal body AddMealRequest true "Meal"
// @Success 201 {object} domain.NutritionEntry
// @Router /nutrition/meals [post]
func (h *NutritionHandler) AddMeal(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	var req AddMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	day := time.Now()
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	entry, err := s.Nutrition.AddMeal(c.Request.Context(), day, req.Meal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *NutritionHandler) EditMeal(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	var meal domain.Meal
	if err := c.ShouldBindJSON(&meal); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	meal.ID = c.Param("mealId")
	entry, err := s.Nutrition.EditMeal(c.Request.Context(), c.Param("id"), meal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *NutritionHandler) DeleteMeal(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	entry, err := s.Nutrition.DeleteMeal(c.Request.Context(), c.Param("id"), c.Param("mealId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
