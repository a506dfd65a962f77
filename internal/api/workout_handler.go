package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/Lagergrenk/grindmode-sub001/internal/session"
	"github.com/gin-gonic/gin"
)

type WorkoutHandler struct {
	sessions *session.Manager
}

func NewWorkoutHandler(sessions *session.Manager) *WorkoutHandler {
	return &WorkoutHandler{sessions: sessions}
}

// --- DTOs ---

type PlanRequest struct {
	Name     string           `json:"name" binding:"required"`
	Workouts []domain.Workout `json:"workouts"`
}

type StartWorkoutRequest struct {
	PlanID       string `json:"planId" binding:"required"`
	WorkoutIndex int    `json:"workoutIndex" binding:"gte=0"`
}

// --- Plans ---

func (h *WorkoutHandler) ListPlans(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	plans, err := s.Workouts.ListPlans(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// CreatePlan godoc
// @Summary Create a workout plan
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body PlanRequest true "Plan"
// @Success 201 {object} domain.PlannedWorkouts
// @Router /workouts/plans [post]
func (h *WorkoutHandler) CreatePlan(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	plan, err := s.Workouts.SavePlan(c.Request.Context(), s.Workouts.NewPlan(req.Name, req.Workouts))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *WorkoutHandler) UpdatePlan(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	id := c.Param("id")
	if domain.IsTempID(id) {
		abortWithError(c, http.StatusBadRequest, "Unsaved plans must be created with POST.")
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	plan := domain.NewPlan(req.Name, req.Workouts)
	plan.ID = id
	saved, err := s.Workouts.SavePlan(c.Request.Context(), plan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *WorkoutHandler) DeletePlan(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	if err := s.Workouts.DeletePlan(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Active workouts ---

// StartWorkout godoc
// @Summary Start a workout from a plan
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StartWorkoutRequest true "Plan and workout index"
// @Success 201 {object} domain.ActiveWorkout
// @Failure 404 {object} gin.H "Plan not found"
// @Router /workouts/active [post]
func (h *WorkoutHandler) StartWorkout(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	var req StartWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	w, err := s.Workouts.StartWorkout(c.Request.Context(), req.PlanID, req.WorkoutIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// GetActiveWorkout returns 204 when nothing is in progress.
func (h *WorkoutHandler) GetActiveWorkout(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	w, err := s.Workouts.GetActiveWorkout(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if w == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WorkoutHandler) UpdateSet(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	exercise, err1 := strconv.Atoi(c.Param("exercise"))
	set, err2 := strconv.Atoi(c.Param("set"))
	if err1 != nil || err2 != nil {
		abortWithError(c, http.StatusBadRequest, "Exercise and set must be numbers.")
		return
	}
	var value domain.Set
	if err := c.ShouldBindJSON(&value); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	w, err := s.Workouts.UpdateSet(c.Request.Context(), c.Param("id"), exercise, set, value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WorkoutHandler) FinishWorkout(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	w, err := s.Workouts.FinishWorkout(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// --- History ---

func (h *WorkoutHandler) GetHistory(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	day, err := parseDay(c, "date")
	if err != nil {
		respondError(c, err)
		return
	}
	workouts, err := s.Workouts.History(c.Request.Context(), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workouts)
}

func (h *WorkoutHandler) GetWeeklySummary(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	summary, err := s.Workouts.WeeklySummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
