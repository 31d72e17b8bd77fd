package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hquan/babytrack/internal/core/model"
	"github.com/hquan/babytrack/internal/notify"
)

type appendEntryRequest struct {
	Type     model.EntryType `json:"type" binding:"required"`
	Amount   *float64        `json:"amount"`
	Duration *int            `json:"duration"`
	Note     string          `json:"note"`
}

type updateAmountRequest struct {
	Amount *float64 `json:"amount" binding:"required"`
}

type setScheduleRequest struct {
	// Either a concrete timestamp or a wall-clock pair
	At     *int64 `json:"at"`
	Hour   *int   `json:"hour"`
	Minute *int   `json:"minute"`
}

type adjustScheduleRequest struct {
	DeltaMinutes int `json:"deltaMinutes" binding:"required"`
}

type parseRequest struct {
	Text string `json:"text" binding:"required"`
}

type permissionRequest struct {
	State notify.Permission `json:"state" binding:"required"`
}

func (s *Server) handleListEntries(c *gin.Context) {
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		c.JSON(http.StatusOK, s.app.Store().Recent(limit))
		return
	}
	c.JSON(http.StatusOK, s.app.Store().Entries())
}

func (s *Server) handleAppendEntry(c *gin.Context) {
	var req appendEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Type.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown entry type"})
		return
	}

	entry := s.app.Store().Append(req.Type, req.Amount, req.Duration, req.Note)
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleUpdateAmount(c *gin.Context) {
	var req updateAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Unknown ids are a silent no-op by design
	s.app.Store().UpdateAmount(c.Param("id"), *req.Amount)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRemoveEntry(c *gin.Context) {
	s.app.Store().Remove(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.Aggregator().Summarize())
}

func (s *Server) handleGetSchedule(c *gin.Context) {
	state := s.app.Scheduler().State()
	c.JSON(http.StatusOK, gin.H{
		"nextFeedingAt": state.NextFeedingAt,
		"alertVisible":  state.AlertVisible,
		"phase":         s.app.Scheduler().Phase(),
	})
}

func (s *Server) handleSetSchedule(c *gin.Context) {
	var req setScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var at time.Time
	switch {
	case req.At != nil:
		at = time.UnixMilli(*req.At)
		s.app.Scheduler().Schedule(at)
	case req.Hour != nil && req.Minute != nil:
		if *req.Hour < 0 || *req.Hour > 23 || *req.Minute < 0 || *req.Minute > 59 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid clock time"})
			return
		}
		at = s.app.Scheduler().ScheduleClockTime(*req.Hour, *req.Minute)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "either at or hour/minute is required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"nextFeedingAt": at.UnixMilli()})
}

func (s *Server) handleAdjustSchedule(c *gin.Context) {
	var req adjustScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	at := s.app.Scheduler().Adjust(req.DeltaMinutes)
	c.JSON(http.StatusOK, gin.H{"nextFeedingAt": at.UnixMilli()})
}

func (s *Server) handleDismissAlert(c *gin.Context) {
	s.app.Scheduler().DismissAlert()
	s.app.Notifier().ClearBanner()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClearSchedule(c *gin.Context) {
	s.app.Scheduler().Clear()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListTimers(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.Timers().Active())
}

func (s *Server) handleStartTimer(c *gin.Context) {
	entryType := model.EntryType(c.Param("type"))
	if !entryType.IsTimed() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type is not timer-based"})
		return
	}

	active, started := s.app.Timers().Start(entryType)
	status := http.StatusCreated
	if !started {
		// Already running, report the existing session
		status = http.StatusOK
	}
	c.JSON(status, active)
}

func (s *Server) handleStopTimer(c *gin.Context) {
	entryType := model.EntryType(c.Param("type"))
	entry, stopped := s.app.Timers().Stop(entryType)
	if !stopped {
		c.JSON(http.StatusNotFound, gin.H{"error": "no running timer for type"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleGetInsight(c *gin.Context) {
	current, updatedAt, ok := s.app.InsightSlot().Get()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insight": current, "updatedAt": updatedAt.UnixMilli()})
}

func (s *Server) handleRefreshInsight(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.RequestInsight(c.Request.Context()))
}

func (s *Server) handleParse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parsed := s.app.ParseEntry(c.Request.Context(), req.Text)
	if parsed == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, parsed)
}

func (s *Server) handleGetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.Profile())
}

func (s *Server) handleSetProfile(c *gin.Context) {
	var profile model.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.app.SetProfile(profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleSetPermission(c *gin.Context) {
	var req permissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.State {
	case notify.PermissionDefault, notify.PermissionGranted, notify.PermissionDenied:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown permission state"})
		return
	}

	s.app.Notifier().SetPermission(req.State)
	c.Status(http.StatusNoContent)
}
