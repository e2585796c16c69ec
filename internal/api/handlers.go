package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/craftkontrol/memoboard/internal/lifecycle"
	"github.com/craftkontrol/memoboard/internal/model"
)

const maxDescriptionSize = 10 << 10 // 10KB

type createTaskRequest struct {
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Recurrence  string `json:"recurrence"`
}

type snoozeRequest struct {
	Minutes int `json:"minutes"`
}

func (s *Server) handleListTasks(c *gin.Context) {
	period := lifecycle.Period(c.DefaultQuery("period", string(lifecycle.PeriodToday)))

	var (
		tasks []model.Task
		err   error
	)
	if c.Query("display") == "true" {
		tasks, err = s.manager.Displayable(c.Request.Context())
	} else {
		tasks, err = s.manager.ByPeriod(c.Request.Context(), period)
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   tasks,
		"count":   len(tasks),
	})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.BindJSON(&req); err != nil {
		s.badRequest(c, err.Error())
		return
	}
	if len(req.Description) > maxDescriptionSize {
		s.badRequest(c, "description exceeds maximum size of 10KB")
		return
	}

	task, err := s.manager.Create(c.Request.Context(), lifecycle.CreateInput{
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Type:        model.TaskType(req.Type),
		Priority:    model.Priority(req.Priority),
		Recurrence:  model.Recurrence(req.Recurrence),
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.manager.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var fields map[string]any
	if err := c.BindJSON(&fields); err != nil {
		s.badRequest(c, err.Error())
		return
	}
	delete(fields, "id")

	task, err := s.manager.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.manager.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "task deleted",
	})
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	result, err := s.manager.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := gin.H{
		"success":     true,
		"task":        result.Task,
		"autoDeleted": result.AutoDeleted,
	}
	if result.NextTask != nil {
		resp["nextTask"] = result.NextTask
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSnoozeTask(c *gin.Context) {
	var req snoozeRequest
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			s.badRequest(c, err.Error())
			return
		}
	}

	task, err := s.manager.Snooze(c.Request.Context(), c.Param("id"), req.Minutes)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleUndo(c *gin.Context) {
	result, err := s.undoer.UndoLast(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := gin.H{
		"success": true,
		"message": result.Message,
	}
	if result.Task != nil {
		resp["task"] = result.Task
	}
	if result.Note != nil {
		resp["note"] = result.Note
	}
	if result.List != nil {
		resp["list"] = result.List
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.manager.Statistics(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

func (s *Server) handleOverdue(c *gin.Context) {
	tasks, err := s.manager.Overdue(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   tasks,
		"count":   len(tasks),
	})
}

func (s *Server) handleCompliance(c *gin.Context) {
	compliance, err := s.manager.TodayMedicationCompliance(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"compliance": compliance,
	})
}

func (s *Server) handleListNotes(c *gin.Context) {
	notes, err := s.notebook.Notes(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"notes":   notes,
		"count":   len(notes),
	})
}

func (s *Server) handleCreateNote(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BindJSON(&req); err != nil {
		s.badRequest(c, err.Error())
		return
	}

	note, err := s.notebook.AddNote(c.Request.Context(), req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"note":    note,
	})
}

func (s *Server) handleDeleteNote(c *gin.Context) {
	if err := s.notebook.DeleteNote(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "note deleted",
	})
}

func (s *Server) handleLists(c *gin.Context) {
	lists, err := s.notebook.Lists(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"lists":   lists,
		"count":   len(lists),
	})
}

func (s *Server) handleCreateList(c *gin.Context) {
	var req struct {
		Name  string   `json:"name"`
		Items []string `json:"items"`
	}
	if err := c.BindJSON(&req); err != nil {
		s.badRequest(c, err.Error())
		return
	}

	list, err := s.notebook.AddList(c.Request.Context(), req.Name, req.Items)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"list":    list,
	})
}

func (s *Server) handleAddListItem(c *gin.Context) {
	var req struct {
		Item string `json:"item"`
	}
	if err := c.BindJSON(&req); err != nil {
		s.badRequest(c, err.Error())
		return
	}

	list, err := s.notebook.AddListItem(c.Request.Context(), c.Param("id"), req.Item)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"list":    list,
	})
}

func (s *Server) handleDeleteList(c *gin.Context) {
	if err := s.notebook.DeleteList(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "list deleted",
	})
}

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}

// fail maps domain errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, lifecycle.ErrInvalidPeriod),
		errors.Is(err, lifecycle.ErrInvalidInput),
		errors.Is(err, model.ErrInvalidType),
		errors.Is(err, model.ErrInvalidPriority),
		errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrInvalidRecurrence),
		isValidationError(err):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// isValidationError catches the model package's message-only validation
// errors (blank description, malformed date or time).
func isValidationError(err error) bool {
	return strings.HasPrefix(err.Error(), "model: ")
}
