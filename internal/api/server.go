// Package api exposes the task board over HTTP for UI, voice and AI callers.
// Every response carries a {success, error?} envelope.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/craftkontrol/memoboard/internal/history"
	"github.com/craftkontrol/memoboard/internal/lifecycle"
)

// Server wires the lifecycle manager, notebook and undoer into a gin router.
type Server struct {
	manager  *lifecycle.Manager
	notebook *lifecycle.Notebook
	undoer   *history.Undoer
	logger   *slog.Logger
	router   *gin.Engine
}

func NewServer(manager *lifecycle.Manager, notebook *lifecycle.Notebook, undoer *history.Undoer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		manager:  manager,
		notebook: notebook,
		undoer:   undoer,
		logger:   logger,
		router:   router,
	}

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.GET("/tasks/stats", s.handleStats)
		api.GET("/tasks/overdue", s.handleOverdue)
		api.GET("/tasks/:id", s.handleGetTask)
		api.PUT("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
		api.POST("/tasks/:id/complete", s.handleCompleteTask)
		api.POST("/tasks/:id/snooze", s.handleSnoozeTask)

		api.POST("/undo", s.handleUndo)
		api.GET("/medications/compliance", s.handleCompliance)

		api.GET("/notes", s.handleListNotes)
		api.POST("/notes", s.handleCreateNote)
		api.DELETE("/notes/:id", s.handleDeleteNote)

		api.GET("/lists", s.handleLists)
		api.POST("/lists", s.handleCreateList)
		api.POST("/lists/:id/items", s.handleAddListItem)
		api.DELETE("/lists/:id", s.handleDeleteList)
	}

	return s
}

// Handler returns the router for serving or testing.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

// Run starts the HTTP server on addr.
func (s *Server) Run(addr string) error {
	s.logger.Info("http api listening", "addr", addr)
	return s.router.Run(addr)
}
