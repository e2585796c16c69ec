package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/craftkontrol/memoboard/internal/history"
	"github.com/craftkontrol/memoboard/internal/lifecycle"
	"github.com/craftkontrol/memoboard/internal/scheduler"
	"github.com/craftkontrol/memoboard/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "api-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	engine := scheduler.NewEngine(8)
	engine.Start()
	t.Cleanup(engine.Stop)

	log := history.NewLog(repo, slog.Default())
	manager := lifecycle.NewManager(repo, log, engine, slog.Default())
	notebook := lifecycle.NewNotebook(repo, log, slog.Default())
	undoer := history.NewUndoer(log, repo)

	return NewServer(manager, notebook, undoer, slog.Default())
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response %q: %v", w.Body.String(), err)
	}
	return w, resp
}

func createTask(t *testing.T, s *Server, body map[string]any) string {
	t.Helper()
	w, resp := doJSON(t, s, http.MethodPost, "/api/tasks", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create task: status %d body %v", w.Code, resp)
	}
	task := resp["task"].(map[string]any)
	return task["id"].(string)
}

func TestCreateAndGetTask(t *testing.T) {
	s := newTestServer(t)

	id := createTask(t, s, map[string]any{
		"description": "Buy milk",
		"type":        "shopping",
		"time":        "18:00",
	})

	w, resp := doJSON(t, s, http.MethodGet, "/api/tasks/"+id, nil)
	if w.Code != http.StatusOK || resp["success"] != true {
		t.Fatalf("get task: status %d body %v", w.Code, resp)
	}
	task := resp["task"].(map[string]any)
	if task["description"] != "Buy milk" || task["type"] != "shopping" || task["status"] != "pending" {
		t.Fatalf("unexpected task: %v", task)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	s := newTestServer(t)

	w, resp := doJSON(t, s, http.MethodPost, "/api/tasks", map[string]any{
		"description": "",
	})
	if w.Code != http.StatusBadRequest || resp["success"] != false {
		t.Fatalf("expected 400 for blank description, got %d %v", w.Code, resp)
	}

	w, resp = doJSON(t, s, http.MethodPost, "/api/tasks", map[string]any{
		"description": "Bad type",
		"type":        "grocery",
	})
	if w.Code != http.StatusBadRequest || resp["success"] != false {
		t.Fatalf("expected 400 for unknown type, got %d %v", w.Code, resp)
	}
}

func TestGetMissingTaskReturns404(t *testing.T) {
	s := newTestServer(t)

	w, resp := doJSON(t, s, http.MethodGet, "/api/tasks/ghost", nil)
	if w.Code != http.StatusNotFound || resp["success"] != false {
		t.Fatalf("expected 404, got %d %v", w.Code, resp)
	}
}

func TestListTasksDefaultsToToday(t *testing.T) {
	s := newTestServer(t)

	createTask(t, s, map[string]any{"description": "for today"})
	createTask(t, s, map[string]any{"description": "far future", "date": "2199-01-01"})

	w, resp := doJSON(t, s, http.MethodGet, "/api/tasks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d body %v", w.Code, resp)
	}
	if resp["count"].(float64) != 1 {
		t.Fatalf("expected 1 task today, got %v", resp)
	}

	w, resp = doJSON(t, s, http.MethodGet, "/api/tasks?period=year", nil)
	if w.Code != http.StatusOK || resp["count"].(float64) != 1 {
		t.Fatalf("expected 1 task this year, got %d %v", w.Code, resp)
	}

	w, resp = doJSON(t, s, http.MethodGet, "/api/tasks?period=century", nil)
	if w.Code != http.StatusBadRequest || resp["success"] != false {
		t.Fatalf("expected 400 for bad period, got %d %v", w.Code, resp)
	}
}

func TestCompleteSnoozeAndUndoFlow(t *testing.T) {
	s := newTestServer(t)

	id := createTask(t, s, map[string]any{
		"description": "Take 2 pills",
		"type":        "medication",
	})

	w, resp := doJSON(t, s, http.MethodPost, "/api/tasks/"+id+"/complete", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete: status %d body %v", w.Code, resp)
	}
	if resp["autoDeleted"] != false {
		t.Fatalf("medication must not auto-delete: %v", resp)
	}
	task := resp["task"].(map[string]any)
	if task["status"] != "completed" {
		t.Fatalf("not completed: %v", task)
	}
	med := task["medication_info"].(map[string]any)
	if med["taken"] != true {
		t.Fatalf("taken flag not set: %v", med)
	}

	w, resp = doJSON(t, s, http.MethodPost, "/api/undo", nil)
	if w.Code != http.StatusOK || resp["success"] != true {
		t.Fatalf("undo: status %d body %v", w.Code, resp)
	}

	w, resp = doJSON(t, s, http.MethodGet, "/api/tasks/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get after undo: status %d body %v", w.Code, resp)
	}
	if resp["task"].(map[string]any)["status"] != "pending" {
		t.Fatalf("undo did not restore pending: %v", resp)
	}

	w, resp = doJSON(t, s, http.MethodPost, "/api/tasks/"+id+"/snooze", map[string]any{"minutes": 15})
	if w.Code != http.StatusOK {
		t.Fatalf("snooze: status %d body %v", w.Code, resp)
	}
	if resp["task"].(map[string]any)["status"] != "snoozed" {
		t.Fatalf("not snoozed: %v", resp)
	}
}

func TestCompleteShoppingTaskAutoDeletes(t *testing.T) {
	s := newTestServer(t)

	id := createTask(t, s, map[string]any{
		"description": "Buy bread",
		"type":        "shopping",
	})

	w, resp := doJSON(t, s, http.MethodPost, "/api/tasks/"+id+"/complete", nil)
	if w.Code != http.StatusOK || resp["autoDeleted"] != true {
		t.Fatalf("expected auto-delete, got %d %v", w.Code, resp)
	}
	w, _ = doJSON(t, s, http.MethodGet, "/api/tasks/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after auto-delete, got %d", w.Code)
	}
}

func TestUpdateTask(t *testing.T) {
	s := newTestServer(t)

	id := createTask(t, s, map[string]any{"description": "Old name"})

	w, resp := doJSON(t, s, http.MethodPut, "/api/tasks/"+id, map[string]any{
		"description": "New name",
		"priority":    "urgent",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d body %v", w.Code, resp)
	}
	task := resp["task"].(map[string]any)
	if task["description"] != "New name" || task["priority"] != "urgent" {
		t.Fatalf("update not applied: %v", task)
	}
}

func TestDeleteTaskThenUndoRestores(t *testing.T) {
	s := newTestServer(t)

	id := createTask(t, s, map[string]any{"description": "Disposable"})

	w, resp := doJSON(t, s, http.MethodDelete, "/api/tasks/"+id, nil)
	if w.Code != http.StatusOK || resp["success"] != true {
		t.Fatalf("delete: status %d body %v", w.Code, resp)
	}

	w, resp = doJSON(t, s, http.MethodPost, "/api/undo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("undo: status %d body %v", w.Code, resp)
	}
	restored := resp["task"].(map[string]any)
	if restored["id"] == id {
		t.Fatalf("restore must assign a fresh id: %v", restored)
	}
	if restored["description"] != "Disposable" {
		t.Fatalf("restored task lost fields: %v", restored)
	}
}

func TestUndoEmptyLogIsNoOp(t *testing.T) {
	s := newTestServer(t)

	w, resp := doJSON(t, s, http.MethodPost, "/api/undo", nil)
	if w.Code != http.StatusOK || resp["message"] != "nothing to undo" {
		t.Fatalf("expected no-op undo, got %d %v", w.Code, resp)
	}
}

func TestStatsAndCompliance(t *testing.T) {
	s := newTestServer(t)

	createTask(t, s, map[string]any{"description": "plain"})
	medID := createTask(t, s, map[string]any{
		"description": "Take 500 mg",
		"type":        "medication",
	})
	createTask(t, s, map[string]any{
		"description": "Take 1 tablet",
		"type":        "medication",
	})
	if w, resp := doJSON(t, s, http.MethodPost, "/api/tasks/"+medID+"/complete", nil); w.Code != http.StatusOK {
		t.Fatalf("complete: %d %v", w.Code, resp)
	}

	w, resp := doJSON(t, s, http.MethodGet, "/api/tasks/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status %d body %v", w.Code, resp)
	}
	stats := resp["stats"].(map[string]any)
	if stats["total"].(float64) != 3 || stats["completed"].(float64) != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}

	w, resp = doJSON(t, s, http.MethodGet, "/api/medications/compliance", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("compliance: status %d body %v", w.Code, resp)
	}
	compliance := resp["compliance"].(map[string]any)
	if compliance["total"].(float64) != 2 || compliance["taken"].(float64) != 1 {
		t.Fatalf("unexpected compliance: %v", compliance)
	}
	if compliance["allTaken"] != false {
		t.Fatalf("allTaken must be false with one dose pending: %v", compliance)
	}
}

func TestNoteEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, resp := doJSON(t, s, http.MethodPost, "/api/notes", map[string]any{"text": "Remember the keys"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create note: status %d body %v", w.Code, resp)
	}
	noteID := resp["note"].(map[string]any)["id"].(string)

	w, resp = doJSON(t, s, http.MethodPost, "/api/notes", map[string]any{"text": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank note, got %d %v", w.Code, resp)
	}

	w, resp = doJSON(t, s, http.MethodGet, "/api/notes", nil)
	if w.Code != http.StatusOK || resp["count"].(float64) != 1 {
		t.Fatalf("list notes: status %d body %v", w.Code, resp)
	}

	w, resp = doJSON(t, s, http.MethodDelete, "/api/notes/"+noteID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete note: status %d body %v", w.Code, resp)
	}
	w, resp = doJSON(t, s, http.MethodGet, "/api/notes", nil)
	if w.Code != http.StatusOK || resp["count"].(float64) != 0 {
		t.Fatalf("notes not empty after delete: %v", resp)
	}
}

func TestListEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, resp := doJSON(t, s, http.MethodPost, "/api/lists", map[string]any{
		"name":  "groceries",
		"items": []string{"milk"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create list: status %d body %v", w.Code, resp)
	}
	listID := resp["list"].(map[string]any)["id"].(string)

	w, resp = doJSON(t, s, http.MethodPost, "/api/lists/"+listID+"/items", map[string]any{"item": "bread"})
	if w.Code != http.StatusOK {
		t.Fatalf("add item: status %d body %v", w.Code, resp)
	}
	items := resp["list"].(map[string]any)["items"].([]any)
	if len(items) != 2 || items[1] != "bread" {
		t.Fatalf("item not appended: %v", items)
	}

	w, resp = doJSON(t, s, http.MethodDelete, "/api/lists/"+listID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete list: status %d body %v", w.Code, resp)
	}

	// Undo brings the list back under a new id.
	w, resp = doJSON(t, s, http.MethodPost, "/api/undo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("undo: status %d body %v", w.Code, resp)
	}
	restored := resp["list"].(map[string]any)
	if restored["id"] == listID || restored["name"] != "groceries" {
		t.Fatalf("unexpected restored list: %v", restored)
	}
}

