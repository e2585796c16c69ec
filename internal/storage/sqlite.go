package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/craftkontrol/memoboard/internal/model"
)

// Timestamps are written with a fixed-width fraction so that the text
// ORDER BY in ListActions sorts in time order; RFC3339Nano trims trailing
// zeros and breaks lexicographic ordering within a second. Reads stay
// lenient about fraction width.
const (
	sqliteTimeWriteLayout = "2006-01-02T15:04:05.000000000Z07:00"
	sqliteTimeReadLayout  = time.RFC3339Nano
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in model.Task) (model.Task, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	var dosage any
	var taken any
	if in.MedicationInfo != nil {
		dosage = in.MedicationInfo.Dosage
		taken = boolInt(in.MedicationInfo.Taken)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, description, date, time, type, priority, status, recurrence,
			parent_task_id, recurring_instance, medication_dosage, medication_taken,
			created_at, completed_at, snoozed_until, updated_at, last_reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Description, in.Date, in.Time, in.Type, in.Priority, in.Status, in.Recurrence,
		in.ParentTaskID, boolInt(in.RecurringInstance), dosage, taken,
		mustTime(in.CreatedAt), nullTime(in.CompletedAt), nullTime(in.SnoozedUntil),
		nullTime(in.UpdatedAt), nullTime(in.LastReviewedAt),
	)
	if err != nil {
		return model.Task{}, err
	}
	return in, nil
}

const taskColumns = `id, description, date, time, type, priority, status, recurrence,
	parent_task_id, recurring_instance, medication_dosage, medication_taken,
	created_at, completed_at, snoozed_until, updated_at, last_reviewed_at`

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, in model.Task) error {
	var dosage any
	var taken any
	if in.MedicationInfo != nil {
		dosage = in.MedicationInfo.Dosage
		taken = boolInt(in.MedicationInfo.Taken)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET description = ?, date = ?, time = ?, type = ?, priority = ?, status = ?,
			recurrence = ?, parent_task_id = ?, recurring_instance = ?,
			medication_dosage = ?, medication_taken = ?, completed_at = ?,
			snoozed_until = ?, updated_at = ?, last_reviewed_at = ?
		WHERE id = ?`,
		in.Description, in.Date, in.Time, in.Type, in.Priority, in.Status,
		in.Recurrence, in.ParentTaskID, boolInt(in.RecurringInstance),
		dosage, taken, nullTime(in.CompletedAt),
		nullTime(in.SnoozedUntil), nullTime(in.UpdatedAt), nullTime(in.LastReviewedAt),
		in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Date != "" {
		clauses = append(clauses, "date = ?")
		args = append(args, filter.Date)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY date ASC, time ASC, created_at ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateNote(ctx context.Context, in model.Note) (model.Note, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (id, text, created_at) VALUES (?, ?, ?)`,
		in.ID, in.Text, mustTime(in.CreatedAt),
	)
	if err != nil {
		return model.Note{}, err
	}
	return in, nil
}

func (r *SQLiteRepository) GetNote(ctx context.Context, id string) (model.Note, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, text, created_at FROM notes WHERE id = ?`, id)
	note, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Note{}, ErrNotFound
		}
		return model.Note{}, err
	}
	return note, nil
}

func (r *SQLiteRepository) UpdateNote(ctx context.Context, in model.Note) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notes SET text = ? WHERE id = ?`, in.Text, in.ID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteNote(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListNotes(ctx context.Context, filter ListFilter) ([]model.Note, error) {
	args := make([]any, 0, 2)
	query := `SELECT id, text, created_at FROM notes ORDER BY created_at ASC` +
		applyPagination(&args, filter.Limit, filter.Offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Note, 0)
	for rows.Next() {
		note, scanErr := scanNote(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, note)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateList(ctx context.Context, in model.List) (model.List, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	items, err := json.Marshal(in.Items)
	if err != nil {
		return model.List{}, fmt.Errorf("encode list items: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO lists (id, name, items, created_at) VALUES (?, ?, ?, ?)`,
		in.ID, in.Name, string(items), mustTime(in.CreatedAt),
	)
	if err != nil {
		return model.List{}, err
	}
	return in, nil
}

func (r *SQLiteRepository) GetList(ctx context.Context, id string) (model.List, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, items, created_at FROM lists WHERE id = ?`, id)
	list, err := scanList(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.List{}, ErrNotFound
		}
		return model.List{}, err
	}
	return list, nil
}

func (r *SQLiteRepository) UpdateList(ctx context.Context, in model.List) error {
	items, err := json.Marshal(in.Items)
	if err != nil {
		return fmt.Errorf("encode list items: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE lists SET name = ?, items = ? WHERE id = ?`,
		in.Name, string(items), in.ID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteList(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListLists(ctx context.Context, filter ListFilter) ([]model.List, error) {
	args := make([]any, 0, 2)
	query := `SELECT id, name, items, created_at FROM lists ORDER BY created_at ASC` +
		applyPagination(&args, filter.Limit, filter.Offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.List, 0)
	for rows.Next() {
		list, scanErr := scanList(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, list)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateAction(ctx context.Context, in model.Action) (model.Action, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	payload, err := json.Marshal(in.Payload)
	if err != nil {
		return model.Action{}, fmt.Errorf("encode action payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO action_history (id, type, payload, timestamp, undone)
		VALUES (?, ?, ?, ?, ?)`,
		in.ID, in.Type, string(payload), mustTime(in.Timestamp), boolInt(in.Undone),
	)
	if err != nil {
		return model.Action{}, err
	}
	return in, nil
}

func (r *SQLiteRepository) GetAction(ctx context.Context, id string) (model.Action, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, payload, timestamp, undone FROM action_history WHERE id = ?`, id)
	action, err := scanAction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Action{}, ErrNotFound
		}
		return model.Action{}, err
	}
	return action, nil
}

func (r *SQLiteRepository) UpdateAction(ctx context.Context, in model.Action) error {
	payload, err := json.Marshal(in.Payload)
	if err != nil {
		return fmt.Errorf("encode action payload: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE action_history SET type = ?, payload = ?, timestamp = ?, undone = ?
		WHERE id = ?`,
		in.Type, string(payload), mustTime(in.Timestamp), boolInt(in.Undone), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteAction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM action_history WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListActions(ctx context.Context, filter ActionListFilter) ([]model.Action, error) {
	query := `SELECT id, type, payload, timestamp, undone FROM action_history`
	args := make([]any, 0, 3)
	if filter.Undone != nil {
		query += ` WHERE undone = ?`
		args = append(args, boolInt(*filter.Undone))
	}
	query += ` ORDER BY timestamp ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Action, 0)
	for rows.Next() {
		action, scanErr := scanAction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, action)
	}
	return out, rows.Err()
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeWriteLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeWriteLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeReadLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeReadLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var out model.Task
	var recurring int
	var dosage sql.NullString
	var taken sql.NullInt64
	var created string
	var completed, snoozed, updated, reviewed sql.NullString
	if err := s.Scan(&out.ID, &out.Description, &out.Date, &out.Time, &out.Type,
		&out.Priority, &out.Status, &out.Recurrence, &out.ParentTaskID, &recurring,
		&dosage, &taken, &created, &completed, &snoozed, &updated, &reviewed); err != nil {
		return model.Task{}, err
	}
	out.RecurringInstance = recurring == 1
	if taken.Valid {
		out.MedicationInfo = &model.MedicationInfo{Dosage: dosage.String, Taken: taken.Int64 == 1}
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return model.Task{}, err
	}
	out.CreatedAt = createdAt
	if out.CompletedAt, err = parseNullableTime(completed); err != nil {
		return model.Task{}, err
	}
	if out.SnoozedUntil, err = parseNullableTime(snoozed); err != nil {
		return model.Task{}, err
	}
	if out.UpdatedAt, err = parseNullableTime(updated); err != nil {
		return model.Task{}, err
	}
	if out.LastReviewedAt, err = parseNullableTime(reviewed); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

func scanNote(s scanner) (model.Note, error) {
	var out model.Note
	var created string
	if err := s.Scan(&out.ID, &out.Text, &created); err != nil {
		return model.Note{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return model.Note{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func scanList(s scanner) (model.List, error) {
	var out model.List
	var items string
	var created string
	if err := s.Scan(&out.ID, &out.Name, &items, &created); err != nil {
		return model.List{}, err
	}
	if items != "" {
		if err := json.Unmarshal([]byte(items), &out.Items); err != nil {
			return model.List{}, fmt.Errorf("decode list items: %w", err)
		}
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return model.List{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func scanAction(s scanner) (model.Action, error) {
	var out model.Action
	var payload string
	var timestamp string
	var undone int
	if err := s.Scan(&out.ID, &out.Type, &payload, &timestamp, &undone); err != nil {
		return model.Action{}, err
	}
	if err := json.Unmarshal([]byte(payload), &out.Payload); err != nil {
		return model.Action{}, fmt.Errorf("decode action payload: %w", err)
	}
	ts, err := parseRequiredTime(timestamp)
	if err != nil {
		return model.Action{}, err
	}
	out.Timestamp = ts
	out.Undone = undone == 1
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
