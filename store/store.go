package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"taskflow/plan"
)

// Store manages the SQLite database for plans
type Store struct {
	db *sql.DB
}

// NewStore opens (and if needed creates) the plan database
func NewStore(dbPath string) (*Store, error) {
	if err := ensureDir(filepath.Dir(dbPath)); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Health verifies the database connection is alive
func (s *Store) Health() error {
	return s.db.Ping()
}

func (s *Store) initSchema() error {
	schema := `
	-- Plans with their tasks as a JSON document
	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		goal TEXT NOT NULL,
		timeframe TEXT,
		start_date TEXT,
		tasks_json TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Audit trail of LLM generation calls
	CREATE TABLE IF NOT EXISTS generation_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		plan_id TEXT,
		prompt TEXT,
		response TEXT,
		tokens_used INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (plan_id) REFERENCES plans(id) ON DELETE CASCADE
	);

	-- Indexes
	CREATE INDEX IF NOT EXISTS idx_plans_created ON plans(created_at);
	CREATE INDEX IF NOT EXISTS idx_logs_plan ON generation_logs(plan_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SavePlan inserts a new plan
func (s *Store) SavePlan(p *plan.Plan) error {
	tasksJSON, err := json.Marshal(p.Tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO plans (id, goal, timeframe, start_date, tasks_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Goal, p.Timeframe, p.StartDate, string(tasksJSON), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}
	return nil
}

// GetPlan retrieves a plan by id
func (s *Store) GetPlan(id string) (*plan.Plan, error) {
	var p plan.Plan
	var tasksJSON string

	err := s.db.QueryRow(`
		SELECT id, goal, timeframe, start_date, tasks_json, created_at, updated_at
		FROM plans WHERE id = ?
	`, id).Scan(&p.ID, &p.Goal, &p.Timeframe, &p.StartDate, &tasksJSON, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, &plan.NotFoundError{Kind: "plan", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}

	if err := json.Unmarshal([]byte(tasksJSON), &p.Tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tasks: %w", err)
	}
	return &p, nil
}

// ListPlans returns the newest plans up to limit
func (s *Store) ListPlans(limit int) ([]*plan.Plan, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, goal, timeframe, start_date, tasks_json, created_at, updated_at
		FROM plans ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	return scanPlans(rows)
}

// AllPlans returns every stored plan, newest first
func (s *Store) AllPlans() ([]*plan.Plan, error) {
	rows, err := s.db.Query(`
		SELECT id, goal, timeframe, start_date, tasks_json, created_at, updated_at
		FROM plans ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	return scanPlans(rows)
}

func scanPlans(rows *sql.Rows) ([]*plan.Plan, error) {
	plans := []*plan.Plan{}
	for rows.Next() {
		var p plan.Plan
		var tasksJSON string
		if err := rows.Scan(&p.ID, &p.Goal, &p.Timeframe, &p.StartDate, &tasksJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		if err := json.Unmarshal([]byte(tasksJSON), &p.Tasks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tasks: %w", err)
		}
		plans = append(plans, &p)
	}
	return plans, rows.Err()
}

// UpdatePlan rewrites a plan's content, bumping updated_at
func (s *Store) UpdatePlan(p *plan.Plan) error {
	tasksJSON, err := json.Marshal(p.Tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.Exec(`
		UPDATE plans SET goal = ?, timeframe = ?, start_date = ?, tasks_json = ?, updated_at = ?
		WHERE id = ?
	`, p.Goal, p.Timeframe, p.StartDate, string(tasksJSON), p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if n == 0 {
		return &plan.NotFoundError{Kind: "plan", ID: p.ID}
	}
	return nil
}

// DeletePlan removes a plan and its generation logs
func (s *Store) DeletePlan(id string) error {
	result, err := s.db.Exec(`DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if n == 0 {
		return &plan.NotFoundError{Kind: "plan", ID: id}
	}
	// Cascade is not guaranteed without foreign_keys pragma
	_, _ = s.db.Exec(`DELETE FROM generation_logs WHERE plan_id = ?`, id)
	return nil
}

// GenerationLog is one recorded LLM call
type GenerationLog struct {
	ID         int       `json:"id"`
	PlanID     string    `json:"plan_id"`
	Prompt     string    `json:"prompt"`
	Response   string    `json:"response"`
	TokensUsed int       `json:"tokens_used"`
	CreatedAt  time.Time `json:"created_at"`
}

// LogGeneration records an LLM call for a plan
func (s *Store) LogGeneration(planID, prompt, response string, tokensUsed int) error {
	_, err := s.db.Exec(`
		INSERT INTO generation_logs (plan_id, prompt, response, tokens_used, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, planID, prompt, response, tokensUsed, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert generation log: %w", err)
	}
	return nil
}

// GenerationLogs returns the logs for a plan, oldest first
func (s *Store) GenerationLogs(planID string) ([]GenerationLog, error) {
	rows, err := s.db.Query(`
		SELECT id, plan_id, prompt, response, tokens_used, created_at
		FROM generation_logs WHERE plan_id = ? ORDER BY id
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation logs: %w", err)
	}
	defer rows.Close()

	logs := []GenerationLog{}
	for rows.Next() {
		var l GenerationLog
		if err := rows.Scan(&l.ID, &l.PlanID, &l.Prompt, &l.Response, &l.TokensUsed, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
