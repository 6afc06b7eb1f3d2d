package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mkarimof/quizduel/pkg/game"
	"github.com/mkarimof/quizduel/pkg/questions"
	"github.com/mkarimof/quizduel/pkg/repositories/models"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string, migrations string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	dir, err := os.ReadDir(migrations)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}

	for _, entry := range dir {
		if entry.IsDir() {
			continue
		}

		migrationPath := filepath.Join(migrations, entry.Name())
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}

		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			return nil, fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) GetOrCreateUser(ctx context.Context, playerID string) (*models.User, error) {
	q := `
	INSERT INTO users (player_id, total_score) VALUES (?, 0)
	ON CONFLICT (player_id) DO NOTHING;
	`
	if _, err := r.db.ExecContext(ctx, q, playerID); err != nil {
		return nil, fmt.Errorf("failed to insert user: %v", err)
	}

	return r.GetUser(ctx, playerID)
}

func (r *SQLiteRepository) GetUser(ctx context.Context, playerID string) (*models.User, error) {
	q := `
	SELECT player_id, total_score FROM users WHERE player_id = ?;
	`
	user := &models.User{}
	if err := r.db.QueryRowContext(ctx, q, playerID).Scan(&user.ID, &user.TotalScore); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan user: %v", err)
	}

	return user, nil
}

func (r *SQLiteRepository) AddUserScore(ctx context.Context, playerID string, delta int) error {
	q := `
	UPDATE users SET total_score = total_score + ? WHERE player_id = ?;
	`
	if _, err := r.db.ExecContext(ctx, q, delta, playerID); err != nil {
		return fmt.Errorf("failed to update user score: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) InsertQuestions(ctx context.Context, qs []questions.Question) ([]questions.Question, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	inserted := make([]questions.Question, 0, len(qs))
	for _, question := range qs {
		if question.ID == "" {
			question.ID = uuid.New().String()
		}

		q := `
		INSERT OR REPLACE INTO questions (question_id, text, category, option1, option2, option3, option4)
		VALUES (?, ?, ?, ?, ?, ?, ?);
		`
		_, err := tx.ExecContext(ctx, q, question.ID, question.Text, question.Category,
			question.Options[0], question.Options[1], question.Options[2], question.Options[3])
		if err != nil {
			return nil, fmt.Errorf("failed to insert question: %v", err)
		}
		inserted = append(inserted, question)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return inserted, nil
}

func (r *SQLiteRepository) ListQuestions(ctx context.Context) ([]questions.Question, error) {
	q := `
	SELECT question_id, text, category, option1, option2, option3, option4 FROM questions;
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %v", err)
	}
	defer rows.Close()

	var listed []questions.Question
	for rows.Next() {
		var question questions.Question
		if err := rows.Scan(&question.ID, &question.Text, &question.Category,
			&question.Options[0], &question.Options[1], &question.Options[2], &question.Options[3]); err != nil {
			return nil, fmt.Errorf("failed to scan question: %v", err)
		}
		listed = append(listed, question)
	}

	return listed, rows.Err()
}

func (r *SQLiteRepository) SaveSession(ctx context.Context, snapshot game.Snapshot) error {
	blob, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	q := `
	INSERT OR REPLACE INTO sessions (game_id, status, created_at, snapshot)
	VALUES (?, ?, ?, ?);
	`
	_, err = r.db.ExecContext(ctx, q, snapshot.ID, snapshot.Status, snapshot.CreatedAt.UnixMilli(), blob)
	if err != nil {
		return fmt.Errorf("failed to insert session: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) LoadActiveSessions(ctx context.Context) ([]game.Snapshot, error) {
	q := `
	SELECT snapshot FROM sessions WHERE status = ?;
	`
	rows, err := r.db.QueryContext(ctx, q, game.StatusInProgress.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %v", err)
	}
	defer rows.Close()

	var snapshots []game.Snapshot
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("failed to scan session: %v", err)
		}
		snapshot, err := decodeSnapshot(blob)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}
