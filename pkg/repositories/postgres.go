package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mkarimof/quizduel/pkg/game"
	"github.com/mkarimof/quizduel/pkg/questions"
	"github.com/mkarimof/quizduel/pkg/repositories/models"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository creates a new PostgresRepository and applies the
// .sql files in the migrations directory in name order.
// It panics if it is unable to connect to the database or to migrate.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string, migrations string) Repository {
	conn := connectDb(ctx, connStr)
	if err := migrateDb(ctx, conn, migrations); err != nil {
		panic(fmt.Sprintf("Unable to migrate database: %v\n", err))
	}
	return &PostgresRepository{
		conn: conn,
	}
}

func migrateDb(ctx context.Context, conn *pgx.Conn, migrations string) error {
	dir, err := os.ReadDir(migrations)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %v", err)
	}

	for _, entry := range dir {
		if entry.IsDir() {
			continue
		}

		migrationPath := filepath.Join(migrations, entry.Name())
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}

		if _, err := conn.Exec(ctx, string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}

	return nil
}

func connectDb(ctx context.Context, connStr string) *pgx.Conn {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		panic(fmt.Sprintf("Unable to connect to database: %v\n", err))
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		panic(fmt.Sprintf("Unable to query database: %v\n", err))
	}

	return conn
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) GetOrCreateUser(ctx context.Context, playerID string) (*models.User, error) {
	q := `
	INSERT INTO users (player_id, total_score) VALUES ($1, 0)
	ON CONFLICT (player_id) DO NOTHING;
	`
	if _, err := r.conn.Exec(ctx, q, playerID); err != nil {
		return nil, fmt.Errorf("failed to insert user: %v", err)
	}

	return r.GetUser(ctx, playerID)
}

func (r *PostgresRepository) GetUser(ctx context.Context, playerID string) (*models.User, error) {
	q := `
	SELECT player_id, total_score FROM users WHERE player_id = $1;
	`
	user := &models.User{}
	if err := r.conn.QueryRow(ctx, q, playerID).Scan(&user.ID, &user.TotalScore); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan user: %v", err)
	}

	return user, nil
}

func (r *PostgresRepository) AddUserScore(ctx context.Context, playerID string, delta int) error {
	q := `
	UPDATE users SET total_score = total_score + $1 WHERE player_id = $2;
	`
	if _, err := r.conn.Exec(ctx, q, delta, playerID); err != nil {
		return fmt.Errorf("failed to update user score: %v", err)
	}

	return nil
}

func (r *PostgresRepository) InsertQuestions(ctx context.Context, qs []questions.Question) ([]questions.Question, error) {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	inserted := make([]questions.Question, 0, len(qs))
	for _, question := range qs {
		if question.ID == "" {
			question.ID = uuid.New().String()
		}

		q := `
		INSERT INTO questions (question_id, text, category, option1, option2, option3, option4)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (question_id) DO UPDATE SET
			text = $2, category = $3, option1 = $4, option2 = $5, option3 = $6, option4 = $7;
		`
		_, err := tx.Exec(ctx, q, question.ID, question.Text, question.Category,
			question.Options[0], question.Options[1], question.Options[2], question.Options[3])
		if err != nil {
			return nil, fmt.Errorf("failed to insert question: %v", err)
		}
		inserted = append(inserted, question)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return inserted, nil
}

func (r *PostgresRepository) ListQuestions(ctx context.Context) ([]questions.Question, error) {
	q := `
	SELECT question_id, text, category, option1, option2, option3, option4 FROM questions;
	`
	rows, err := r.conn.Query(ctx, q)
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

func (r *PostgresRepository) SaveSession(ctx context.Context, snapshot game.Snapshot) error {
	blob, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	q := `
	INSERT INTO sessions (game_id, status, created_at, snapshot) VALUES ($1, $2, $3, $4)
	ON CONFLICT (game_id) DO UPDATE SET status = $2, snapshot = $4;
	`
	_, err = r.conn.Exec(ctx, q, snapshot.ID, snapshot.Status, snapshot.CreatedAt.UnixMilli(), blob)
	if err != nil {
		return fmt.Errorf("failed to insert session: %v", err)
	}

	return nil
}

func (r *PostgresRepository) LoadActiveSessions(ctx context.Context) ([]game.Snapshot, error) {
	q := `
	SELECT snapshot FROM sessions WHERE status = $1;
	`
	rows, err := r.conn.Query(ctx, q, game.StatusInProgress.String())
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
