package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"lynx/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the record store. Read queries are promoted from the
// embedded Queries; writes that span tables run in a transaction here.
type SQLiteRepository struct {
	db *sql.DB
	*Queries
}

func fileDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// NewSQLiteRepository opens (creating if needed) the database file at dbPath
// and migrates it.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open(fileDSN(dbPath), 0)
}

// NewMemoryRepository opens a private in-memory database. It lives until the
// repository is closed.
func NewMemoryRepository() (*SQLiteRepository, error) {
	dsn := "file:lynx-" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	return open(dsn, 1)
}

func open(dsn string, maxConns int) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, Queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// DB exposes the pool for connection metrics.
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(r.Queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// AddVolunteer records volunteer details and flags the contact as a volunteer.
func (r *SQLiteRepository) AddVolunteer(ctx context.Context, v core.Volunteer) (int64, error) {
	var id int64
	err := r.inTx(ctx, func(q *Queries) error {
		var err error
		if id, err = q.CreateVolunteer(ctx, v); err != nil {
			return fmt.Errorf("create volunteer: %w", err)
		}
		if err := q.MarkVolunteer(ctx, v.ContactID); err != nil {
			return fmt.Errorf("mark volunteer: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Volunteer saved", "id", id, "contact_id", v.ContactID)
	return id, nil
}

// CreateSipNotes inserts one note per contact, all or nothing.
func (r *SQLiteRepository) CreateSipNotes(ctx context.Context, notes []core.SipNote) ([]int64, error) {
	ids := make([]int64, 0, len(notes))
	err := r.inTx(ctx, func(q *Queries) error {
		for _, n := range notes {
			id, err := q.CreateSipNote(ctx, n)
			if err != nil {
				return fmt.Errorf("create sip note for contact %d: %w", n.ContactID, err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "SIP notes saved", "count", len(ids))
	return ids, nil
}
