package mission

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const insertMissionSQL = `
INSERT INTO missions (name, vehicle)
VALUES (?, ?)`

const insertMessageSQL = `
INSERT INTO messages (topic,
                      timestamp_ns,
                      payload)
VALUES (?, ?, ?)`

// Message is one raw log row as written by a Store.
type Message struct {
	Topic       string
	TimestampNs int64
	Payload     []byte
}

// Store writes mission logs. It is the recording-side counterpart of
// Source and is used by the bagpack tool and by tests to build logs.
type Store struct {
	dbPath string

	db     *sql.DB
	dbOnce sync.Once
	dbErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewStore creates a store for the given path. The database file and
// schema are created lazily on first write.
func NewStore(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) getDB() (*sql.DB, error) {
	s.dbOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", s.dbPath))
		if err != nil {
			s.dbErr = err
			return
		}
		if _, err = db.Exec(schemaSQL); err != nil {
			_ = db.Close()
			s.dbErr = err
			return
		}
		s.db = db
	})
	return s.db, s.dbErr
}

// CreateMission records mission metadata and returns its ID.
func (s *Store) CreateMission(name, vehicle string) (missionID int64, err error) {
	db, err := s.getDB()
	if err != nil {
		return 0, fmt.Errorf("getting connection: %w", err)
	}

	stmt, err := db.Prepare(insertMissionSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.Exec(name, vehicle)
	if err != nil {
		return 0, fmt.Errorf("inserting mission: %w", err)
	}
	return result.LastInsertId()
}

// BatchInsertMessages writes messages in a single transaction.
func (s *Store) BatchInsertMessages(messages []Message) (err error) {
	if len(messages) == 0 {
		return nil
	}

	db, err := s.getDB()
	if err != nil {
		return fmt.Errorf("getting connection: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(insertMessageSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for _, m := range messages {
		if _, err = stmt.Exec(m.Topic, m.TimestampNs, m.Payload); err != nil {
			return fmt.Errorf("inserting message on %s: %w", m.Topic, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close closes the database connection. Safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.db != nil {
			s.closeErr = s.db.Close()
			s.db = nil
		}
	})
	return s.closeErr
}
