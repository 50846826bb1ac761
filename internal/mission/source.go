package mission

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const selectMessagesSQL = `
SELECT
    topic,
    timestamp_ns,
    payload
FROM messages
ORDER BY timestamp_ns, id`

const selectTopicsSQL = `
SELECT DISTINCT topic
FROM messages
ORDER BY topic`

// Source streams typed records out of a recorded mission log in timestamp
// order, filtered through a TopicMap. It is a single-use pull iterator:
//
//	src, err := mission.OpenSource(path, topics)
//	...
//	for src.Next() {
//	    r := src.Record()
//	    ...
//	}
//	if err := src.Err(); err != nil { ... }
type Source struct {
	db     *sql.DB
	topics TopicMap

	rows    *sql.Rows
	current Record
	err     error
}

// OpenSource opens a mission log read-only. The log file must exist; a
// Source never creates or modifies it.
func OpenSource(dbPath string, topics TopicMap) (*Source, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening mission log: %w", err)
	}
	return &Source{db: db, topics: topics}, nil
}

// Topics returns the distinct topics present in the log. The pipeline uses
// this to reject configurations naming absent camera topics before any
// output is written.
func (s *Source) Topics() (topics []string, err error) {
	rows, err := s.db.Query(selectTopicsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying topics: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var topic string
		if err = rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("scanning topic: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

// Next advances to the next mapped record, skipping unmapped topics
// without decoding their payloads. It returns false at end of stream or
// on the first error; check Err afterwards.
func (s *Source) Next() bool {
	if s.err != nil {
		return false
	}
	if s.rows == nil {
		if s.rows, s.err = s.db.Query(selectMessagesSQL); s.err != nil {
			s.err = fmt.Errorf("querying messages: %w", s.err)
			return false
		}
	}

	for s.rows.Next() {
		var topic string
		var timestampNs int64
		var payload []byte
		if err := s.rows.Scan(&topic, &timestampNs, &payload); err != nil {
			s.err = fmt.Errorf("scanning message: %w", err)
			return false
		}

		kind, role, encoding, ok := s.topics.Resolve(topic)
		if !ok {
			continue
		}

		timestamp := float64(timestampNs) / 1e9
		switch kind {
		case KindPose:
			pose, err := DecodePose(timestamp, payload)
			if err != nil {
				s.err = fmt.Errorf("decoding pose at %.6f: %w", timestamp, err)
				return false
			}
			s.current = Record{Kind: KindPose, Pose: &pose}

		case KindImage:
			s.current = Record{Kind: KindImage, Image: &ImageSample{
				Timestamp: timestamp,
				Role:      role,
				Encoding:  encoding,
				Payload:   payload,
			}}
		}
		return true
	}

	s.err = s.rows.Err()
	return false
}

// Record returns the record Next advanced to.
func (s *Source) Record() Record {
	return s.current
}

// Err returns the first error encountered during iteration.
func (s *Source) Err() error {
	return s.err
}

// Close releases the row cursor and the database connection.
func (s *Source) Close() error {
	var rowsErr error
	if s.rows != nil {
		rowsErr = s.rows.Close()
	}
	if err := s.db.Close(); err != nil {
		return err
	}
	return rowsErr
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
