package events

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/posfoundry/tablepos/internal/models"
)

// PostgresSink appends lifecycle events to an audit table, keeping a durable
// trail of every engine mutation independent of the snapshot store.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(config models.DatabaseConfig) (*PostgresSink, error) {
	db, err := sql.Open("postgres", config.ConnString())
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	s := &PostgresSink{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *PostgresSink) ensureSchema() error {
	_, err := p.db.Exec(`
        CREATE TABLE IF NOT EXISTS pos_events (
            id         BIGSERIAL PRIMARY KEY,
            topic      TEXT NOT NULL,
            payload    JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create pos_events table: %w", err)
	}
	return nil
}

func (p *PostgresSink) WriteMessage(topic string, msg []byte) error {
	_, err := p.db.Exec(
		"INSERT INTO pos_events (topic, payload) VALUES ($1, $2)",
		topic, msg,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event into pos_events: %w", err)
	}
	return nil
}

func (p *PostgresSink) Close() error {
	return p.db.Close()
}
