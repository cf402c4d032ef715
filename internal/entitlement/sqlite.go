package entitlement

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type entitlementDoc struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	UnlockedAt string `json:"unlockedAt"`
}

// SQLiteBackend stores one JSONB document per key in the entitlements
// table created by the migrations package.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (s *SQLiteBackend) Get(ctx context.Context, key string) (string, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM entitlements WHERE key = ?`, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	var doc entitlementDoc
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return "", err
	}
	return doc.Code, nil
}

func (s *SQLiteBackend) Put(ctx context.Context, key, code string) error {
	data, err := json.Marshal(entitlementDoc{
		ID:         uuid.NewString(),
		Code:       code,
		UnlockedAt: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
	})
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO entitlements (key, data) VALUES (?, jsonb(?))
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data`,
		key, string(data),
	)
	return err
}
