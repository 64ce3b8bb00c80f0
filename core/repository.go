package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Settings document keys.
const (
	SiteSettingsKey   = "site_settings"
	ServicesKey       = "services"
	FlowThresholdsKey = "flow_thresholds"
)

// ErrSettingNotFound is returned when no document is stored under a key.
var ErrSettingNotFound = errors.New("setting not found")

// ContentKey builds the document key for an editable page section.
func ContentKey(page, section string) string {
	return fmt.Sprintf("content:%s:%s", page, section)
}

// SettingRecord is a stored JSON document.
type SettingRecord struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SettingsRepository persists admin-editable JSON documents.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (*SettingRecord, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
}

// SettingsSchema creates the table used by PgSettingsRepository.
const SettingsSchema = `
CREATE TABLE IF NOT EXISTS admin_settings (
  key        TEXT PRIMARY KEY,
  value      JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PgSettingsRepository implements SettingsRepository using pgxpool.
type PgSettingsRepository struct {
	db *pgxpool.Pool
}

func NewPgSettingsRepository(db *pgxpool.Pool) *PgSettingsRepository {
	return &PgSettingsRepository{db: db}
}

// EnsureSchema creates the settings table if it does not exist.
func (r *PgSettingsRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, SettingsSchema)
	return err
}

func (r *PgSettingsRepository) Get(ctx context.Context, key string) (*SettingRecord, error) {
	const q = `SELECT key, value, updated_at FROM admin_settings WHERE key=$1`
	var rec SettingRecord
	var raw []byte
	if err := r.db.QueryRow(ctx, q, key).Scan(&rec.Key, &raw, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}
	rec.Value = raw
	return &rec, nil
}

func (r *PgSettingsRepository) Put(ctx context.Context, key string, value json.RawMessage) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("empty settings key")
	}
	const q = `
INSERT INTO admin_settings (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`
	_, err := r.db.Exec(ctx, q, key, []byte(value))
	return err
}
