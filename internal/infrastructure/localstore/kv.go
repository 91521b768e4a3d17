package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// querier lo cumplen *sql.DB y *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// KV acceso clave/valor sobre la tabla local_storage.
type KV struct {
	db *sql.DB
}

// NewKV construye el acceso clave/valor.
func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

// Get devuelve el valor y si existe.
func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	return get(ctx, kv.db, key)
}

// Update ejecuta una lectura-modificación-escritura de key dentro de una transacción.
// fn recibe el valor actual ("" si no existe) y devuelve el nuevo; si fn falla no se escribe nada.
func (kv *KV) Update(ctx context.Context, key string, fn func(current string) (string, error)) error {
	tx, err := kv.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("iniciar transacción local: %w", err)
	}
	defer tx.Rollback()

	current, _, err := get(ctx, tx, key)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if err := set(ctx, tx, key, next); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("confirmar transacción local: %w", err)
	}
	return nil
}

func get(ctx context.Context, q querier, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("leer clave %s: %w", key, err)
	}
	return value, true, nil
}

func set(ctx context.Context, q querier, key, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("escribir clave %s: %w", key, err)
	}
	return nil
}
