package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jask/cutscenes/internal/token"
)

// ErrNotFound is returned when a cutscene id does not exist.
var ErrNotFound = errors.New("cutscene not found")

// SpecLookup resolves a token type tag, e.g. a catalog.
type SpecLookup interface {
	Lookup(tag string) (token.TypeSpec, error)
}

// CutsceneRepo persists sequences: one cutscenes row plus ordered tokens and futures.
type CutsceneRepo struct {
	db *sql.DB
}

func NewCutsceneRepo(db *sql.DB) *CutsceneRepo {
	return &CutsceneRepo{db: db}
}

func (r *CutsceneRepo) List(ctx context.Context) ([]Cutscene, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT c.id, c.name, c.created_at, c.updated_at,
	 (SELECT COUNT(*) FROM tokens t WHERE t.cutscene_id = c.id)
	FROM cutscenes c
	ORDER BY c.updated_at DESC, c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Cutscene
	for rows.Next() {
		var c Cutscene
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.TokenCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Load reads cutscene id. Token types are resolved through specs so fields come back
// with their current definitions.
func (r *CutsceneRepo) Load(ctx context.Context, id string, specs SpecLookup) (*token.Sequence, error) {
	var name string
	err := r.db.QueryRowContext(ctx, `SELECT name FROM cutscenes WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	seq := token.NewSequence(id, name)

	frows, err := r.db.QueryContext(ctx, `SELECT id, name FROM futures WHERE cutscene_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	var futures []token.Future
	for frows.Next() {
		var f token.Future
		if err := frows.Scan(&f.ID, &f.Name); err != nil {
			frows.Close()
			return nil, err
		}
		futures = append(futures, f)
	}
	if err := frows.Close(); err != nil {
		return nil, err
	}
	for _, f := range futures {
		seq.PutFuture(f)
	}

	trows, err := r.db.QueryContext(ctx, `SELECT type, name, fields FROM tokens WHERE cutscene_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var typ, tname, fields string
		if err := trows.Scan(&typ, &tname, &fields); err != nil {
			return nil, err
		}
		spec, err := specs.Lookup(typ)
		if err != nil {
			return nil, fmt.Errorf("cutscene %s: %w", id, err)
		}
		t := token.New(spec)
		t.Name = tname
		if err := UnmarshalFields(t, []byte(fields)); err != nil {
			return nil, fmt.Errorf("cutscene %s token %d: %w", id, seq.Count(), err)
		}
		seq.Append(t)
	}
	return seq, trows.Err()
}

// Save writes seq, replacing its stored tokens and futures in one transaction.
func (r *CutsceneRepo) Save(ctx context.Context, seq *token.Sequence) error {
	now := Now()
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return r.save(ctx, tx, seq, now)
	})
}

func (r *CutsceneRepo) save(ctx context.Context, tx *sql.Tx, seq *token.Sequence, now time.Time) error {
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO cutscenes(id, name, created_at, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 updated_at=excluded.updated_at;
	`, seq.ID, seq.Name, now, now); err != nil {
		return fmt.Errorf("upsert cutscene: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tokens WHERE cutscene_id = ?`, seq.ID); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM futures WHERE cutscene_id = ?`, seq.ID); err != nil {
		return fmt.Errorf("clear futures: %w", err)
	}
	for i, t := range seq.Tokens() {
		fields, err := MarshalFields(t)
		if err != nil {
			return fmt.Errorf("token %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO tokens(cutscene_id, position, type, name, fields) VALUES (?, ?, ?, ?, ?)`,
			seq.ID, i, t.Type, t.Name, string(fields)); err != nil {
			return fmt.Errorf("insert token %d: %w", i, err)
		}
	}
	for _, f := range seq.Futures() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO futures(cutscene_id, id, name) VALUES (?, ?, ?)`, seq.ID, f.ID, f.Name); err != nil {
			return fmt.Errorf("insert future %d: %w", f.ID, err)
		}
	}
	return nil
}

// Rename changes a cutscene's display name.
func (r *CutsceneRepo) Rename(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cutscenes SET name = ?, updated_at = ? WHERE id = ?`,
		name, Now(), id)
	if err != nil {
		return err
	}
	return expectOne(res, id)
}

// Delete removes a cutscene; tokens and futures go with it.
func (r *CutsceneRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cutscenes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res, id)
}

// DeleteAll removes every stored cutscene inside tx.
func DeleteAll(ctx context.Context, tx *sql.Tx) (int64, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM tokens`); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM futures`); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM cutscenes`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
