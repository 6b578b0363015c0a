package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/cutscenes/internal/database/repository"
	"github.com/jask/cutscenes/internal/token"
)

// DemoID is the stable id of the seeded demo cutscene.
var DemoID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("cutscene:demo")).String()

// SeedDefaults stores a small demo cutscene when the database has none.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB, specs repository.SpecLookup) error {
	repo := repository.NewCutsceneRepo(db)
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list cutscenes: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	seq := token.NewSequence(DemoID, "Demo: gate opening")
	add := func(tag string, set func(t *token.Token)) error {
		spec, err := specs.Lookup(tag)
		if err != nil {
			return err
		}
		t := token.New(spec)
		if set != nil {
			set(t)
		}
		seq.Append(t)
		return nil
	}
	field := func(t *token.Token, name string, v any) {
		if i := t.FieldByName(name); i >= 0 {
			_ = t.Set(i, v)
		}
	}

	steps := []struct {
		tag string
		set func(*token.Token)
	}{
		{"fade", func(t *token.Token) { field(t, "direction", "in") }},
		{"dialogue", func(t *token.Token) {
			field(t, "speaker", &token.Reference{ID: "guard"})
			field(t, "line", "Halt! Nobody passes the gate after dark.")
		}},
		{"play_animation", func(t *token.Token) {
			id := seq.AddFuture("gate opened")
			field(t, "target", &token.Reference{ID: "gate"})
			field(t, "animation", "open")
			field(t, "done", &token.FutureRef{ID: id})
		}},
		{"camera_shake", nil},
		{"await_future", func(t *token.Token) { field(t, "future", &token.FutureRef{ID: 1}) }},
		{"wait", nil},
	}
	for _, s := range steps {
		if err := add(s.tag, s.set); err != nil {
			return fmt.Errorf("seed demo: %w", err)
		}
	}
	return repo.Save(ctx, seq)
}
