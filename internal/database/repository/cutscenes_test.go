package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/require"

	"github.com/jask/cutscenes/internal/catalog"
	"github.com/jask/cutscenes/internal/database"
	"github.com/jask/cutscenes/internal/database/repository"
	"github.com/jask/cutscenes/internal/token"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	migrations, err := filepath.Abs("../migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, migrations))
	return db
}

func newToken(t *testing.T, c *catalog.Catalog, tag string) *token.Token {
	t.Helper()
	spec, err := c.Lookup(tag)
	require.NoError(t, err)
	return token.New(spec)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := repository.NewCutsceneRepo(db)
	c := catalog.Builtin()

	seq := token.NewSequence("cs-1", "Intro")
	fid := seq.AddFuture("walked in")

	move := newToken(t, c, "move_to")
	move.Name = "Walk in"
	require.NoError(t, move.Set(move.FieldByName("target"), &token.Reference{ID: "player"}))
	require.NoError(t, move.Set(move.FieldByName("position"), token.Vec2{X: 3, Y: -1.5}))
	require.NoError(t, move.Set(move.FieldByName("done"), &token.FutureRef{ID: fid}))
	seq.Append(move)

	tint := newToken(t, c, "tint")
	red, _ := colorful.Hex("#ff0000")
	require.NoError(t, tint.Set(tint.FieldByName("color"), red))
	seq.Append(tint)

	spawn := newToken(t, c, "spawn")
	require.NoError(t, spawn.Set(spawn.FieldByName("count"), 4))
	seq.Append(spawn)

	require.NoError(t, repo.Save(ctx, seq))

	got, err := repo.Load(ctx, "cs-1", c)
	require.NoError(t, err)
	require.Equal(t, "Intro", got.Name)
	require.Equal(t, 3, got.Count())
	require.Equal(t, "Walk in", got.At(0).Name)
	require.Equal(t, &token.Reference{ID: "player"}, got.At(0).Field(0).Value)
	require.Equal(t, token.Vec2{X: 3, Y: -1.5}, got.At(0).Field(1).Value)
	require.Equal(t, &token.FutureRef{ID: fid}, got.At(0).Field(3).Value)
	require.Equal(t, "#ff0000", got.At(1).Field(1).Value.(colorful.Color).Hex())
	require.Equal(t, (*token.Reference)(nil), got.At(1).Field(0).Value)
	require.Equal(t, 4, got.At(2).Field(2).Value)

	f, ok := got.Future(fid)
	require.True(t, ok)
	require.Equal(t, "walked in", f.Name)
	require.Equal(t, fid+1, got.AddFuture("next"))
}

func TestSaveReplacesTokens(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := repository.NewCutsceneRepo(db)
	c := catalog.Builtin()

	seq := token.NewSequence("cs-2", "Swap")
	seq.Append(newToken(t, c, "wait"))
	seq.Append(newToken(t, c, "fade"))
	require.NoError(t, repo.Save(ctx, seq))

	require.NoError(t, seq.Swap(0, 1))
	_, err := seq.RemoveAt(1)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, seq))

	got, err := repo.Load(ctx, "cs-2", c)
	require.NoError(t, err)
	require.Equal(t, 1, got.Count())
	require.Equal(t, "fade", got.At(0).Type)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 1, list[0].TokenCount)
}

func TestSaveRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := repository.NewCutsceneRepo(db)
	c := catalog.Builtin()

	seq := token.NewSequence("cs-5", "Keep")
	seq.Append(newToken(t, c, "wait"))
	seq.Append(newToken(t, c, "fade"))
	require.NoError(t, repo.Save(ctx, seq))

	// futures are written last, after the old tokens are already gone
	_, err := db.Exec(`CREATE TRIGGER no_futures BEFORE INSERT ON futures BEGIN SELECT RAISE(ABORT, 'futures locked'); END`)
	require.NoError(t, err)
	seq.Name = "Changed"
	_, err = seq.RemoveAt(0)
	require.NoError(t, err)
	seq.AddFuture("done")
	require.Error(t, repo.Save(ctx, seq))

	got, err := repo.Load(ctx, "cs-5", c)
	require.NoError(t, err)
	require.Equal(t, "Keep", got.Name)
	require.Equal(t, 2, got.Count())
	require.Equal(t, "wait", got.At(0).Type)
}

func TestWithTxCommitsOrRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := repository.NewCutsceneRepo(db)
	seq := token.NewSequence("cs-6", "Tx")
	require.NoError(t, repo.Save(ctx, seq))

	errStop := errors.New("stop")
	err := repository.WithTx(ctx, db, func(tx *sql.Tx) error {
		n, err := repository.DeleteAll(ctx, tx)
		require.NoError(t, err)
		require.Equal(t, int64(1), n)
		return errStop
	})
	require.True(t, errors.Is(err, errStop))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repository.WithTx(ctx, db, func(tx *sql.Tx) error {
		_, err := repository.DeleteAll(ctx, tx)
		return err
	}))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestRenameAndDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := repository.NewCutsceneRepo(db)
	c := catalog.Builtin()

	seq := token.NewSequence("cs-3", "Old")
	seq.Append(newToken(t, c, "wait"))
	require.NoError(t, repo.Save(ctx, seq))

	require.NoError(t, repo.Rename(ctx, "cs-3", "New"))
	got, err := repo.Load(ctx, "cs-3", c)
	require.NoError(t, err)
	require.Equal(t, "New", got.Name)

	require.NoError(t, repo.Delete(ctx, "cs-3"))
	_, err = repo.Load(ctx, "cs-3", c)
	require.True(t, errors.Is(err, repository.ErrNotFound))
	require.True(t, errors.Is(repo.Delete(ctx, "cs-3"), repository.ErrNotFound))
	require.True(t, errors.Is(repo.Rename(ctx, "cs-3", "x"), repository.ErrNotFound))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tokens`).Scan(&n))
	require.Equal(t, 0, n)
}

func TestLoadUnknownType(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO cutscenes(id, name) VALUES ('cs-4', 'x')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tokens(cutscene_id, position, type, name, fields) VALUES ('cs-4', 0, 'teleport', 't', '{}')`)
	require.NoError(t, err)

	_, err = repository.NewCutsceneRepo(db).Load(ctx, "cs-4", catalog.Builtin())
	require.True(t, errors.Is(err, catalog.ErrUnknownType))
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	c := catalog.Builtin()
	require.NoError(t, database.SeedDefaults(ctx, db, c))
	require.NoError(t, database.SeedDefaults(ctx, db, c))

	repo := repository.NewCutsceneRepo(db)
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, database.DemoID, list[0].ID)

	seq, err := repo.Load(ctx, database.DemoID, c)
	require.NoError(t, err)
	require.Equal(t, 6, seq.Count())
	require.Len(t, seq.Futures(), 1)

	v, dirty, err := database.SchemaVersion(db, "../migrations")
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(1), v)
}

func TestFieldsCodecIgnoresUnknownNames(t *testing.T) {
	c := catalog.Builtin()
	tok := newToken(t, c, "set_flag")
	require.NoError(t, repository.UnmarshalFields(tok, []byte(`{"FLAG":"door_open","colour":"red"}`)))
	require.Equal(t, "door_open", tok.Field(0).Value)
	require.Equal(t, true, tok.Field(1).Value)

	require.Error(t, repository.UnmarshalFields(tok, []byte(`{"value":"yes"}`)))

	data, err := repository.MarshalFields(tok)
	require.NoError(t, err)
	require.JSONEq(t, `{"flag":"door_open","value":true}`, string(data))
}
