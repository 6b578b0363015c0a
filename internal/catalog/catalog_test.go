package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/cutscenes/internal/drawer"
	"github.com/jask/cutscenes/internal/token"
)

const userCatalog = `version = 1

[scene]
objects = ["player", "guard", " ", "door"]

[[type]]
tag = "open_door"
label = "Open Door"
produces = true

  [[type.field]]
  name = "door"
  kind = "reference"
  default = "door"

  [[type.field]]
  name = "offset"
  kind = "vector2"
  default = [1, 2.5]

  [[type.field]]
  name = "glow"
  kind = "color"
  default = "00ff00"

  [[type.field]]
  name = "tries"
  kind = "int"
  default = 3

[[type]]
tag = "wait"
label = "Pause"

  [[type.field]]
  name = "frames"
  kind = "int"
`

func TestBuiltinsHaveDrawers(t *testing.T) {
	c := Builtin()
	require.Len(t, c.Specs(), 10)
	require.NoError(t, drawer.NewRegistry().Validate(c.Specs()))

	spec, ok := c.Spec("play_animation")
	require.True(t, ok)
	require.True(t, spec.Produces)
	require.Empty(t, c.SceneObjects())
}

func TestLoadEmptyPathIsBuiltins(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	require.Len(t, c.Specs(), 10)
}

func TestLoadMergesUserTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(userCatalog), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Specs(), 11)

	spec, ok := c.Spec("open_door")
	require.True(t, ok)
	require.Equal(t, "Open Door", spec.Label)
	require.True(t, spec.Produces)
	require.Len(t, spec.Fields, 4)

	tok := token.New(spec)
	require.Equal(t, &token.Reference{ID: "door"}, tok.Field(0).Value)
	require.Equal(t, token.Vec2{X: 1, Y: 2.5}, tok.Field(1).Value)
	require.Equal(t, 3, tok.Field(3).Value)

	wait, _ := c.Spec("wait")
	require.Equal(t, "Pause", wait.Label)
	require.Equal(t, "frames", wait.Fields[0].Name)

	require.Equal(t, []string{"door", "guard", "player"}, c.SceneObjects())
	require.True(t, c.Has("guard"))
	require.False(t, c.Has("camera"))
}

func TestSpecsOrderedByLabel(t *testing.T) {
	specs := Builtin().Specs()
	for i := 1; i < len(specs); i++ {
		require.LessOrEqual(t, specs[i-1].Label, specs[i].Label)
	}
}

func TestLookupUnknownType(t *testing.T) {
	_, err := Builtin().Lookup("teleport")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownType))
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	cases := map[string]string{
		"version":       "version = 2\n",
		"missing tag":   "version = 1\n[[type]]\nlabel = \"x\"\n",
		"duplicate tag": "version = 1\n[[type]]\ntag = \"a\"\n[[type]]\ntag = \"a\"\n",
		"duplicate field": "version = 1\n[[type]]\ntag = \"a\"\n" +
			"[[type.field]]\nname = \"x\"\nkind = \"int\"\n[[type.field]]\nname = \"X\"\nkind = \"int\"\n",
		"missing kind":  "version = 1\n[[type]]\ntag = \"a\"\n[[type.field]]\nname = \"x\"\n",
		"empty choice":  "version = 1\n[[type]]\ntag = \"a\"\n[[type.field]]\nname = \"x\"\nkind = \"choice\"\n",
		"bad default":   "version = 1\n[[type]]\ntag = \"a\"\n[[type.field]]\nname = \"x\"\nkind = \"bool\"\ndefault = \"yes\"\n",
		"bad color":     "version = 1\n[[type]]\ntag = \"a\"\n[[type.field]]\nname = \"x\"\nkind = \"color\"\ndefault = \"zz\"\n",
		"not toml":      "version = = 1",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(data)
			require.Error(t, err)
		})
	}
}

func TestUnknownKindFailsRegistryValidation(t *testing.T) {
	c, err := Parse("version = 1\n[[type]]\ntag = \"rotate\"\n[[type.field]]\nname = \"angle\"\nkind = \"quaternion\"\n")
	require.NoError(t, err)
	err = drawer.NewRegistry().Validate(c.Specs())
	require.Error(t, err)
	require.True(t, errors.Is(err, drawer.ErrNoDrawer))
}
