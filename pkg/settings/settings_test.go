package settings

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-go-golems/spelunker/pkg/directory"
	"github.com/go-go-golems/spelunker/pkg/planner"
	"github.com/go-go-golems/spelunker/pkg/world"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
poll-interval: 50ms
seed: 7
directory:
  policy: reject-duplicates
speech:
  first-keyword-only: true
world:
  width: 2
  height: 2
  layout: |
    W G
    S .
planner:
  kind: scripted
  script:
    - forward
    - turn-right
    - Grab
simulator:
  await-role: speleologist
`

func loadYAML(t *testing.T, config string) *Settings {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(config)))
	s, err := Load(v)
	require.NoError(t, err)
	return s
}

func TestDefaults(t *testing.T) {
	s, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, time.Second, s.PollInterval)
	assert.Equal(t, PlannerExplorer, s.Planner.Kind)
	assert.Equal(t, "navigator", s.Simulator.AwaitRole)

	cave, err := s.Cave()
	require.NoError(t, err)
	assert.Equal(t, world.ParseDefaultLayout(), cave)

	p, err := s.NewPlanner(cave)
	require.NoError(t, err)
	assert.IsType(t, &planner.Explorer{}, p)
}

func TestLoadFromYAML(t *testing.T) {
	s := loadYAML(t, testConfig)
	assert.Equal(t, 50*time.Millisecond, s.PollInterval)
	assert.Equal(t, int64(7), s.Seed)
	assert.True(t, s.Speech.FirstKeywordOnly)
	assert.Equal(t, "speleologist", s.Simulator.AwaitRole)

	d, err := s.NewDirectory()
	require.NoError(t, err)
	require.NoError(t, d.Register(context.Background(), "a", "environment"))
	assert.ErrorIs(t, d.Register(context.Background(), "b", "environment"), directory.ErrRoleTaken)

	cave, err := s.Cave()
	require.NoError(t, err)
	assert.Equal(t, world.Cell{X: 1, Y: 2}, cave.Wumpus)
	assert.Equal(t, world.Cell{X: 2, Y: 2}, cave.Gold)

	script, err := s.Script()
	require.NoError(t, err)
	assert.Equal(t, []world.Action{world.Forward, world.TurnRight, world.Grab}, script)

	p, err := s.NewPlanner(cave)
	require.NoError(t, err)
	assert.IsType(t, &planner.Scripted{}, p)
}

func TestSeededCodecsAreReproducible(t *testing.T) {
	s := loadYAML(t, testConfig)
	a, b := s.NewCodec(1), s.NewCodec(1)
	p := world.Percept{Breeze: true, Stench: true}
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.EncodePercept(p), b.EncodePercept(p))
	}
}

func TestInvalidSettings(t *testing.T) {
	v := viper.New()
	v.Set("directory.policy", "last-wins")
	_, err := Load(v)
	assert.ErrorIs(t, err, directory.ErrUnknownPolicy)

	v = viper.New()
	v.Set("poll-interval", "0s")
	_, err = Load(v)
	assert.Error(t, err)

	s := NewSettings()
	s.Planner.Kind = "oracle"
	_, err = s.NewPlanner(world.ParseDefaultLayout())
	assert.ErrorIs(t, err, ErrUnknownPlanner)

	s.Planner.Kind = PlannerScripted
	s.Planner.Script = []string{"jump"}
	_, err = s.NewPlanner(world.ParseDefaultLayout())
	assert.ErrorIs(t, err, world.ErrUnknownAction)
}
