package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePercept_RoundTripsString(t *testing.T) {
	cases := []Percept{
		{},
		{Breeze: true},
		{Stench: true, Glitter: true},
		{Breeze: true, Stench: true, Glitter: true, Bump: true, Scream: true},
	}
	for _, p := range cases {
		got, err := ParsePercept(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got, p.String())
	}
}

func TestParsePercept_RejectsUnknownToken(t *testing.T) {
	_, err := ParsePercept("{Breeze, Draft}")
	require.ErrorIs(t, err, ErrUnknownPercept)
}

func TestParseAction(t *testing.T) {
	for _, a := range Actions {
		got, err := ParseAction(a.Symbol())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	_, err := ParseAction("forward")
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestParseActionName_IsLenient(t *testing.T) {
	cases := map[string]Action{
		"turn-left":  TurnLeft,
		"TURN_RIGHT": TurnRight,
		"forward":    Forward,
		" Climb ":    Climb,
		"grab":       Grab,
	}
	for in, want := range cases {
		got, err := ParseActionName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseActionName("jump")
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestOnlyClimbIsTerminal(t *testing.T) {
	for _, a := range Actions {
		assert.Equal(t, a == Climb, a.IsTerminal(), a.Symbol())
	}
}

func TestParseDefaultLayout(t *testing.T) {
	c := ParseDefaultLayout()
	assert.Equal(t, Cell{X: 1, Y: 1}, c.Start)
	assert.Equal(t, Cell{X: 1, Y: 3}, c.Wumpus)
	assert.Equal(t, Cell{X: 2, Y: 3}, c.Gold)
	assert.True(t, c.Pits[Cell{X: 3, Y: 1}])
	assert.True(t, c.Pits[Cell{X: 3, Y: 3}])
	assert.True(t, c.Pits[Cell{X: 4, Y: 4}])
	assert.Len(t, c.Pits, 3)
}

func TestParseLayout_Errors(t *testing.T) {
	_, err := ParseLayout(2, 2, "S W G")
	require.ErrorIs(t, err, ErrInvalidLayout)

	_, err = ParseLayout(2, 2, "S W G X")
	require.ErrorIs(t, err, ErrInvalidLayout)

	_, err = ParseLayout(2, 2, "S W . .")
	require.ErrorIs(t, err, ErrInvalidLayout)
}

func TestLoadLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cave.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rows:
  - "G . P"
  - "S . W"
`), 0o644))

	c, err := LoadLayoutFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Width)
	assert.Equal(t, 2, c.Height)
	assert.Equal(t, Cell{X: 1, Y: 1}, c.Start)
	assert.Equal(t, Cell{X: 1, Y: 2}, c.Gold)
	assert.Equal(t, Cell{X: 3, Y: 1}, c.Wumpus)
}

func TestEnvironment_PerceptsOnDefaultCave(t *testing.T) {
	env := NewEnvironment(ParseDefaultLayout())
	env.AddAgent("a")

	p, err := env.Observe("a")
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())

	// (1,1) -> (1,2): next to the wumpus at (1,3)
	require.NoError(t, env.Execute("a", Forward))
	p, err = env.Observe("a")
	require.NoError(t, err)
	assert.Equal(t, Percept{Stench: true}, p)

	// back down and east to (2,1): next to the pit at (3,1)
	require.NoError(t, env.Execute("a", TurnRight))
	require.NoError(t, env.Execute("a", TurnRight))
	require.NoError(t, env.Execute("a", Forward))
	require.NoError(t, env.Execute("a", TurnLeft))
	require.NoError(t, env.Execute("a", Forward))
	pos, err := env.Position("a")
	require.NoError(t, err)
	assert.Equal(t, Position{Cell: Cell{X: 2, Y: 1}, Orientation: FacingEast}, pos)
	p, err = env.Observe("a")
	require.NoError(t, err)
	assert.Equal(t, Percept{Breeze: true}, p)
}

func TestEnvironment_BumpAndScream(t *testing.T) {
	env := NewEnvironment(ParseDefaultLayout())
	env.AddAgent("a")

	require.NoError(t, env.Execute("a", TurnLeft))
	require.NoError(t, env.Execute("a", Forward))
	p, err := env.Observe("a")
	require.NoError(t, err)
	assert.True(t, p.Bump)

	// face north again and shoot up the first column at the wumpus
	require.NoError(t, env.Execute("a", TurnRight))
	p, err = env.Observe("a")
	require.NoError(t, err)
	assert.False(t, p.Bump)

	require.NoError(t, env.Execute("a", Shoot))
	p, err = env.Observe("a")
	require.NoError(t, err)
	assert.True(t, p.Scream)

	// the wumpus is dead: no stench next to it anymore
	require.NoError(t, env.Execute("a", Forward))
	p, err = env.Observe("a")
	require.NoError(t, err)
	assert.False(t, p.Stench)
	assert.False(t, p.Scream)
}

func TestEnvironment_GrabAndClimb(t *testing.T) {
	c, err := ParseLayout(2, 1, "S G")
	require.Error(t, err) // no wumpus
	c, err = ParseLayout(3, 1, "S G W")
	require.NoError(t, err)

	env := NewEnvironment(c)
	env.AddAgent("a")
	require.NoError(t, env.Execute("a", TurnRight))
	require.NoError(t, env.Execute("a", Forward))
	p, err := env.Observe("a")
	require.NoError(t, err)
	assert.True(t, p.Glitter)
	assert.True(t, p.Stench)

	require.NoError(t, env.Execute("a", Grab))
	p, err = env.Observe("a")
	require.NoError(t, err)
	assert.False(t, p.Glitter)

	// climbing away from the start does nothing
	require.NoError(t, env.Execute("a", Climb))
	st, err := env.Status("a")
	require.NoError(t, err)
	assert.False(t, st.Climbed)

	require.NoError(t, env.Execute("a", TurnLeft))
	require.NoError(t, env.Execute("a", TurnLeft))
	require.NoError(t, env.Execute("a", Forward))
	require.NoError(t, env.Execute("a", Climb))
	st, err = env.Status("a")
	require.NoError(t, err)
	assert.True(t, st.Climbed)
	assert.True(t, st.HasGold)
	assert.True(t, st.Alive)
}

func TestEnvironment_DeathIgnoresFurtherActions(t *testing.T) {
	env := NewEnvironment(ParseDefaultLayout())
	env.AddAgent("a")
	require.NoError(t, env.Execute("a", Forward))
	require.NoError(t, env.Execute("a", Forward)) // into the wumpus at (1,3)

	st, err := env.Status("a")
	require.NoError(t, err)
	assert.False(t, st.Alive)

	require.NoError(t, env.Execute("a", TurnLeft))
	pos, err := env.Position("a")
	require.NoError(t, err)
	assert.Equal(t, FacingNorth, pos.Orientation)
}

func TestEnvironment_UnknownAgent(t *testing.T) {
	env := NewEnvironment(ParseDefaultLayout())
	_, err := env.Observe("ghost")
	require.ErrorIs(t, err, ErrUnknownAgent)
}
