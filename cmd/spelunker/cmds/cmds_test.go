package cmds

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-go-golems/spelunker/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastSettings() *settings.Settings {
	s := settings.NewSettings()
	s.PollInterval = 5 * time.Millisecond
	s.Seed = 42
	return s
}

func TestRunSessionExplorerFetchesTheGold(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var transcript bytes.Buffer
	summary, err := RunSession(ctx, fastSettings(), &transcript)
	require.NoError(t, err)

	assert.True(t, summary.Status.Alive)
	assert.True(t, summary.Status.HasGold)
	assert.True(t, summary.Status.Climbed)
	assert.True(t, strings.HasPrefix(summary.Position, "[1,1]->"), summary.Position)
	assert.Greater(t, summary.Turns, 0)

	lines := strings.Split(strings.TrimSpace(transcript.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[len(lines)-2], "CANCEL speleologist->[environment]"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "CANCEL speleologist->[navigator]"))
}

func TestRunSessionScripted(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := fastSettings()
	s.Planner.Kind = settings.PlannerScripted
	s.Planner.Script = []string{"turn-left", "climb"}

	summary, err := RunSession(ctx, s, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Turns)
	assert.True(t, summary.Status.Climbed)
	assert.False(t, summary.Status.HasGold)

	var out bytes.Buffer
	summary.Print(&out)
	assert.Contains(t, out.String(), "turns: 2")
	assert.Contains(t, out.String(), "climbed out: true")
}

func TestRunSessionRunningOutOfActionsFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := fastSettings()
	s.Planner.Kind = settings.PlannerScripted
	s.Planner.Script = []string{"forward"}

	_, err := RunSession(ctx, s, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planner proposed no action")
}

func TestRunSessionInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunSession(ctx, fastSettings(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func runSpeech(t *testing.T, args ...string) string {
	cmd := NewSpeechCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return strings.TrimSpace(out.String())
}

func TestSpeechCommands(t *testing.T) {
	utterance := runSpeech(t, "percept", "--seed", "3", "breeze", "glitter")
	assert.Equal(t, "{Breeze, Glitter}", runSpeech(t, "decode-percept", utterance))

	assert.Equal(t, "{}", runSpeech(t, "decode-percept", "All", "clear"))

	action := runSpeech(t, "action", "--seed", "3", "turn-right")
	assert.Equal(t, "TurnRight", runSpeech(t, "decode-action", action))
}

func TestSpeechCommandRejectsUnknownAction(t *testing.T) {
	cmd := NewSpeechCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"decode-action", "dance"})
	assert.Error(t, cmd.Execute())
}

func TestSchemaCommand(t *testing.T) {
	cmd := NewSchemaCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"performative"`)
	assert.Contains(t, out.String(), `"ACCEPT_PROPOSAL"`)
}
