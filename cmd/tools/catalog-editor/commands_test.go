package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"activity-signup/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func catalogPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "activities.json")
}

// ============================================================================
// Commands
// ============================================================================

func TestAdd_CreatesCatalogFromDefault(t *testing.T) {
	path := catalogPath(t)

	out, err := run(t, "add", "--path", path,
		"--name", "Robotics", "--description", "Build robots", "--schedule", "Mondays", "--max", "8",
		"--participant", "ada@mergington.edu")
	require.NoError(t, err)
	assert.Contains(t, out, "Added activity: Robotics")

	c, err := catalog.Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Activities, 10)

	robotics, ok := c.Find("Robotics")
	require.True(t, ok)
	assert.Equal(t, []string{"ada@mergington.edu"}, robotics.Participants)
}

func TestAdd_RequiresFlags(t *testing.T) {
	_, err := run(t, "add", "--path", catalogPath(t), "--name", "Robotics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestAdd_Duplicate(t *testing.T) {
	_, err := run(t, "add", "--path", catalogPath(t),
		"--name", "Chess Club", "--description", "d", "--schedule", "s", "--max", "3")
	assert.ErrorIs(t, err, catalog.ErrDuplicateEntry)
}

func TestUpdate(t *testing.T) {
	path := catalogPath(t)

	out, err := run(t, "update", "--path", path, "--name", "Chess Club", "--field", "max_participants", "--value", "16")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated Chess Club.max_participants to 16")

	c, err := catalog.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, c.Records()["Chess Club"].MaxParticipants)
}

func TestUpdate_BelowEnrollmentIsRejected(t *testing.T) {
	_, err := run(t, "update", "--path", catalogPath(t), "--name", "Chess Club", "--field", "max_participants", "--value", "1")
	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
}

func TestValidate(t *testing.T) {
	path := catalogPath(t)

	_, err := run(t, "validate", "--path", path)
	require.Error(t, err, "validate does not fall back to the built-in catalog")

	require.NoError(t, catalog.Default().Save(path))
	out, err := run(t, "validate", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (9 activities)")
}

func TestList(t *testing.T) {
	out, err := run(t, "list", "--path", catalogPath(t))
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Chess Club")
	assert.Contains(t, out, "2/12")
}

func TestList_JSON(t *testing.T) {
	out, err := run(t, "list", "--json", "--path", catalogPath(t))
	require.NoError(t, err)

	var entries []catalog.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 9)
	assert.Equal(t, "Art Club", entries[0].Name)
}
