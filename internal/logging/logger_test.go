package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGet_NoopBeforeInitialize(t *testing.T) {
	Install(nil, nil)
	// Must not panic without setup.
	Research("hello %s", "world")
	Get(CategoryPipeline).Warn("warn %d", 1)
}

func TestCategoriesCanBeDisabled(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Install(zap.New(core), map[string]bool{"search": false})
	t.Cleanup(func() { Install(nil, nil) })

	Search("dropped")
	Research("kept %d", 1)
	PipelineDebug("debug kept")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "kept 1", entries[0].Message)
	assert.Equal(t, "research", entries[0].LoggerName)
	assert.Equal(t, "pipeline", entries[1].LoggerName)
	assert.False(t, IsCategoryEnabled(CategorySearch))
	assert.True(t, IsCategoryEnabled(CategoryEdit))
}

func TestInitialize_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ideaforge.log")
	require.NoError(t, Initialize(Options{Level: "debug", Format: "json", File: path}))
	t.Cleanup(func() { Install(nil, nil) })

	Store("saved report %s", "abc")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "saved report abc")
	assert.Contains(t, string(data), `"logger":"store"`)
}

func TestBuild_RejectsBadLevel(t *testing.T) {
	_, err := Build(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestTimer(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Install(zap.New(core), nil)
	t.Cleanup(func() { Install(nil, nil) })

	StartTimer(CategoryAPI, "op").StopWithThreshold(-1)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "op took")
}
