package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockLogLevel int8 = 0

func TestSetupReturnsSameInstance(t *testing.T) {
	first := Setup(Options{Level: mockLogLevel})
	require.NotNil(t, first)
	assert.Same(t, first, Get(mockLogLevel))
	assert.Same(t, first, GetGlobalLogger())
}

func TestSetupReturnsNoopWhenGlobalMissing(t *testing.T) {
	Setup(Options{Level: mockLogLevel})
	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()

	assert.Same(t, &defaultNoopLogger, Setup(Options{}))
	assert.Same(t, &defaultNoopLogger, GetGlobalLogger())
	assert.Same(t, &defaultNoopLogger, FromContext(context.Background()))
}

func TestWithLoggerAndFromContext(t *testing.T) {
	log := Get(mockLogLevel)
	ctx := WithLogger(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
	assert.Equal(t, ctx, WithLogger(ctx, log), "same logger keeps the context")

	other := logr.Discard()
	replaced := WithLogger(ctx, &other)
	assert.Same(t, &other, FromContext(replaced))

	assert.Same(t, log, FromContext(context.Background()), "falls back to the global logger")
}

func TestWithValuesReturnsNewLogger(t *testing.T) {
	log := Get(mockLogLevel)
	withSession := WithValues(log, SessionKey, "abc")
	require.NotNil(t, withSession)
	assert.NotSame(t, log, withSession)
	assert.NotSame(t, log, WithValues(log))
}

func TestOpenFile(t *testing.T) {
	w, closeFn, err := OpenFile("")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.NoError(t, closeFn())

	path := filepath.Join(t.TempDir(), "logs", "gridx.log")
	w, closeFn, err = OpenFile(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("{}\n"))
	require.NoError(t, err)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestSyncWithoutLogger(t *testing.T) {
	orig := globalZapLogger
	globalZapLogger = nil
	defer func() { globalZapLogger = orig }()
	assert.NotPanics(t, Sync)
}

func TestIsIgnorableSyncError(t *testing.T) {
	assert.True(t, isIgnorableSyncError(&os.PathError{Op: "sync", Err: syscall.EINVAL}))
	assert.True(t, isIgnorableSyncError(errors.New("sync /dev/stderr: The handle is invalid.")))
	assert.False(t, isIgnorableSyncError(errors.New("disk full")))
}

func TestNoopLogger(t *testing.T) {
	assert.Same(t, &defaultNoopLogger, GetNoopLogger())
	assert.NotPanics(t, func() { GetNoopLogger().Info("nothing") })
}
