package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/passel/internal/core/domain"
)

func TestWatchCmd_Use(t *testing.T) {
	assert.Equal(t, "watch [query]", watchCmd.Use)

	flag := watchCmd.Flags().Lookup("debounce")
	require.NotNil(t, flag)
	assert.Equal(t, "500ms", flag.DefValue)
}

func TestWatchCmd_RerunsOnChange(t *testing.T) {
	ws, watcher := setupTestServices(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type outcome struct {
		out string
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		out, _, err := executeContext(ctx, "watch", "--debounce", "10ms", "-f", "/docs")
		done <- outcome{out, err}
	}()

	require.Eventually(t, func() bool { return ws.selection.calls() == 1 }, time.Second, 5*time.Millisecond)

	watcher.changes <- domain.DocumentChange{Type: domain.ChangeCreated, URI: "/docs/new.txt"}
	watcher.changes <- domain.DocumentChange{Type: domain.ChangeUpdated, URI: "/docs/new.txt"}

	require.Eventually(t, func() bool { return ws.selection.calls() == 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "---")
		assert.Contains(t, res.out, "Document: tea.txt")
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after cancellation")
	}

	assert.Equal(t, "/docs", watcher.folder)
	assert.Equal(t, 1, ws.released)
}

func TestWatchCmd_StopsWhenChangesClose(t *testing.T) {
	ws, watcher := setupTestServices(t)
	close(watcher.changes)

	out, errOut, err := execute("watch")

	require.NoError(t, err)
	assert.Equal(t, 1, ws.selection.calls())
	assert.Contains(t, out, "Document: tea.txt")
	assert.Contains(t, errOut, "Watching sample_data for changes...")
}

func TestWatchCmd_FirstRunErrorStops(t *testing.T) {
	ws, watcher := setupTestServices(t)
	ws.selection.err = domain.NewConfigurationError("document_folder_path", "folder does not exist")

	_, _, err := execute("watch")

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Empty(t, watcher.folder)
}

func TestWatchCmd_WatchError(t *testing.T) {
	_, watcher := setupTestServices(t)
	watcher.err = errors.New("too many open files")

	_, _, err := execute("watch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many open files")
}

func TestWatchCmd_NoWatcher(t *testing.T) {
	ws, _ := setupTestServices(t)
	opener = func(string) (*Services, error) {
		return &Services{Workspace: ws}, nil
	}

	_, _, err := execute("watch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "folder watcher not configured")
}
