package cli

import (
	"testing"

	"github.com/thruflo/stato/internal/logging"
	"github.com/thruflo/stato/internal/state"
	"github.com/thruflo/stato/internal/testutil"
)

func newTestManager(t *testing.T) (*state.Manager, string) {
	t.Helper()
	dir := testutil.SetupProject(t)
	m := state.NewManager(dir,
		state.WithBackupStore(state.NewMemoryStore()),
		state.WithLogger(logging.Discard()),
	)
	t.Cleanup(func() { _ = m.Close() })
	return m, dir
}
