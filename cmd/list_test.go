package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuec.dev/pkg/vuec/internal/domain"
	m "vuec.dev/pkg/vuec/internal/model"
)

func TestListCmd(t *testing.T) {
	root := t.TempDir()
	app := writeComponent(t, filepath.Join(root, "App.vue"), appComponent)
	button := writeComponent(t, filepath.Join(root, "components", "Button.vue"), "<template><button/></template>")

	stdout, _, err := executeCommand(t, newListCmd(), "list", root+"/...")
	require.NoError(t, err)

	assert.Contains(t, stdout, domain.DeriveScopeID(m.Path(app)))
	assert.Contains(t, stdout, domain.DeriveScopeID(m.Path(button)))
	assert.Contains(t, stdout, "TOTAL FILES 2")
}

func TestListCmd_MissingPath(t *testing.T) {
	_, _, err := executeCommand(t, newListCmd(), "list", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
