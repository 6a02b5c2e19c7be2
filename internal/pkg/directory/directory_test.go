package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/compensation-backend-go/internal/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BuiltInDirectory(t *testing.T) {
	dir, err := Parse(fixtures.RoleDirectoryYAML())
	require.NoError(t, err)
	assert.Equal(t, 6, dir.Len())

	id, ok := dir.Resolve(context.Background(), "Direct Manager")
	require.True(t, ok)
	assert.Equal(t, "John Manager", id.Name)
	assert.Equal(t, "EMP001", id.ID)

	sys, ok := dir.Resolve(context.Background(), "System")
	require.True(t, ok)
	assert.Equal(t, "sap-icon://it-system", sys.Photo)
}

func TestResolve_IgnoresCaseAndSpace(t *testing.T) {
	dir, err := Parse(fixtures.RoleDirectoryYAML())
	require.NoError(t, err)

	id, ok := dir.Resolve(context.Background(), "  hr manager ")
	require.True(t, ok)
	assert.Equal(t, "Sarah HR", id.Name)

	_, ok = dir.Resolve(context.Background(), "Chief Wizard")
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	doc := "roles:\n  Payroll Lead:\n    id: EMP100\n    name: Pat Payroll\n    photo: sap-icon://money-bills\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	dir, err := LoadFile(path)
	require.NoError(t, err)

	id, ok := dir.Resolve(context.Background(), "payroll lead")
	require.True(t, ok)
	assert.Equal(t, "Pat Payroll", id.Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("roles: ["))
	assert.Error(t, err)
}
