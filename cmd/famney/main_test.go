package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famney/famney/internal/categories"
	"github.com/famney/famney/internal/common"
)

// writeTestConfig creates a config file pointing at a database in a temp dir.
func writeTestConfig(t *testing.T, familyID string) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := "database:\n  path: " + filepath.Join(dir, "famney.db") + "\n" +
		"logging:\n  level: error\n"
	if familyID != "" {
		content += "family:\n  id: " + familyID + "\n"
	}
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0600))
	return cfgPath
}

// runCommand executes famney with args and returns its standard output.
func runCommand(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, writeTestConfig(t, ""), "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "famney dev")
}

func TestMigrateCommand(t *testing.T) {
	cfg := writeTestConfig(t, "")

	out, err := runCommand(t, cfg, "", "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 0")

	out, err = runCommand(t, cfg, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrated from version 0 to 2")

	out, err = runCommand(t, cfg, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestCategoriesCommand_RequiresFamily(t *testing.T) {
	_, err := runCommand(t, writeTestConfig(t, ""), "", "categories", "list")
	require.ErrorIs(t, err, common.ErrMissingConfig)

	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)
}

func TestCategoriesCommand_FamilyFlagOverridesConfig(t *testing.T) {
	cfg := writeTestConfig(t, "configured")

	_, err := runCommand(t, cfg, "", "--family", "flagged", "categories", "add", "Pets")
	require.NoError(t, err)

	out, err := runCommand(t, cfg, "", "--family", "flagged", "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Pets")

	out, err = runCommand(t, cfg, "", "categories", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Pets")
}

func TestCategoriesCommand_Lifecycle(t *testing.T) {
	cfg := writeTestConfig(t, "family-1")

	out, err := runCommand(t, cfg, "", "categories", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Added 12 default categories")

	out, err = runCommand(t, cfg, "", "categories", "add", "Pocket Money", "--type", "income", "--description", "Weekly")
	require.NoError(t, err)
	assert.Contains(t, out, "Created category")

	_, err = runCommand(t, cfg, "", "categories", "add", "pocket money", "--type", "income")
	require.ErrorIs(t, err, common.ErrDuplicateEntry)

	_, err = runCommand(t, cfg, "", "categories", "add", "Savings", "--type", "savings")
	require.ErrorIs(t, err, categories.ErrInvalidCategory)

	out, err = runCommand(t, cfg, "", "categories", "list", "--type", "income")
	require.NoError(t, err)
	assert.Contains(t, out, "Pocket Money")
	assert.Contains(t, out, "Salary")
	assert.NotContains(t, out, "Utilities")

	out, err = runCommand(t, cfg, "", "categories", "update", "Pocket Money", "--name", "Kids Allowance")
	require.NoError(t, err)
	assert.Contains(t, out, "Kids Allowance")

	out, err = runCommand(t, cfg, "", "categories", "show", "kids allowance")
	require.NoError(t, err)
	assert.Contains(t, out, "Income Category")
	assert.Contains(t, out, "Weekly")

	_, err = runCommand(t, cfg, "", "categories", "delete", "--force", "Salary")
	require.ErrorIs(t, err, categories.ErrDefaultCategory)

	out, err = runCommand(t, cfg, "", "categories", "deactivate", "Salary")
	require.NoError(t, err)
	assert.Contains(t, out, "Deactivated")

	out, err = runCommand(t, cfg, "", "categories", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Salary")

	out, err = runCommand(t, cfg, "", "categories", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Salary")

	_, err = runCommand(t, cfg, "", "categories", "activate", "Salary")
	require.NoError(t, err)

	out, err = runCommand(t, cfg, "n\n", "categories", "delete", "Kids Allowance")
	require.NoError(t, err)
	assert.Contains(t, out, "Deletion canceled")

	out, err = runCommand(t, cfg, "y\n", "categories", "delete", "Kids Allowance")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted category")

	_, err = runCommand(t, cfg, "", "categories", "show", "Kids Allowance")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestCategoriesCommand_DeleteInUse(t *testing.T) {
	cfg := writeTestConfig(t, "family-1")

	_, err := runCommand(t, cfg, "", "categories", "add", "Garden")
	require.NoError(t, err)

	out, err := runCommand(t, cfg, "", "transactions", "add", "Garden", "19.90", "--date", "2024-05-01", "-d", "Seeds")
	require.NoError(t, err)
	assert.Contains(t, out, "Booked 19.90")

	out, err = runCommand(t, cfg, "", "transactions", "list", "garden")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-05-01")
	assert.Contains(t, out, "Seeds")

	_, err = runCommand(t, cfg, "", "categories", "delete", "-f", "Garden")
	require.ErrorIs(t, err, categories.ErrCategoryInUse)

	_, err = runCommand(t, cfg, "", "transactions", "add", "Garden", "abc")
	require.Error(t, err)
}

func TestCategoriesCommand_ExportImport(t *testing.T) {
	cfg := writeTestConfig(t, "family-1")
	dir := t.TempDir()

	_, err := runCommand(t, cfg, "", "categories", "seed")
	require.NoError(t, err)

	yamlPath := filepath.Join(dir, "catalogue.yaml")
	_, err = runCommand(t, cfg, "", "categories", "export", "-o", yamlPath)
	require.NoError(t, err)

	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "categories:")

	csvPath := filepath.Join(dir, "catalogue.csv")
	_, err = runCommand(t, cfg, "", "categories", "export", "-o", csvPath)
	require.NoError(t, err)

	data, err = os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,family_id,name,type"))

	out, err := runCommand(t, cfg, "", "--family", "family-2", "categories", "import", yamlPath)
	require.NoError(t, err)
	assert.Contains(t, out, "12 created")

	out, err = runCommand(t, cfg, "", "--family", "family-2", "categories", "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "12 unchanged")

	out, err = runCommand(t, cfg, "- name: Camping\n  type: expense\n", "--family", "family-2", "categories", "import", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "1 created")
}

func TestExchangeFormat(t *testing.T) {
	tests := []struct {
		format  string
		path    string
		want    string
		wantErr bool
	}{
		{path: "cats.csv", want: "csv"},
		{path: "cats.yaml", want: "yaml"},
		{path: "", want: "yaml"},
		{format: "YML", path: "cats.csv", want: "yaml"},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		got, err := exchangeFormat(tt.format, tt.path)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
