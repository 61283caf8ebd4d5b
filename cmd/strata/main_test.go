package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"strata/internal/config"
	"strata/pkg/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	prev := newConfigManager
	newConfigManager = func() (*config.ConfigManager, error) { return config.NewConfigManagerAt(dir) }
	t.Cleanup(func() { newConfigManager = prev })

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func TestConfigSetGetDelete(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "", "config", "set", "linode.secret_key", "s3cr3t")
	require.NoError(t, err)
	assert.Contains(t, out, "linode.secret_key = ********")

	out, err = runCLI(t, dir, "", "config", "get", "linode.secret_key")
	require.NoError(t, err)
	assert.Contains(t, out, "linode.secret_key = s3cr3t")

	out, err = runCLI(t, dir, "", "config", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "s3cr3t")

	_, err = runCLI(t, dir, "", "config", "delete", "linode.secret_key")
	require.NoError(t, err)

	_, err = runCLI(t, dir, "", "config", "get", "linode.secret_key")
	assert.Error(t, err)
}

func TestConfigSetUnknownKey(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "", "config", "set", "azure.region", "eastus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "", "config", "set", "aws.secret_key", "hunter2")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "", "config", "set", "aws.region", "eu-west-1")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "region: eu-west-1")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "hunter2")
}

func TestCheckReportsWithoutFailing(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "", "config", "set", "backblaze.region", "us-west-004")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "", "check", "backblaze")
	require.NoError(t, err)
	assert.Contains(t, out, "not ready")
	assert.Contains(t, out, "https://s3.us-west-004.backblazeb2.com")
	assert.Contains(t, out, "access_key")
}

func TestDeleteBucketCancelledByPrompt(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "something-else\n", "storage", "delete", "reviews", "--provider", "aws")
	require.NoError(t, err)
	assert.Contains(t, out, "type 'reviews'")
	assert.Contains(t, out, "Deletion cancelled.")
}

func TestStorageCommandsRequireProvider(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "", "storage", "object", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "provider" not set`)
}

func TestStorageListWithoutProviders(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "", "storage", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No providers configured")
}

func TestFsPath(t *testing.T) {
	assert.Equal(t, ".", fsPath("reviews/", ""))
	assert.Equal(t, ".", fsPath("reviews/", "/"))
	assert.Equal(t, ".", fsPath("reviews/", "reviews/"))
	assert.Equal(t, "2024/raw", fsPath("reviews/", "reviews/2024/raw/"))
	assert.Equal(t, "2024/a.csv", fsPath("reviews/", "/2024/a.csv"))
}

func TestFlattenConfigMap(t *testing.T) {
	flat := flattenConfigMap(map[string]interface{}{
		"aws":   map[string]interface{}{"region": "us-east-1"},
		"query": map[string]interface{}{"threads": 4},
	})
	assert.Equal(t, map[string]interface{}{"aws.region": "us-east-1", "query.threads": 4}, flat)
}

type recordingTable struct {
	calls []string
}

func (r *recordingTable) Preview(context.Context) (tabular.ResultSet, error) {
	r.calls = append(r.calls, "preview")
	return tabular.ResultSet{Columns: []string{"id"}}, nil
}

func (r *recordingTable) Query(_ context.Context, sqlText string) (tabular.ResultSet, error) {
	r.calls = append(r.calls, sqlText)
	return tabular.ResultSet{Columns: []string{"count"}}, nil
}

func TestReadTableRunsOneStatement(t *testing.T) {
	table := &recordingTable{}
	rs, err := readTable(context.Background(), table, "SELECT COUNT(*) FROM object_table")
	require.NoError(t, err)
	assert.Equal(t, []string{"count"}, rs.Columns)
	assert.Equal(t, []string{"SELECT COUNT(*) FROM object_table"}, table.calls)

	table = &recordingTable{}
	rs, err = readTable(context.Background(), table, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, rs.Columns)
	assert.Equal(t, []string{"preview"}, table.calls)
}

func TestSelectAcceptsCollectFlag(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "", "query", "select", "--provider", "aws", "--key", "r.parquet", "--collect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error running select on 'r.parquet'")
	assert.Contains(t, err.Error(), "missing required arguments")
}
