package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/donations/internal/auth"
	"github.com/erazemk/donations/internal/db"
	"github.com/erazemk/donations/internal/model"
	"github.com/erazemk/donations/internal/store"
)

func TestInitDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donations.sqlite3")

	database, password, err := initDatabase(context.Background(), path, "root@example.org")
	require.NoError(t, err)
	defer database.Close()
	assert.Len(t, password, 16)

	admin, err := store.GetUserByEmail(context.Background(), database, "root@example.org")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, password))
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "fresh.sqlite3")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"init", "--db", path, "--admin-email", "boss@example.org"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "boss@example.org")

	root = newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"init", "--db", path})
	assert.Error(t, root.Execute(), "init must refuse to overwrite an existing database")

	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"migrate", "--db", path})
	require.NoError(t, root.Execute())

	database, err := db.Open(path)
	require.NoError(t, err)
	defer database.Close()
	n, err := store.CountDonations(context.Background(), database, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}
