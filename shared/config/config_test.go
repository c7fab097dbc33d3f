package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPublic = `
site_url: "http://localhost:3000/"
http:
  port: 8080
auth:
  access_token_ttl: 30m
  refresh_token_ttl: 24h
  reset_token_ttl: 15m
item_store:
  driver: mongo
  unknown_fields: reject
  mongo_database: collectionmanager
file_storage:
  driver: local
  folder: /tmp/cm-files
max_upload_size: 1048576
`

const validPrivate = `
jwt_key: "0123456789abcdef0123"
pg:
  host: localhost
  port: 5432
  user: cm
  password: secret
  dbname: cm
mongo_uri: "mongodb://localhost:27017"
`

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "public.yaml", validPublic)
		writeConfig(t, dir, "private.yaml", validPrivate)

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL())
		assert.Equal(t, "reject", cfg.Public.ItemStore.UnknownFields)
		assert.Equal(t, "collection_items", cfg.Public.ItemStore.MongoCollection)
		assert.Equal(t, int64(1048576), cfg.Public.MaxUploadSize)
		assert.Equal(t, "cm", cfg.Private.Pg.Dbname)
	})

	t.Run("env overrides secrets", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "public.yaml", validPublic)
		writeConfig(t, dir, "private.yaml", validPrivate)
		t.Setenv("CM_JWT_KEY", "override-key-override-key")
		t.Setenv("CM_PG_PORT", "6543")

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "override-key-override-key", cfg.JwtKey())
		assert.Equal(t, 6543, cfg.Private.Pg.Port)
	})

	t.Run("private file is optional", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "public.yaml", validPublic)
		t.Setenv("CM_JWT_KEY", "0123456789abcdef0123")
		t.Setenv("CM_PG_HOST", "db")
		t.Setenv("CM_PG_PORT", "5432")
		t.Setenv("CM_PG_USER", "cm")
		t.Setenv("CM_PG_DBNAME", "cm")

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "db", cfg.Private.Pg.Host)
	})

	t.Run("bad port env", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "public.yaml", validPublic)
		writeConfig(t, dir, "private.yaml", validPrivate)
		t.Setenv("CM_PG_PORT", "not-a-number")

		_, err := Load(dir)
		require.Error(t, err)
	})

	t.Run("unknown item store driver", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "public.yaml", validPublic+"\nitem_store:\n  driver: redis\n")
		writeConfig(t, dir, "private.yaml", validPrivate)

		_, err := Load(dir)
		require.Error(t, err)
	})
}

func TestMustLoad_RequiredFields(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "public.yaml", validPublic)
	// jwt key too short and pg section missing
	writeConfig(t, dir, "private.yaml", "jwt_key: 'k'\n")

	assert.Panics(t, func() { _ = MustLoad(dir) })
}
