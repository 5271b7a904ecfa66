package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/usersvc/internal/dbx"
	"github.com/dmitrijs2005/usersvc/internal/server/auth"
	"github.com/dmitrijs2005/usersvc/internal/server/config"
	"github.com/dmitrijs2005/usersvc/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/usersvc/internal/server/repositories/users"
	"github.com/dmitrijs2005/usersvc/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.SecretKey = "app-test-secret"
	c.StorageKind = config.StorageMemory
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.MetricsAddr = "127.0.0.1:0"
	c.LogLevel = "error"
	return c
}

func TestNewApp_MemoryStorage(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Nil(t, app.db)

	ctx := context.Background()
	require.NoError(t, app.identity.SignUp(ctx, services.SignUpDraft{Email: "app@x.com", Password: "P@ssw0rd1"}))
	tok, err := app.identity.SignIn(ctx, services.Credentials{Email: "app@x.com", Password: "P@ssw0rd1"})
	require.NoError(t, err)

	sub, err := app.verifier.Subject(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tok.ID, sub)
}

func TestNewApp_RefusesEmptySecret(t *testing.T) {
	c := testConfig()
	c.SecretKey = ""

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, auth.ErrSigningKeyMissing)
}

func TestNewApp_UnknownStorage(t *testing.T) {
	c := testConfig()
	c.StorageKind = "redis"

	_, err := NewApp(context.Background(), c)
	assert.Error(t, err)
}

type fakeManager struct {
	migrateErr error
	migrated   bool
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return m.migrateErr
}

func (m *fakeManager) Users(db dbx.DBTX) users.Repository { return users.NewPostgresRepository(db) }

func withStubs(t *testing.T, m *fakeManager) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	origOpen, origManager := openDB, newRepositoryManager
	openDB = func(string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = func() repomanager.RepositoryManager { return m }
	t.Cleanup(func() {
		openDB, newRepositoryManager = origOpen, origManager
		_ = db.Close()
	})
	return mock
}

func TestNewApp_PostgresRunsMigrations(t *testing.T) {
	m := &fakeManager{}
	mock := withStubs(t, m)
	mock.ExpectPing()

	c := testConfig()
	c.StorageKind = config.StoragePostgres

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	assert.NotNil(t, app.db)
	assert.True(t, m.migrated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_PostgresMigrationFailure(t *testing.T) {
	m := &fakeManager{migrateErr: errors.New("boom")}
	mock := withStubs(t, m)
	mock.ExpectPing()
	mock.ExpectClose()

	c := testConfig()
	c.StorageKind = config.StoragePostgres

	_, err := NewApp(context.Background(), c)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_PostgresPingFailure(t *testing.T) {
	mock := withStubs(t, &fakeManager{})
	mock.ExpectPing().WillReturnError(errors.New("unreachable"))
	mock.ExpectClose()

	c := testConfig()
	c.StorageKind = config.StoragePostgres

	_, err := NewApp(context.Background(), c)
	assert.Error(t, err)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}

func TestRun_StopsWhenServerFails(t *testing.T) {
	c := testConfig()
	c.EndpointAddrGRPC = "127.0.0.1:99999"
	c.MetricsAddr = ""

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after listen failure")
	}
}
