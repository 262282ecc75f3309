package lioncard

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"lioncard-backend/lib/telemetry"
	"lioncard-backend/services/lioncard/db"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func setupStore(t testing.TB) *CredentialStore {
	cleanup := telemetry.SetupForTesting(t, "test:services/lioncard")
	t.Cleanup(cleanup)

	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	_, err = sqlite.Exec(db.Schema)
	require.NoError(t, err)

	store, err := NewCredentialStore(sqlite, testKey)
	require.NoError(t, err)
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := setupStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, loaded)

	err = store.Save(ctx, Credentials{Username: "student1", Password: "pw1"})
	require.NoError(t, err)

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, "student1", loaded.Username)
	require.Equal(t, "pw1", loaded.Password)
}

func TestStoreSaveOverwrites(t *testing.T) {
	store := setupStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	require.NoError(t, store.Save(ctx, Credentials{Username: "student1", Password: "pw1"}))
	require.NoError(t, store.Save(ctx, Credentials{Username: "student2", Password: "pw2"}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, "student2", loaded.Username)
	require.Equal(t, "pw2", loaded.Password)
}

func TestStoreClear(t *testing.T) {
	store := setupStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	// clearing an empty store is fine
	require.NoError(t, store.Clear(ctx))

	require.NoError(t, store.Save(ctx, Credentials{Username: "student1", Password: "pw1"}))
	require.NoError(t, store.Clear(ctx))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestStoreEncryptedAtRest(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/lioncard")
	t.Cleanup(cleanup)

	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	_, err = sqlite.Exec(db.Schema)
	require.NoError(t, err)

	store, err := NewCredentialStore(sqlite, testKey)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	require.NoError(t, store.Save(ctx, Credentials{Username: "student1", Password: "hunter2"}))

	var username, password string
	row := sqlite.QueryRowContext(ctx, `SELECT username, password FROM credentials WHERE id = 0`)
	require.NoError(t, row.Scan(&username, &password))
	require.NotContains(t, username, "student1")
	require.NotContains(t, password, "hunter2")

	// a store with a different key cannot read the pair back
	otherStore, err := NewCredentialStore(sqlite, []byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)
	_, err = otherStore.Load(ctx)
	require.Error(t, err)
}

func TestStoreRejectsBadKey(t *testing.T) {
	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	_, err = NewCredentialStore(sqlite, []byte("too-short"))
	require.Error(t, err)
}
