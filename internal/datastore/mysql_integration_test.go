//go:build integration

package datastore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/trailtracker/trailtracker/internal/conf"
)

func setupMySQLStore(t *testing.T) Interface {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcmysql.Run(ctx, "mysql:8.0.36",
		tcmysql.WithDatabase("trailtracker"),
		tcmysql.WithUsername("trail"),
		tcmysql.WithPassword("trail-secret"),
	)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate mysql container: %v", err)
		}
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	settings := &conf.Settings{}
	settings.Output.MySQL = conf.MySQLSettings{
		Enabled:  true,
		Username: "trail",
		Password: "trail-secret",
		Database: "trailtracker",
		Host:     host,
		Port:     port.Port(),
	}

	store := New(settings, nil, nil)
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMySQLStore_RoundTrip(t *testing.T) {
	ds := setupMySQLStore(t)

	createUser(t, ds, "alice")
	require.ErrorIs(t, ds.CreateUser(&User{Username: "alice", PasswordHash: "x"}), ErrUsernameTaken)

	require.NoError(t, ds.SavePin("alice", &Pin{Name: "Creek", CameraID: "cam-1", Latitude: 1, Longitude: 2}))
	require.NoError(t, ds.SavePin("alice", &Pin{Name: "Ridge", CameraID: "cam-2"}))
	require.NoError(t, ds.LogUpload("alice", &Upload{FilePath: "a.jpg", CameraID: "cam-2", Animal: "elk"}))
	require.ErrorIs(t, ds.LogUpload("alice", &Upload{FilePath: "a.jpg", CameraID: "cam-1"}), ErrDuplicateUpload)

	ids, err := ds.GetCameraIDs("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"cam-1", "cam-2"}, ids)

	snap, err := ds.GetSnapshot("alice")
	require.NoError(t, err)
	assert.Len(t, snap.Pins, 2)
	require.Len(t, snap.Uploads, 1)
	assert.Equal(t, "elk", snap.Uploads[0].Animal)

	require.NoError(t, ds.DeletePin("alice", "cam-1"))
	require.ErrorIs(t, ds.DeletePin("alice", "cam-1"), ErrPinNotFound)

	user, err := ds.UpdateProfile("alice", "alicia", "")
	require.NoError(t, err)
	assert.Equal(t, "alicia", user.Username)
}

func TestMySQLStore_CaseSensitiveKeys(t *testing.T) {
	ds := setupMySQLStore(t)

	createUser(t, ds, "alice")
	require.NoError(t, ds.CreateUser(&User{Username: "Alice", PasswordHash: "x"}))

	require.NoError(t, ds.LogUpload("alice", &Upload{FilePath: "a.jpg", CameraID: "cam-1", Animal: "deer"}))
	require.NoError(t, ds.LogUpload("alice", &Upload{FilePath: "A.jpg", CameraID: "cam-1", Animal: "deer"}))

	_, err := ds.GetSnapshot("ALICE")
	require.ErrorIs(t, err, ErrUserNotFound)

	snap, err := ds.GetSnapshot("Alice")
	require.NoError(t, err)
	assert.Empty(t, snap.Uploads)
}
