package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarth-shah20/stasis-storage/internal/errdefs"
	"github.com/sarth-shah20/stasis-storage/internal/storage"
)

func strPtr(s string) *string { return &s }

func TestCreateExplicit(t *testing.T) {
	h := newHarness(t, document(""))
	ctx := context.Background()

	s, err := h.m.Create(ctx, CreateProps{Name: "s1", Type: storage.TypeMinio, Username: "abc", Password: "longpass1"})
	require.NoError(t, err)
	assert.Equal(t, "s1", s.Name())

	got, err := h.store(t).Get("s1")
	require.NoError(t, err)
	assert.Equal(t, storage.TypeMinio, got.Type())
	assert.Equal(t, "abc", got.Username())

	rows, err := h.m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Row{{Name: "s1", Type: storage.TypeMinio, ContainerName: "minio-s1.ws", Default: true}}, rows)

	assert.Equal(t, 1, h.persister.saves)
	assert.Empty(t, h.driver.calls, "create must not touch the container engine")
	assert.Empty(t, h.prompter.asked)
}

func TestCreateSecondKeepsDefault(t *testing.T) {
	h := newHarness(t, document(""))
	ctx := context.Background()

	_, err := h.m.Create(ctx, CreateProps{Name: "s1", Type: storage.TypeMinio, Username: "abc", Password: "longpass1"})
	require.NoError(t, err)
	_, err = h.m.Create(ctx, CreateProps{Name: "s2", Type: storage.TypeRedis})
	require.NoError(t, err)

	assert.Equal(t, "s1", h.store(t).DefaultName())
	assert.Equal(t, "s1", h.persister.doc.Default)
	assert.Len(t, h.persister.doc.Storages, 2)
}

func TestCreateExplicitDuplicate(t *testing.T) {
	h := newHarness(t, document("s1", minioProps("s1")))

	_, err := h.m.Create(context.Background(), CreateProps{Name: "s1", Type: storage.TypeRedis})
	assert.True(t, errdefs.IsAlreadyExists(err), "got %v", err)
	assert.Zero(t, h.persister.saves)
}

func TestCreateExplicitInvalid(t *testing.T) {
	h := newHarness(t, document(""))
	ctx := context.Background()

	_, err := h.m.Create(ctx, CreateProps{Name: "-bad", Type: storage.TypeMinio})
	assert.True(t, errdefs.IsValidation(err), "got %v", err)

	_, err = h.m.Create(ctx, CreateProps{Name: "ok", Type: "mongo"})
	assert.True(t, errdefs.IsValidation(err), "got %v", err)
	assert.Zero(t, h.persister.saves)
}

func TestCreateInteractive(t *testing.T) {
	h := newHarness(t, document("s1", minioProps("s1")))
	// taken name, new name, type, short then valid username, short then
	// valid password, confirmation
	h.prompter.answers = []string{"s1", "s2", "minio", "ab", "bob", "short", "longpass1", "longpass1"}

	s, err := h.m.Create(context.Background(), CreateProps{})
	require.NoError(t, err)

	assert.Equal(t, "s2", s.Name())
	assert.Equal(t, storage.TypeMinio, s.Type())
	assert.Equal(t, "bob", s.Username())
	assert.Equal(t, "longpass1", s.Password())
	assert.Equal(t, []string{"s1", "ab", "short"}, h.prompter.rejected)
	assert.Equal(t, []string{
		"Storage name:", "Storage name:", "Storage type:",
		"Username:", "Username:", "Password:", "Password:", "Confirm password:",
	}, h.prompter.asked)
}

func TestCreatePasswordMismatch(t *testing.T) {
	h := newHarness(t, document(""))
	h.prompter.answers = []string{"longpass1", "longpass2"}

	_, err := h.m.Create(context.Background(), CreateProps{Name: "s1", Type: storage.TypeMinio, Username: "abc"})
	require.Error(t, err)
	assert.True(t, errdefs.IsValidation(err))
	assert.Contains(t, err.Error(), "Passwords do not match")
	assert.Zero(t, h.persister.saves)
	assert.False(t, h.store(t).Has("s1"))
}

func TestCreateExplicitCredentialsNotLengthChecked(t *testing.T) {
	h := newHarness(t, document(""))

	s, err := h.m.Create(context.Background(), CreateProps{Name: "s1", Type: storage.TypeMinio, Username: "a", Password: "b"})
	require.NoError(t, err)
	assert.Equal(t, "a", s.Username())
	assert.Equal(t, "b", s.Password())
}

func TestCreateRedisSkipsCredentials(t *testing.T) {
	h := newHarness(t, document(""))
	h.prompter.answers = []string{"cache", "redis"}

	s, err := h.m.Create(context.Background(), CreateProps{})
	require.NoError(t, err)
	assert.Equal(t, storage.TypeRedis, s.Type())
	assert.False(t, s.HasCredentials())
	assert.Equal(t, []string{"Storage name:", "Storage type:"}, h.prompter.asked)
}

func TestUpgrade(t *testing.T) {
	h := newHarness(t, document("s1", minioProps("s1")))

	changed, err := h.m.Upgrade(context.Background(), UpgradeProps{
		ImageVersion: strPtr("RELEASE.2024-01-01T00-00-00Z"),
		Volume:       strPtr("media-data"),
	})
	require.NoError(t, err)
	assert.True(t, changed)

	s, err := h.store(t).Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "minio/minio:RELEASE.2024-01-01T00-00-00Z", s.ImageTag())
	assert.Equal(t, "media-data", s.Volume())
	assert.Equal(t, 1, h.persister.saves)
	assert.Equal(t, "media-data", h.persister.doc.Storages[0].Volume)
	assert.Empty(t, h.driver.calls)
}

func TestUpgradeImageThenHalves(t *testing.T) {
	h := newHarness(t, document("s1", minioProps("s1")))

	_, err := h.m.Upgrade(context.Background(), UpgradeProps{
		Name:         "s1",
		Image:        strPtr("quay.io/minio/minio:old"),
		ImageVersion: strPtr("new"),
	})
	require.NoError(t, err)

	s, err := h.store(t).Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "quay.io/minio/minio:new", s.ImageTag())
}

func TestUpgradeNoop(t *testing.T) {
	t.Run("no fields", func(t *testing.T) {
		h := newHarness(t, document("s1", minioProps("s1")))
		changed, err := h.m.Upgrade(context.Background(), UpgradeProps{Name: "s1"})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Zero(t, h.persister.saves)
		assert.Empty(t, h.driver.calls)
	})

	t.Run("same values", func(t *testing.T) {
		props := minioProps("s1")
		props.ImageName = "quay.io/minio/minio"
		h := newHarness(t, document("s1", props))
		changed, err := h.m.Upgrade(context.Background(), UpgradeProps{
			ImageName: strPtr("quay.io/minio/minio"),
			Volume:    strPtr("wocker-storage-minio-s1"),
		})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Zero(t, h.persister.saves)
	})
}

func TestUpgradeInvalid(t *testing.T) {
	h := newHarness(t, document("s1", minioProps("s1")))

	_, err := h.m.Upgrade(context.Background(), UpgradeProps{Volume: strPtr("ok"), ImageVersion: strPtr("bad tag!")})
	assert.True(t, errdefs.IsValidation(err), "got %v", err)
	assert.Zero(t, h.persister.saves)

	s, err := h.store(t).Get("s1")
	require.NoError(t, err)
	assert.False(t, s.HasCustomVolume(), "a failed upgrade must not change the stored entity")
}

func TestUpgradeUnknown(t *testing.T) {
	h := newHarness(t, document("s1", minioProps("s1")))
	_, err := h.m.Upgrade(context.Background(), UpgradeProps{Name: "nope", Volume: strPtr("x")})
	assert.True(t, errdefs.IsNotFound(err))
}

func TestUse(t *testing.T) {
	h := newHarness(t, document("s1", minioProps("s1"), redisProps("s2")))
	ctx := context.Background()

	require.NoError(t, h.m.Use(ctx, "s2"))
	assert.Equal(t, "s2", h.persister.doc.Default)
	assert.Contains(t, h.out.String(), "Storage s2 is now the default")

	err := h.m.Use(ctx, "s3")
	assert.True(t, errdefs.IsNotFound(err))
	assert.Equal(t, "s2", h.store(t).DefaultName())
	assert.Equal(t, 1, h.persister.saves)

	assert.True(t, errdefs.IsValidation(h.m.Use(ctx, "")))
	assert.Empty(t, h.driver.calls)
}

func TestListFreshInstall(t *testing.T) {
	h := newHarness(t, nil)

	rows, err := h.m.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Row{{Name: "default", Type: storage.TypeMinio, ContainerName: "minio-default.ws", Default: true}}, rows)
	assert.Zero(t, h.persister.saves, "listing must not write")
}
