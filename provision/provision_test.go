package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"access-gateway-api/db"
	"access-gateway-api/events"
	"access-gateway-api/extract"
)

func secretMatches(user *db.User, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.AccessSecret), []byte(secret)) == nil
}

func setupStore(t *testing.T) *db.Store {
	t.Helper()
	require.NoError(t, db.ConnectWithConfig(db.Config{Driver: "sqlite", Database: ":memory:"}))
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(context.Background()))
	return db.Default()
}

type recordingPublisher struct {
	events []events.Provisioned
}

func (r *recordingPublisher) Publish(_ context.Context, event events.Provisioned) error {
	r.events = append(r.events, event)
	return nil
}

func TestCreateOrUpdateUserWithoutPhone(t *testing.T) {
	p := New(&fakeStore{})
	changed, err := p.CreateOrUpdateUser(context.Background(), Request{RawText: "Kategori Audio: Relax"})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestNewUserIsProcessedWithoutCategories(t *testing.T) {
	store := setupStore(t)
	publisher := &recordingPublisher{}
	p := New(store, WithPublisher(publisher))

	changed, err := p.CreateOrUpdateUser(context.Background(), Request{
		Phone:   "6281234567890",
		Name:    "Budi",
		RawText: "PEMBAYARAN\nTelepon: 6281234567890",
	})
	require.NoError(t, err)
	assert.True(t, changed, "a new user counts as processed")

	user, err := store.GetUserByIdentifier(context.Background(), "6281234567890")
	require.NoError(t, err)
	assert.Equal(t, "Budi", user.DisplayName)
	assert.True(t, secretMatches(user, "6281234567890"), "phone is the default access secret")

	require.Len(t, publisher.events, 1)
	assert.True(t, publisher.events[0].NewUser)
}

func TestGrantIdempotence(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	_, err := store.CreateCategory(ctx, "Relax Music")
	require.NoError(t, err)

	p := New(store)
	req := Request{
		Phone:      "628555",
		AccessCode: "4455",
		RawText:    "Telepon: 628555\nKode Akses: 4455\nKategori Audio: relax",
	}

	changed, err := p.CreateOrUpdateUser(ctx, req)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = p.CreateOrUpdateUser(ctx, req)
	require.NoError(t, err)
	assert.False(t, changed, "second call adds nothing")

	user, err := store.GetUserByIdentifier(ctx, "628555")
	require.NoError(t, err)
	assert.True(t, secretMatches(user, "4455"))

	grants, err := store.ListUserGrants(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, extract.AxisAudio, grants[0].Axis)
	assert.Equal(t, "Relax Music", grants[0].CategoryName)
}

func TestExistingUserGainsNewGrant(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	_, err := store.CreateCategory(ctx, "Yoga")
	require.NoError(t, err)
	_, err = store.CreateCategory(ctx, "Podcast")
	require.NoError(t, err)

	p := New(store)
	_, err = p.CreateOrUpdateUser(ctx, Request{Phone: "628666", RawText: "Video: Yoga"})
	require.NoError(t, err)

	changed, err := p.CreateOrUpdateUser(ctx, Request{
		Phone:   "628666",
		RawText: "Video: Yoga\nKategori Audio Cloud: Podcast, Unknown",
	})
	require.NoError(t, err)
	assert.True(t, changed)

	user, err := store.GetUserByIdentifier(ctx, "628666")
	require.NoError(t, err)
	grants, err := store.ListUserGrants(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, grants, 2)
}

type fakeStore struct {
	userErr    error
	findErrs   map[string]error
	grantErrs  map[string]error
	categories map[string]*db.Category
	grants     map[string]bool
	schemaErr  error
	upserts    int
}

func (f *fakeStore) EnsureGrantSchema(context.Context) error { return f.schemaErr }

func (f *fakeStore) UpsertUser(_ context.Context, user db.NewUser) (string, bool, error) {
	f.upserts++
	if f.userErr != nil {
		return "", false, f.userErr
	}
	return "user-" + user.Identifier, f.upserts == 1, nil
}

func (f *fakeStore) FindCategory(_ context.Context, name string) (*db.Category, error) {
	if err, ok := f.findErrs[name]; ok {
		return nil, err
	}
	if c, ok := f.categories[name]; ok {
		return c, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) Grant(_ context.Context, userID, categoryID string, axis extract.Axis) (bool, error) {
	key := userID + "/" + categoryID + "/" + string(axis)
	if err, ok := f.grantErrs[categoryID]; ok {
		return false, err
	}
	if f.grants == nil {
		f.grants = map[string]bool{}
	}
	if f.grants[key] {
		return false, nil
	}
	f.grants[key] = true
	return true, nil
}

func TestFailuresAreIsolatedPerCategory(t *testing.T) {
	store := &fakeStore{
		schemaErr: errors.New("permission denied"),
		findErrs:  map[string]error{"Broken": errors.New("timeout")},
		grantErrs: map[string]error{"cat-locked": errors.New("deadlock")},
		categories: map[string]*db.Category{
			"Locked": {ID: "cat-locked", Name: "Locked"},
			"Relax":  {ID: "cat-relax", Name: "Relax"},
			"Legal":  {ID: "cat-legal", Name: "Legal"},
		},
	}
	p := New(store)

	// First sighting creates the user; the second only adds grants.
	_, err := p.CreateOrUpdateUser(context.Background(), Request{Phone: "628777"})
	require.NoError(t, err)

	changed, err := p.CreateOrUpdateUser(context.Background(), Request{
		Phone:   "628777",
		RawText: "Kategori Audio: Broken, Locked, Missing, Relax\nDokumen Cloud: Legal",
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, store.grants["user-628777/cat-relax/audio"])
	assert.True(t, store.grants["user-628777/cat-legal/document_cloud"])
	assert.Len(t, store.grants, 2)
}

func TestUserFailurePropagates(t *testing.T) {
	outage := errors.New("connection refused")
	p := New(&fakeStore{userErr: outage})

	_, err := p.CreateOrUpdateUser(context.Background(), Request{Phone: "628888"})
	assert.ErrorIs(t, err, outage)
}
