package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/aretw0/twentyfive/pkg/adapters/memory"
	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/aretw0/twentyfive/pkg/persistence/middleware"
	"github.com/aretw0/twentyfive/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunStateStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := NewMockStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secure := mw(underlying)

	ctx := context.Background()
	original := domain.NewInstance("secret-plans")
	original.Goals.Items = []string{"my-secret-sauce"}
	original.Revision = 3

	require.NoError(t, secure.Save(ctx, "secret-plans", original))

	stored, err := underlying.Load(ctx, "secret-plans")
	require.NoError(t, err)
	assert.Empty(t, stored.Goals.Items, "lists must be hidden in the backing store")
	assert.NotEmpty(t, stored.Sealed)
	assert.Equal(t, uint64(3), stored.Revision)

	loaded, err := secure.Load(ctx, "secret-plans")
	require.NoError(t, err)
	assert.Equal(t, []string{"my-secret-sauce"}, loaded.Goals.Items)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	original := domain.NewInstance("rotation")
	original.Tasks.Items = []string{"encrypted-with-old-key"}
	require.NoError(t, secureOld.Save(ctx, "rotation", original))

	secureNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := secureNew.Load(ctx, "rotation")
	require.NoError(t, err)
	assert.Equal(t, []string{"encrypted-with-old-key"}, loaded.Tasks.Items)

	loaded.Tasks.Items = []string{"encrypted-with-new-key"}
	require.NoError(t, secureNew.Save(ctx, "rotation", loaded))

	_, err = secureOld.Load(ctx, "rotation")
	assert.Error(t, err, "old key alone must not open data sealed with the new key")
}

func TestEncryptionMiddleware_RejectsPlaintext(t *testing.T) {
	underlying := NewMockStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", domain.NewInstance("plain")))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)

	_, err = secure.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrInstanceNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	got, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
	_, err = middleware.ParseKey("%%%")
	assert.Error(t, err)
}

func TestChain_Order(t *testing.T) {
	var calls []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.StateStore) ports.StateStore {
			return &tracingStore{StateStore: next, name: name, calls: &calls}
		}
	}

	store := middleware.Chain(NewMockStore(), tag("outer"), tag("inner"))
	require.NoError(t, store.Save(context.Background(), "x", domain.NewInstance("x")))
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

type tracingStore struct {
	ports.StateStore
	name  string
	calls *[]string
}

func (s *tracingStore) Save(ctx context.Context, id string, inst *domain.Instance) error {
	*s.calls = append(*s.calls, s.name)
	return s.StateStore.Save(ctx, id, inst)
}
