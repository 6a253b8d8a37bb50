//go:build integration

package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/clinic-site/internal/domain"
)

// newReplicaSetStore connects to the replica set named by MONGODB_URI,
// skipping when it is not set. Each test gets its own database.
func newReplicaSetStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := New(ctx, Config{URI: uri, Database: "clinic_" + uuid.NewString()[:8]})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close(context.Background())
	})

	return s
}

func TestMongo_SubscribeSeesWrites(t *testing.T) {
	s := newReplicaSetStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sub, err := s.Subscribe(ctx, domain.ResourceHero)
	require.NoError(t, err)
	defer sub.Close()

	initial := <-sub.Updates()
	assert.False(t, initial.Exists)

	hero := domain.HeroContent{Title: "Welcome", Subtitle: "Care", Button1: "Doctors", Button2: "Book"}
	require.NoError(t, s.Write(ctx, hero))

	updated := <-sub.Updates()
	assert.True(t, updated.Exists)
	assert.Equal(t, hero, updated.Hero)
}
