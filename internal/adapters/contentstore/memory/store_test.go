package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/clinic-site/internal/domain"
)

func next(t *testing.T, updates <-chan domain.Snapshot) domain.Snapshot {
	t.Helper()

	select {
	case snap, ok := <-updates:
		require.True(t, ok, "updates closed")
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return domain.Snapshot{}
	}
}

func TestStore_EmptyState(t *testing.T) {
	s := New()

	hero, err := s.Load(context.Background(), domain.ResourceHero)
	require.NoError(t, err)
	assert.False(t, hero.Exists)

	doctors, err := s.Load(context.Background(), domain.ResourceDoctors)
	require.NoError(t, err)
	assert.True(t, doctors.Exists)
	assert.Empty(t, doctors.Doctors)
}

func TestStore_SubscribeDeliversCurrentThenWrites(t *testing.T) {
	s := New(WithContent(domain.DefaultContent()))
	ctx := context.Background()

	sub, err := s.Subscribe(ctx, domain.ResourceColors)
	require.NoError(t, err)
	defer sub.Close()

	first := next(t, sub.Updates())
	assert.Equal(t, "#1a73e8", first.Colors[domain.ColorPrimary])

	theme := domain.ColorTheme{domain.ColorPrimary: "rebeccapurple", "--radius": "4px"}
	require.NoError(t, s.Write(ctx, theme))

	second := next(t, sub.Updates())
	assert.True(t, second.Exists)
	assert.Equal(t, theme, second.Colors)
}

func TestStore_CollectionWriteReplacesOneDocument(t *testing.T) {
	s := New(WithContent(domain.DefaultContent()))
	ctx := context.Background()

	sub, err := s.Subscribe(ctx, domain.ResourceDoctors)
	require.NoError(t, err)
	defer sub.Close()

	_ = next(t, sub.Updates())

	profile := domain.DoctorProfile{
		ID:         domain.DoctorWong,
		Name:       "Dr. Emily Wong",
		Education:  []string{"MD", "", "Residency"},
		Experience: []string{"10 years"},
	}
	require.NoError(t, s.Write(ctx, profile))

	snap := next(t, sub.Updates())
	require.Len(t, snap.Doctors, 3)
	assert.Equal(t, profile, snap.Doctors[domain.DoctorWong])
	assert.Contains(t, snap.Doctors, domain.DoctorJohnson)
}

func TestStore_SnapshotsAreIsolated(t *testing.T) {
	s := New(WithContent(domain.DefaultContent()))

	snap, err := s.Load(context.Background(), domain.ResourceSuccessRates)
	require.NoError(t, err)

	delete(snap.SuccessRates, domain.DoctorChen)

	again, err := s.Load(context.Background(), domain.ResourceSuccessRates)
	require.NoError(t, err)
	assert.Contains(t, again.SuccessRates, domain.DoctorChen)
}

func TestStore_FailWrites(t *testing.T) {
	s := New()
	s.FailWrites(errors.New("Missing or insufficient permissions."))

	err := s.Write(context.Background(), domain.HeroContent{Title: "x"})

	require.Error(t, err)
	assert.True(t, domain.IsWriteFailed(err))
	assert.Equal(t, "Missing or insufficient permissions.", err.Error())

	hero, loadErr := s.Load(context.Background(), domain.ResourceHero)
	require.NoError(t, loadErr)
	assert.False(t, hero.Exists, "rejected write must not be stored")

	s.FailWrites(nil)
	require.NoError(t, s.Write(context.Background(), domain.HeroContent{Title: "x"}))
}

func TestStore_WriteRejectsEmptyID(t *testing.T) {
	err := New().Write(context.Background(), domain.SuccessRate{Rate: 50})

	require.Error(t, err)
	assert.True(t, domain.IsWriteFailed(err))
}

func TestStore_CloseAndCancelEndSubscription(t *testing.T) {
	s := New()

	sub, err := s.Subscribe(context.Background(), domain.ResourceHero)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Subscribers(domain.ResourceHero))

	sub.Close()
	assert.Equal(t, 0, s.Subscribers(domain.ResourceHero))
	require.NoError(t, sub.Err())

	ctx, cancel := context.WithCancel(context.Background())
	sub, err = s.Subscribe(ctx, domain.ResourceHero)
	require.NoError(t, err)

	cancel()

	assert.Eventually(t, func() bool {
		return s.Subscribers(domain.ResourceHero) == 0
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, sub.Err())
}

func TestStore_BreakEndsWithError(t *testing.T) {
	s := New()
	boom := errors.New("listener detached")

	sub, err := s.Subscribe(context.Background(), domain.ResourceDoctors)
	require.NoError(t, err)

	s.Break(domain.ResourceDoctors, boom)

	for range sub.Updates() {
	}

	require.ErrorIs(t, sub.Err(), boom)
	assert.Equal(t, 0, s.Subscribers(domain.ResourceDoctors))
}

func TestStore_Unavailable(t *testing.T) {
	s := New()
	s.SetUnavailable(errors.New("offline"))

	_, err := s.Load(context.Background(), domain.ResourceHero)
	assert.True(t, domain.IsUnavailable(err))

	_, err = s.Subscribe(context.Background(), domain.ResourceHero)
	assert.True(t, domain.IsUnavailable(err))

	assert.Error(t, s.Check(context.Background()))

	s.SetUnavailable(nil)
	assert.NoError(t, s.Check(context.Background()))
}

func TestStore_RejectsUnknownResource(t *testing.T) {
	_, err := New().Subscribe(context.Background(), domain.Resource("reviews"))

	assert.True(t, domain.IsValidation(err))
}
