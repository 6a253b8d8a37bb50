package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/clinic-site/internal/adapters/contentstore/memory"
	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/ports"
)

var fastRetry = RetryConfig{InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond, Multiplier: 2}

func startSync(t *testing.T, store *memory.Store, retry RetryConfig) *ContentSync {
	t.Helper()

	s := NewContentSync(store, retry)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)

	for _, r := range domain.Resources {
		require.Eventually(t, func() bool { return store.Subscribers(r) == 1 },
			time.Second, time.Millisecond, "subscription for %s", r)
	}

	return s
}

func waitDrain(t *testing.T, f *Feed, want domain.Resource) domain.Snapshot {
	t.Helper()

	deadline := time.After(time.Second)

	for {
		select {
		case <-f.Ready():
			for _, snap := range f.Drain() {
				if snap.Resource == want {
					return snap
				}
			}
		case <-deadline:
			t.Fatalf("no %s snapshot delivered", want)
			return domain.Snapshot{}
		}
	}
}

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := RetryConfig{InitialInterval: 100 * time.Millisecond, MaxInterval: time.Second, Multiplier: 2}

	for range 20 {
		first := cfg.Backoff(0)
		assert.GreaterOrEqual(t, first, 75*time.Millisecond)
		assert.LessOrEqual(t, first, 125*time.Millisecond)

		third := cfg.Backoff(2)
		assert.GreaterOrEqual(t, third, 300*time.Millisecond)
		assert.LessOrEqual(t, third, 500*time.Millisecond)

		capped := cfg.Backoff(30)
		assert.LessOrEqual(t, capped, 1250*time.Millisecond)
	}
}

func TestContentSync_StartLoadsStoreContent(t *testing.T) {
	store := memory.New(memory.WithContent(domain.DefaultContent()))
	require.NoError(t, store.Write(context.Background(), domain.HeroContent{Title: "Stored title"}))

	s := startSync(t, store, fastRetry)

	assert.Equal(t, "Stored title", s.Content().Hero.Title)
	require.NoError(t, s.Check(context.Background()))
	assert.Equal(t, ContentSyncName, s.Name())
}

func TestContentSync_OneSubscriptionPerResourceRegardlessOfViews(t *testing.T) {
	store := memory.New()
	s := startSync(t, store, fastRetry)

	for range 5 {
		f, _ := s.Attach()
		defer f.Close()
	}

	for _, r := range domain.Resources {
		assert.Equal(t, 1, store.Subscribers(r))
	}
}

func TestContentSync_WritesReachEveryFeed(t *testing.T) {
	store := memory.New(memory.WithContent(domain.DefaultContent()))
	s := startSync(t, store, fastRetry)

	a, _ := s.Attach()
	defer a.Close()

	b, _ := s.Attach()
	defer b.Close()

	theme := domain.ColorTheme{domain.ColorPrimary: "hotpink", "--font": "serif"}
	require.NoError(t, store.Write(context.Background(), theme))

	for _, f := range []*Feed{a, b} {
		snap := waitDrain(t, f, domain.ResourceColors)
		assert.Equal(t, theme, snap.Colors)
	}

	assert.Equal(t, theme, s.Content().Colors)
}

func TestContentSync_CollectionSnapshotReplacesSlice(t *testing.T) {
	store := memory.New(memory.WithContent(domain.DefaultContent()))
	s := startSync(t, store, fastRetry)

	f, _ := s.Attach()
	defer f.Close()

	store.Seed(domain.Content{
		Colors: domain.DefaultColors(),
		Hero:   domain.DefaultHero(),
		Doctors: map[domain.DoctorID]domain.DoctorProfile{
			domain.DoctorReed: {ID: domain.DoctorReed, Name: "Dr. Thomas Reed"},
		},
		SuccessRates: map[domain.DoctorID]domain.SuccessRate{},
	})

	snap := waitDrain(t, f, domain.ResourceDoctors)
	require.Len(t, snap.Doctors, 1)

	assert.Eventually(t, func() bool {
		c := s.Content()
		return len(c.Doctors) == 1 && len(c.SuccessRates) == 0
	}, time.Second, time.Millisecond)
}

func TestContentSync_ResubscribesAfterFailure(t *testing.T) {
	store := memory.New(memory.WithContent(domain.DefaultContent()))
	retry := RetryConfig{InitialInterval: 80 * time.Millisecond, MaxInterval: 80 * time.Millisecond, Multiplier: 1}
	s := startSync(t, store, retry)

	store.Break(domain.ResourceDoctors, errors.New("listener detached"))

	require.Eventually(t, func() bool {
		return errors.Is(s.Check(context.Background()), ports.ErrDegraded)
	}, time.Second, time.Millisecond)

	assert.Contains(t, s.Content().Doctors, domain.DoctorJohnson, "last known slice is kept")

	require.Eventually(t, func() bool {
		return store.Subscribers(domain.ResourceDoctors) == 1 && s.Check(context.Background()) == nil
	}, 2*time.Second, time.Millisecond)

	require.NoError(t, store.Write(context.Background(), domain.DoctorProfile{ID: domain.DoctorGarcia, Name: "Dr. Robert Garcia"}))

	assert.Eventually(t, func() bool {
		_, ok := s.Content().Doctors[domain.DoctorGarcia]
		return ok
	}, time.Second, time.Millisecond)
}

func TestContentSync_LoadFailureKeepsDefaults(t *testing.T) {
	store := memory.New()
	store.SetUnavailable(errors.New("offline"))

	s := NewContentSync(store, fastRetry)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)

	assert.Equal(t, domain.DefaultContent().Hero, s.Content().Hero)

	require.Eventually(t, func() bool {
		return s.Check(context.Background()) != nil
	}, time.Second, time.Millisecond)

	store.SetUnavailable(nil)

	assert.Eventually(t, func() bool {
		return s.Check(context.Background()) == nil
	}, 2*time.Second, time.Millisecond)
}

func TestContentSync_StopIsDeterministic(t *testing.T) {
	store := memory.New()
	s := NewContentSync(store, fastRetry)
	require.NoError(t, s.Start(context.Background()))
	require.Error(t, s.Start(context.Background()))

	f, _ := s.Attach()

	for _, r := range domain.Resources {
		require.Eventually(t, func() bool { return store.Subscribers(r) == 1 }, time.Second, time.Millisecond)
	}

	s.Stop()
	s.Stop()

	for _, r := range domain.Resources {
		assert.Equal(t, 0, store.Subscribers(r))
	}

	select {
	case <-f.Done():
	default:
		t.Fatal("feed not closed on stop")
	}
}

func TestFeed_CoalescesPerResource(t *testing.T) {
	f := newFeed()

	f.offer(domain.Snapshot{Resource: domain.ResourceHero, Hero: domain.HeroContent{Title: "one"}})
	f.offer(domain.Snapshot{Resource: domain.ResourceColors})
	f.offer(domain.Snapshot{Resource: domain.ResourceHero, Hero: domain.HeroContent{Title: "two"}})

	<-f.Ready()
	got := f.Drain()

	require.Len(t, got, 2)
	assert.Equal(t, domain.ResourceColors, got[0].Resource)
	assert.Equal(t, "two", got[1].Hero.Title)
	assert.Empty(t, f.Drain())

	f.close()
	f.offer(domain.Snapshot{Resource: domain.ResourceHero})
	assert.Empty(t, f.Drain())
}
