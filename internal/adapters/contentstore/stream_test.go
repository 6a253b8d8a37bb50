package contentstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/clinic-site/internal/domain"
)

func heroSnap(title string) domain.Snapshot {
	return domain.Snapshot{
		Resource: domain.ResourceHero,
		Exists:   true,
		Hero:     domain.HeroContent{Title: title},
	}
}

func TestStream_DeliversInOrder(t *testing.T) {
	s, _ := NewStream(context.Background(), domain.ResourceHero, 4)

	require.True(t, s.Publish(heroSnap("one")))
	require.True(t, s.Publish(heroSnap("two")))

	assert.Equal(t, "one", (<-s.Updates()).Hero.Title)
	assert.Equal(t, "two", (<-s.Updates()).Hero.Title)
	assert.Equal(t, domain.ResourceHero, s.Resource())
}

func TestStream_FullBufferKeepsNewest(t *testing.T) {
	s, _ := NewStream(context.Background(), domain.ResourceHero, 2)

	for _, title := range []string{"a", "b", "c", "d"} {
		require.True(t, s.Publish(heroSnap(title)))
	}

	assert.Equal(t, "c", (<-s.Updates()).Hero.Title)
	assert.Equal(t, "d", (<-s.Updates()).Hero.Title)
}

func TestStream_CloseCancelsProducer(t *testing.T) {
	s, ctx := NewStream(context.Background(), domain.ResourceColors, 0)

	s.Close()
	s.Close()

	require.ErrorIs(t, ctx.Err(), context.Canceled)
	require.NoError(t, s.Err())
	assert.True(t, s.Done())
	assert.False(t, s.Publish(heroSnap("late")))

	_, open := <-s.Updates()
	assert.False(t, open)
}

func TestStream_FailRecordsFirstError(t *testing.T) {
	s, _ := NewStream(context.Background(), domain.ResourceDoctors, 1)
	boom := errors.New("listener dropped")

	s.Fail(boom)
	s.Fail(errors.New("second"))
	s.Close()

	require.ErrorIs(t, s.Err(), boom)
}

func TestStream_ParentCancellationPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	_, ctx := NewStream(parent, domain.ResourceHero, 1)

	cancel()

	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
