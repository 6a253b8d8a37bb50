package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/clinic-site/internal/adapters/contentstore/memory"
	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/mocks"
)

func newTestEditor(t *testing.T, store *memory.Store) (*Editor, *manualTimers) {
	t.Helper()

	content := domain.DefaultContent()
	timers := &manualTimers{}

	e := NewEditor(store, func() domain.Content { return content }, EditorConfig{}, nil, nil)
	e.banner.after = timers.afterFunc

	return e, timers
}

func TestEditor_SeededFromLoadedContent(t *testing.T) {
	e, _ := newTestEditor(t, memory.New())

	st := e.State()

	assert.Equal(t, domain.DoctorJohnson, st.Selected)
	assert.Equal(t, "Dr. Sarah Johnson", st.Doctor.Name)
	assert.Equal(t, "MD, Harvard Medical School\nResidency: Massachusetts General Hospital\nBS in Biology, Stanford University", st.Doctor.Education)
	assert.Equal(t, SuccessRateDraft{DoctorID: domain.DoctorJohnson, Rate: "98", Description: "Patient Satisfaction Rate"}, st.SuccessRate)
	assert.Equal(t, domain.DefaultColors(), st.Colors)
	assert.Equal(t, domain.DefaultHero(), st.Hero)
	assert.Len(t, st.Roster, 6)
	assert.False(t, st.Status.Visible)
}

func TestEditor_SelectDoctorReseedsAndDropsEdits(t *testing.T) {
	e, _ := newTestEditor(t, memory.New())

	e.SetDoctor(DoctorDraft{Name: "Edited"})
	e.SetSuccessRate(SuccessRateDraft{DoctorID: domain.DoctorJohnson, Rate: "1"})

	res, err := e.SelectDoctor(domain.DoctorChen)
	require.NoError(t, err)
	assert.True(t, res.DiscardedUnsaved)

	st := e.State()
	assert.Equal(t, "Dr. Michael Chen", st.Doctor.Name)
	assert.Equal(t, "95", st.SuccessRate.Rate)

	// Going back re-seeds from loaded content, the earlier edit is gone.
	res, err = e.SelectDoctor(domain.DoctorJohnson)
	require.NoError(t, err)
	assert.False(t, res.DiscardedUnsaved)
	assert.Equal(t, "Dr. Sarah Johnson", e.State().Doctor.Name)
}

func TestEditor_SelectDoctorWithoutCounterpartsSeedsEmpty(t *testing.T) {
	e, _ := newTestEditor(t, memory.New())

	_, err := e.SelectDoctor(domain.DoctorWong)
	require.NoError(t, err)

	st := e.State()
	assert.Equal(t, DoctorDraft{}, st.Doctor)
	assert.Equal(t, SuccessRateDraft{DoctorID: domain.DoctorWong}, st.SuccessRate)
	assert.Equal(t, "Doctor Name", st.Preview.Name)
	assert.Equal(t, "Specialty", st.Preview.Specialty)
	assert.Equal(t, "Biography", st.Preview.Bio)
}

func TestEditor_SelectUnknownDoctor(t *testing.T) {
	e, _ := newTestEditor(t, memory.New())

	_, err := e.SelectDoctor("dr-house")

	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, domain.DoctorJohnson, e.State().Selected)
}

func TestEditor_SaveDoctorRoundTripsLines(t *testing.T) {
	store := memory.New()
	e, _ := newTestEditor(t, store)

	draft := DoctorDraft{
		Name:       "Dr. Sarah Johnson",
		Specialty:  "Family Medicine",
		Education:  "MD\n\n  Residency  \n",
		Experience: "one line",
	}
	e.SetDoctor(draft)

	st := e.SaveDoctor(context.Background())
	assert.Equal(t, Status{Visible: true, Kind: StatusSuccess, Message: "Doctor profile for Dr. Sarah Johnson saved successfully!"}, st)

	snap, err := store.Load(context.Background(), domain.ResourceDoctors)
	require.NoError(t, err)

	saved := snap.Doctors[domain.DoctorJohnson]
	assert.Equal(t, []string{"MD", "", "  Residency  ", ""}, saved.Education)
	assert.Equal(t, draft.Education, domain.JoinLines(saved.Education))
	assert.Equal(t, draft.Experience, domain.JoinLines(saved.Experience))

	res, err := e.SelectDoctor(domain.DoctorChen)
	require.NoError(t, err)
	assert.False(t, res.DiscardedUnsaved, "saved draft is not unsaved")
}

func TestEditor_SaveSuccessRateCoercesRate(t *testing.T) {
	for input, expected := range map[string]int{"87.9": 87, "120": 120} {
		t.Run(input, func(t *testing.T) {
			store := memory.New()
			e, _ := newTestEditor(t, store)
			e.SetSuccessRate(SuccessRateDraft{DoctorID: domain.DoctorChen, Rate: input, Description: "Treatment Success Rate"})

			st, err := e.SaveSuccessRate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "Success rate for Dr. Michael Chen saved successfully!", st.Message)

			snap, err := store.Load(context.Background(), domain.ResourceSuccessRates)
			require.NoError(t, err)
			assert.Equal(t, domain.SuccessRate{DoctorID: domain.DoctorChen, Rate: expected, Description: "Treatment Success Rate"},
				snap.SuccessRates[domain.DoctorChen])
		})
	}
}

func TestEditor_SaveSuccessRateRejectsNonNumeric(t *testing.T) {
	store := memory.New()
	e, _ := newTestEditor(t, store)
	e.SetSuccessRate(SuccessRateDraft{DoctorID: domain.DoctorChen, Rate: "high"})

	st, err := e.SaveSuccessRate(context.Background())

	assert.True(t, domain.IsValidation(err))
	assert.False(t, st.Visible)

	snap, loadErr := store.Load(context.Background(), domain.ResourceSuccessRates)
	require.NoError(t, loadErr)
	assert.Empty(t, snap.SuccessRates)
}

func TestEditor_SaveSuccessRateUnknownDoctorName(t *testing.T) {
	e, _ := newTestEditor(t, memory.New())
	e.SetSuccessRate(SuccessRateDraft{DoctorID: domain.DoctorReed, Rate: "70"})

	st, err := e.SaveSuccessRate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Success rate for doctor saved successfully!", st.Message)
}

func TestEditor_SaveFailureShowsRawMessage(t *testing.T) {
	store := memory.New()
	store.FailWrites(errors.New("Missing or insufficient permissions."))
	e, _ := newTestEditor(t, store)

	tests := []struct {
		name string
		save func() Status
		want string
	}{
		{"colors", func() Status { return e.SaveColors(context.Background()) }, "Error saving colors: Missing or insufficient permissions."},
		{"doctor", func() Status { return e.SaveDoctor(context.Background()) }, "Error saving doctor profile: Missing or insufficient permissions."},
		{"hero", func() Status { return e.SaveHero(context.Background()) }, "Error saving hero section: Missing or insufficient permissions."},
		{"success rate", func() Status {
			st, err := e.SaveSuccessRate(context.Background())
			require.NoError(t, err)

			return st
		}, "Error saving success rate: Missing or insufficient permissions."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := tt.save()

			assert.Equal(t, StatusError, st.Kind)
			assert.Equal(t, tt.want, st.Message)
			assert.Equal(t, st, e.State().Status)
		})
	}
}

func TestEditor_SaveOutlivesRequestCancellation(t *testing.T) {
	store := mocks.NewMockContentStore(t)
	content := domain.DefaultContent()
	e := NewEditor(store, func() domain.Content { return content }, EditorConfig{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store.EXPECT().Write(mock.Anything, mock.AnythingOfType("domain.HeroContent")).
		RunAndReturn(func(ctx context.Context, _ domain.Record) error {
			return ctx.Err()
		})

	st := e.SaveHero(ctx)

	assert.Equal(t, StatusSuccess, st.Kind)
}

func TestEditor_ApplyColorsReturnsPreview(t *testing.T) {
	store := mocks.NewMockContentStore(t)
	content := domain.DefaultContent()
	e := NewEditor(store, func() domain.Content { return content }, EditorConfig{}, nil, nil)

	e.MergeColors(domain.ColorTheme{domain.ColorPrimary: "not-a-color"})
	e.MergeColors(domain.ColorTheme{"--extra": "1px"})

	props := e.ApplyColors()

	assert.Equal(t, domain.Property{Name: domain.ColorPrimary, Value: "not-a-color"}, props[0])
	assert.Equal(t, domain.Property{Name: "--extra", Value: "1px"}, props[len(props)-1])
	assert.Equal(t, `Colors applied temporarily. Click "Save Colors" to make permanent.`, e.State().Status.Message)

	assert.Equal(t, domain.DefaultColors(), content.Colors, "apply never touches loaded content")
}

func TestEditor_ApplyActionsAreLocal(t *testing.T) {
	store := mocks.NewMockContentStore(t)
	content := domain.DefaultContent()
	e := NewEditor(store, func() domain.Content { return content }, EditorConfig{}, nil, nil)

	assert.Contains(t, e.ApplyDoctor().Message, `"Save Doctor Profile"`)
	assert.Contains(t, e.ApplySuccessRate().Message, `"Save Success Rate"`)
	assert.Contains(t, e.ApplyHero().Message, `"Save Hero Section"`)
}

func TestEditor_BannerClearsAfterTTL(t *testing.T) {
	e, timers := newTestEditor(t, memory.New())

	e.SaveHero(context.Background())
	require.True(t, e.State().Status.Visible)
	assert.Equal(t, StatusBannerTTL, timers.last().d)

	timers.fire(len(timers.pending) - 1)
	assert.False(t, e.State().Status.Visible)
}

func TestEditor_MergeColorsKeepsOtherSlots(t *testing.T) {
	content := domain.DefaultContent()
	e := NewEditor(mocks.NewMockContentStore(t), func() domain.Content { return content }, EditorConfig{}, nil, nil)

	e.MergeColors(domain.ColorTheme{"--accent": "rebeccapurple"})

	want := domain.DefaultColors()
	want["--accent"] = "rebeccapurple"
	assert.Equal(t, want, e.State().Colors)

	e.SetColors(domain.ColorTheme{"--primary": "#000"})
	assert.Equal(t, domain.ColorTheme{"--primary": "#000"}, e.State().Colors)
}
