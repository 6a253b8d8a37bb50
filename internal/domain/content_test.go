package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitJoinLines_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"MD, Harvard Medical School",
		"line one\nline two",
		"trailing newline\n",
		"\nleading newline",
		"blank\n\nmiddle",
		"  spaced  \n\ttabbed",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, in, JoinLines(SplitLines(in)))
		})
	}
}

func TestSplitLines_KeepsEmptyEntries(t *testing.T) {
	assert.Equal(t, []string{"a", "", "b", ""}, SplitLines("a\n\nb\n"))
	assert.Equal(t, []string{""}, SplitLines(""))
}

func TestColorTheme_Properties(t *testing.T) {
	theme := ColorTheme{
		"--zeta":       "1px",
		ColorLight:     "#fff",
		ColorPrimary:   "red",
		"--alpha":      "blue",
		ColorSecondary: "not a color at all",
	}

	props := theme.Properties()

	assert.Equal(t, []Property{
		{Name: ColorPrimary, Value: "red"},
		{Name: ColorSecondary, Value: "not a color at all"},
		{Name: ColorLight, Value: "#fff"},
		{Name: "--alpha", Value: "blue"},
		{Name: "--zeta", Value: "1px"},
	}, props)
}

func TestColorTheme_CloneIsIndependent(t *testing.T) {
	orig := DefaultColors()
	clone := orig.Clone()
	clone[ColorPrimary] = "#000000"

	assert.Equal(t, "#1a73e8", orig[ColorPrimary])

	var nilTheme ColorTheme
	assert.NotNil(t, nilTheme.Clone())
}

func TestHeroContent_WithDefaults(t *testing.T) {
	h := HeroContent{Title: "Custom"}.WithDefaults()

	assert.Equal(t, "Custom", h.Title)
	assert.Equal(t, DefaultHero().Subtitle, h.Subtitle)
	assert.Equal(t, "Meet Our Doctors", h.Button1)
	assert.Equal(t, "Book Appointment", h.Button2)
}

func TestRecords_Keys(t *testing.T) {
	tests := []struct {
		name     string
		record   Record
		resource Resource
		id       string
	}{
		{"colors", ColorTheme{}, ResourceColors, "colors"},
		{"hero", HeroContent{}, ResourceHero, "hero"},
		{"doctor", DoctorProfile{ID: DoctorWong}, ResourceDoctors, "dr-wong"},
		{"success rate", SuccessRate{DoctorID: DoctorReed}, ResourceSuccessRates, "dr-reed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.resource, tt.record.Resource())
			assert.Equal(t, tt.id, tt.record.DocumentID())
		})
	}
}

func TestContent_ApplyReplacesWholeSlice(t *testing.T) {
	c := DefaultContent()

	c.Apply(Snapshot{
		Resource: ResourceDoctors,
		Exists:   true,
		Doctors: map[DoctorID]DoctorProfile{
			DoctorPatel: {ID: DoctorPatel, Name: "Dr. Aisha Patel"},
		},
	})

	require.Len(t, c.Doctors, 1)
	assert.Equal(t, "Dr. Aisha Patel", c.Doctors[DoctorPatel].Name)

	c.Apply(Snapshot{Resource: ResourceColors, Exists: true, Colors: ColorTheme{ColorPrimary: "teal"}})
	assert.Equal(t, ColorTheme{ColorPrimary: "teal"}, c.Colors)
}

func TestContent_ApplyMissingSingletonKeepsSlice(t *testing.T) {
	c := DefaultContent()

	c.Apply(Snapshot{Resource: ResourceHero, Exists: false})
	c.Apply(Snapshot{Resource: ResourceColors, Exists: false})

	assert.Equal(t, DefaultHero(), c.Hero)
	assert.Equal(t, DefaultColors(), c.Colors)
}

func TestContent_ApplyEmptyCollection(t *testing.T) {
	c := DefaultContent()
	c.Apply(Snapshot{Resource: ResourceSuccessRates, Exists: true})

	assert.NotNil(t, c.SuccessRates)
	assert.Empty(t, c.SuccessRates)
}

func TestContent_CardsTolerateMissingCounterparts(t *testing.T) {
	c := Content{
		Doctors: map[DoctorID]DoctorProfile{
			"dr-zed":   {Name: "Unknown"},
			DoctorReed: {Name: "Dr. Thomas Reed"},
			DoctorChen: {Name: "Dr. Michael Chen"},
		},
		SuccessRates: map[DoctorID]SuccessRate{
			DoctorChen:   {DoctorID: DoctorChen, Rate: 95},
			DoctorGarcia: {DoctorID: DoctorGarcia, Rate: 80},
		},
	}

	cards := c.Cards()

	require.Len(t, cards, 3)
	assert.Equal(t, DoctorChen, cards[0].ID)
	require.NotNil(t, cards[0].SuccessRate)
	assert.Equal(t, 95, cards[0].SuccessRate.Rate)
	assert.Equal(t, DoctorReed, cards[1].ID)
	assert.Nil(t, cards[1].SuccessRate)
	assert.Equal(t, DoctorID("dr-zed"), cards[2].ID)
}

func TestContent_CloneIsIndependent(t *testing.T) {
	c := DefaultContent()
	clone := c.Clone()

	clone.Colors[ColorPrimary] = "black"
	delete(clone.Doctors, DoctorChen)

	assert.Equal(t, "#1a73e8", c.Colors[ColorPrimary])
	assert.Contains(t, c.Doctors, DoctorChen)
}

func TestDoctorID_Known(t *testing.T) {
	for _, e := range Roster {
		assert.True(t, e.ID.Known(), e.ID)
	}

	assert.False(t, DoctorID("dr-who").Known())
	assert.True(t, ResourceDoctors.Valid())
	assert.False(t, Resource("reviews").Valid())
}
