package domain

import (
	"cmp"
	"slices"
)

// DoctorID is the stable key shared by doctor profiles and success rates.
type DoctorID string

// The fixed doctor roster. The admin selector only offers these ids.
const (
	DoctorJohnson DoctorID = "dr-johnson"
	DoctorChen    DoctorID = "dr-chen"
	DoctorPatel   DoctorID = "dr-patel"
	DoctorGarcia  DoctorID = "dr-garcia"
	DoctorWong    DoctorID = "dr-wong"
	DoctorReed    DoctorID = "dr-reed"
)

// RosterEntry is a selectable doctor in the admin editor.
type RosterEntry struct {
	ID          DoctorID `json:"id"`
	DisplayName string   `json:"displayName"`
}

// Roster is the selector list, in display order.
var Roster = []RosterEntry{
	{ID: DoctorJohnson, DisplayName: "Dr. Sarah Johnson"},
	{ID: DoctorChen, DisplayName: "Dr. Michael Chen"},
	{ID: DoctorPatel, DisplayName: "Dr. Aisha Patel"},
	{ID: DoctorGarcia, DisplayName: "Dr. Robert Garcia"},
	{ID: DoctorWong, DisplayName: "Dr. Emily Wong"},
	{ID: DoctorReed, DisplayName: "Dr. Thomas Reed"},
}

// Known reports whether id is on the roster.
func (id DoctorID) Known() bool {
	return rosterIndex(id) >= 0
}

func rosterIndex(id DoctorID) int {
	return slices.IndexFunc(Roster, func(e RosterEntry) bool { return e.ID == id })
}

func compareDoctorIDs(a, b DoctorID) int {
	ia, ib := rosterIndex(a), rosterIndex(b)

	switch {
	case ia >= 0 && ib >= 0:
		return cmp.Compare(ia, ib)
	case ia >= 0:
		return -1
	case ib >= 0:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}

// Site-wide fallbacks used until the store delivers content.
const (
	DefaultTitle       = "NAEEM SURGERY CLINIC"
	DefaultDescription = "Expert healthcare services"
)

// DefaultColors returns the built-in theme.
func DefaultColors() ColorTheme {
	return ColorTheme{
		ColorPrimary:   "#1a73e8",
		ColorSecondary: "#34a853",
		ColorDark:      "#096cff",
		ColorLight:     "#f8f9fa",
		ColorAccent:    "#fbbc05",
	}
}

// DefaultHero returns the built-in hero copy.
func DefaultHero() HeroContent {
	return HeroContent{
		Title:    "Expert Care in a Personal Setting",
		Subtitle: "Your health is our priority. Experience compassionate healthcare at NAEEM SURGERY CLINIC",
		Button1:  "Meet Our Doctors",
		Button2:  "Book Appointment",
	}
}

// DefaultContent returns the content shown before any snapshot arrives.
func DefaultContent() Content {
	return Content{
		Title:       DefaultTitle,
		Description: DefaultDescription,
		Colors:      DefaultColors(),
		Hero:        DefaultHero(),
		Doctors: map[DoctorID]DoctorProfile{
			DoctorJohnson: {
				ID:        DoctorJohnson,
				Name:      "Dr. Sarah Johnson",
				Specialty: "Family Medicine",
				Bio: "Dr. Johnson specializes in preventive care and chronic disease management. " +
					"She believes in building long-term relationships with patients to provide the most effective care.",
				Education: []string{
					"MD, Harvard Medical School",
					"Residency: Massachusetts General Hospital",
					"BS in Biology, Stanford University",
				},
				Experience: []string{
					"15 years at NAEEM SURGERY CLINIC",
					"5 years at Boston Medical Center",
					"Founder of Community Health Initiative",
					"Board Certified in Family Medicine",
				},
			},
			DoctorChen: {
				ID:        DoctorChen,
				Name:      "Dr. Michael Chen",
				Specialty: "Cardiology",
				Bio: "Dr. Chen focuses on preventive cardiology and innovative treatments for heart conditions. " +
					"He is known for his compassionate approach and clear communication with patients.",
				Education: []string{
					"MD, Johns Hopkins University",
					"Cardiology Fellowship: Mayo Clinic",
					"BS in Chemistry, MIT",
				},
				Experience: []string{
					"12 years at NAEEM SURGERY CLINIC",
					"8 years at Cleveland Clinic",
					"Published 25+ research papers on heart health",
					"Board Certified in Cardiology",
				},
			},
		},
		SuccessRates: map[DoctorID]SuccessRate{
			DoctorJohnson: {DoctorID: DoctorJohnson, Rate: 98, Description: "Patient Satisfaction Rate"},
			DoctorChen:    {DoctorID: DoctorChen, Rate: 95, Description: "Treatment Success Rate"},
		},
	}
}
