package dto

import (
	"errors"

	"github.com/jsamuelsen/clinic-site/internal/app"
	"github.com/jsamuelsen/clinic-site/internal/domain"
)

// ColorsRequest replaces the colors draft. Keys must be CSS custom property
// names; values are taken as typed.
type ColorsRequest struct {
	Colors map[string]string `json:"colors" validate:"required,dive,keys,startswith=--,endkeys"`
}

// Validate rejects an empty theme. Individual values are never checked.
func (r *ColorsRequest) Validate() error {
	if len(r.Colors) == 0 {
		return errors.New("colors must not be empty")
	}

	return nil
}

// DoctorForm is the doctor profile form. Education and experience are
// newline-delimited text.
type DoctorForm struct {
	Name       string `json:"name"`
	Specialty  string `json:"specialty"`
	Bio        string `json:"bio"`
	Education  string `json:"education"`
	Experience string `json:"experience"`
}

// SuccessRateForm is the success rate form. Rate is the raw input text and is
// coerced on save.
type SuccessRateForm struct {
	DoctorID    string `json:"doctorId"    validate:"required,doctorid"`
	Rate        string `json:"rate"`
	Description string `json:"description"`
}

// HeroForm is the hero section form.
type HeroForm struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Button1  string `json:"button1"`
	Button2  string `json:"button2"`
}

// SelectDoctorRequest picks the doctor whose drafts are edited.
type SelectDoctorRequest struct {
	DoctorID string `json:"doctorId" validate:"required,doctorid"`
}

// StatusResponse is the status banner.
type StatusResponse struct {
	Show    bool   `json:"show"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// PreviewResponse is the rendered doctor draft.
type PreviewResponse struct {
	Name       string   `json:"name"`
	Specialty  string   `json:"specialty"`
	Bio        string   `json:"bio"`
	Education  []string `json:"education"`
	Experience []string `json:"experience"`
}

// RosterEntry is one option of the doctor selector.
type RosterEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// EditorResponse is the full admin editor state.
type EditorResponse struct {
	Session        string            `json:"session"`
	Colors         map[string]string `json:"colors"`
	SelectedDoctor string            `json:"selectedDoctor"`
	Doctor         DoctorForm        `json:"doctor"`
	SuccessRate    SuccessRateForm   `json:"successRate"`
	Hero           HeroForm          `json:"hero"`
	Preview        PreviewResponse   `json:"preview"`
	Status         StatusResponse    `json:"status"`
	Roster         []RosterEntry     `json:"roster"`
}

// SelectDoctorResponse reports the newly selected doctor. DiscardedUnsaved is
// set when edits to the previous drafts were thrown away.
type SelectDoctorResponse struct {
	SelectedDoctor   string         `json:"selectedDoctor"`
	DiscardedUnsaved bool           `json:"discardedUnsaved"`
	Editor           EditorResponse `json:"editor"`
}

// ApplyColorsResponse carries the preview properties for the admin's page.
type ApplyColorsResponse struct {
	Properties []domain.Property `json:"properties"`
	Status     StatusResponse    `json:"status"`
}

// ActionResponse is the reply to an apply or save action.
type ActionResponse struct {
	Status StatusResponse `json:"status"`
}

// NewStatusResponse converts a banner state.
func NewStatusResponse(st app.Status) StatusResponse {
	return StatusResponse{
		Show:    st.Visible,
		Message: st.Message,
		Type:    string(st.Kind),
	}
}

// NewEditorResponse converts the editor state of session.
func NewEditorResponse(session string, st app.EditorState) EditorResponse {
	roster := make([]RosterEntry, 0, len(st.Roster))
	for _, e := range st.Roster {
		roster = append(roster, RosterEntry{ID: string(e.ID), DisplayName: e.DisplayName})
	}

	return EditorResponse{
		Session:        session,
		Colors:         st.Colors,
		SelectedDoctor: string(st.Selected),
		Doctor: DoctorForm{
			Name:       st.Doctor.Name,
			Specialty:  st.Doctor.Specialty,
			Bio:        st.Doctor.Bio,
			Education:  st.Doctor.Education,
			Experience: st.Doctor.Experience,
		},
		SuccessRate: SuccessRateForm{
			DoctorID:    string(st.SuccessRate.DoctorID),
			Rate:        st.SuccessRate.Rate,
			Description: st.SuccessRate.Description,
		},
		Hero: HeroForm{
			Title:    st.Hero.Title,
			Subtitle: st.Hero.Subtitle,
			Button1:  st.Hero.Button1,
			Button2:  st.Hero.Button2,
		},
		Preview: PreviewResponse{
			Name:       st.Preview.Name,
			Specialty:  st.Preview.Specialty,
			Bio:        st.Preview.Bio,
			Education:  st.Preview.Education,
			Experience: st.Preview.Experience,
		},
		Status: NewStatusResponse(st.Status),
		Roster: roster,
	}
}

// Draft converts the form to the editor's doctor draft.
func (f DoctorForm) Draft() app.DoctorDraft {
	return app.DoctorDraft{
		Name:       f.Name,
		Specialty:  f.Specialty,
		Bio:        f.Bio,
		Education:  f.Education,
		Experience: f.Experience,
	}
}

// Draft converts the form to the editor's success-rate draft.
func (f SuccessRateForm) Draft() app.SuccessRateDraft {
	return app.SuccessRateDraft{
		DoctorID:    domain.DoctorID(f.DoctorID),
		Rate:        f.Rate,
		Description: f.Description,
	}
}

// Hero converts the form to hero content.
func (f HeroForm) Hero() domain.HeroContent {
	return domain.HeroContent{
		Title:    f.Title,
		Subtitle: f.Subtitle,
		Button1:  f.Button1,
		Button2:  f.Button2,
	}
}
