package app

import (
	"context"
	"log/slog"
	"maps"
	"strconv"
	"sync"
	"time"

	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/platform/logging"
	"github.com/jsamuelsen/clinic-site/internal/ports"
)

// DefaultSaveTimeout bounds a single admin save.
const DefaultSaveTimeout = 10 * time.Second

// DoctorDraft is the doctor form. Education and experience are edited as
// newline-joined text.
type DoctorDraft struct {
	Name       string `json:"name"`
	Specialty  string `json:"specialty"`
	Bio        string `json:"bio"`
	Education  string `json:"education"`
	Experience string `json:"experience"`
}

// SuccessRateDraft is the success-rate form. Rate stays raw text until save.
type SuccessRateDraft struct {
	DoctorID    domain.DoctorID `json:"doctorId"`
	Rate        string          `json:"rate"`
	Description string          `json:"description"`
}

// DoctorPreview is the draft doctor as the preview pane shows it.
type DoctorPreview struct {
	Name       string   `json:"name"`
	Specialty  string   `json:"specialty"`
	Bio        string   `json:"bio"`
	Education  []string `json:"education"`
	Experience []string `json:"experience"`
}

// EditorState is a consistent copy of everything the editor shows.
type EditorState struct {
	Colors      domain.ColorTheme    `json:"colors"`
	Selected    domain.DoctorID      `json:"selectedDoctor"`
	Doctor      DoctorDraft          `json:"doctor"`
	SuccessRate SuccessRateDraft     `json:"successRate"`
	Hero        domain.HeroContent   `json:"hero"`
	Preview     DoctorPreview        `json:"preview"`
	Status      Status               `json:"status"`
	Roster      []domain.RosterEntry `json:"roster"`
}

// SelectResult reports the effect of choosing another doctor.
type SelectResult struct {
	Selected domain.DoctorID `json:"selectedDoctor"`

	// DiscardedUnsaved is set when the replaced drafts held edits that were
	// never saved.
	DiscardedUnsaved bool `json:"discardedUnsaved"`
}

// EditorConfig tunes an Editor. The status banner always lasts
// StatusBannerTTL.
type EditorConfig struct {
	SaveTimeout time.Duration
}

// Editor holds one admin's drafts and writes them to the store on request.
//
// Drafts are seeded from the content loaded when the editor opens and are not
// touched by later live updates; only selecting a doctor re-seeds the doctor
// and success-rate drafts. Saves write the whole draft and report the outcome
// on the status banner.
type Editor struct {
	store   ports.ContentStore
	loaded  func() domain.Content
	banner  *Banner
	metrics ports.SiteMetrics
	timeout time.Duration

	mu         sync.Mutex
	colors     domain.ColorTheme
	selected   domain.DoctorID
	doctor     DoctorDraft
	doctorSeed DoctorDraft
	rate       SuccessRateDraft
	rateSeed   SuccessRateDraft
	hero       domain.HeroContent
}

// NewEditor seeds an editor from loaded(). loaded is consulted again whenever
// a doctor is selected. notify receives every banner change.
func NewEditor(
	store ports.ContentStore,
	loaded func() domain.Content,
	cfg EditorConfig,
	metrics ports.SiteMetrics,
	notify func(Status),
) *Editor {
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultSaveTimeout
	}

	if metrics == nil {
		metrics = ports.NopMetrics{}
	}

	e := &Editor{
		store:    store,
		loaded:   loaded,
		banner:   NewBanner(StatusBannerTTL, notify),
		metrics:  metrics,
		timeout:  cfg.SaveTimeout,
		selected: domain.DoctorJohnson,
	}

	c := loaded()
	e.colors = c.Colors.Clone()
	e.hero = c.Hero
	e.seedDoctor(c)

	return e
}

// State returns a copy of the editor.
func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()

	return EditorState{
		Colors:      e.colors.Clone(),
		Selected:    e.selected,
		Doctor:      e.doctor,
		SuccessRate: e.rate,
		Hero:        e.hero,
		Preview:     previewOf(e.doctor),
		Status:      e.banner.Current(),
		Roster:      domain.Roster,
	}
}

// SetColors replaces the colors draft.
func (e *Editor) SetColors(theme domain.ColorTheme) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.colors = theme.Clone()
}

// MergeColors sets the given properties on the colors draft and keeps the
// others, the way a single color input edits one slot.
func (e *Editor) MergeColors(theme domain.ColorTheme) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.colors == nil {
		e.colors = domain.ColorTheme{}
	}

	maps.Copy(e.colors, theme)
}

// SetDoctor replaces the doctor draft.
func (e *Editor) SetDoctor(d DoctorDraft) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.doctor = d
}

// SetSuccessRate replaces the success-rate draft.
func (e *Editor) SetSuccessRate(r SuccessRateDraft) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rate = r
}

// SetHero replaces the hero draft.
func (e *Editor) SetHero(h domain.HeroContent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.hero = h
}

// SelectDoctor re-seeds the doctor and success-rate drafts for id from the
// loaded content. Unsaved edits in both drafts are dropped.
func (e *Editor) SelectDoctor(id domain.DoctorID) (SelectResult, error) {
	if !id.Known() {
		return SelectResult{}, domain.NewValidationErrorWithValue("doctorId", "unknown doctor", id)
	}

	c := e.loaded()

	e.mu.Lock()
	defer e.mu.Unlock()

	dirty := e.doctor != e.doctorSeed || e.rate != e.rateSeed

	e.selected = id
	e.seedDoctor(c)

	return SelectResult{Selected: id, DiscardedUnsaved: dirty}, nil
}

// ApplyColors previews the colors draft. The returned properties are meant
// for this admin's page only; nothing is written.
func (e *Editor) ApplyColors() []domain.Property {
	e.mu.Lock()
	props := e.colors.Properties()
	e.mu.Unlock()

	e.banner.Show(`Colors applied temporarily. Click "Save Colors" to make permanent.`, StatusSuccess)

	return props
}

// ApplyDoctor acknowledges the doctor draft without writing it.
func (e *Editor) ApplyDoctor() Status {
	return e.banner.Show(`Doctor profile updated temporarily. Click "Save Doctor Profile" to make permanent.`, StatusSuccess)
}

// ApplySuccessRate acknowledges the success-rate draft without writing it.
func (e *Editor) ApplySuccessRate() Status {
	return e.banner.Show(`Success rate updated temporarily. Click "Save Success Rate" to make permanent.`, StatusSuccess)
}

// ApplyHero acknowledges the hero draft without writing it.
func (e *Editor) ApplyHero() Status {
	return e.banner.Show(`Hero section updated temporarily. Click "Save Hero Section" to make permanent.`, StatusSuccess)
}

// SaveColors writes the colors draft.
func (e *Editor) SaveColors(ctx context.Context) Status {
	e.mu.Lock()
	theme := e.colors.Clone()
	e.mu.Unlock()

	err := e.write(ctx, theme)
	if err != nil {
		return e.banner.Show("Error saving colors: "+err.Error(), StatusError)
	}

	return e.banner.Show("Colors saved successfully!", StatusSuccess)
}

// SaveDoctor writes the doctor draft under the selected doctor id.
func (e *Editor) SaveDoctor(ctx context.Context) Status {
	e.mu.Lock()
	draft, id := e.doctor, e.selected
	e.mu.Unlock()

	profile := domain.DoctorProfile{
		ID:         id,
		Name:       draft.Name,
		Specialty:  draft.Specialty,
		Bio:        draft.Bio,
		Education:  domain.SplitLines(draft.Education),
		Experience: domain.SplitLines(draft.Experience),
	}

	if err := e.write(ctx, profile); err != nil {
		return e.banner.Show("Error saving doctor profile: "+err.Error(), StatusError)
	}

	e.mu.Lock()
	if e.selected == id {
		e.doctorSeed = draft
	}
	e.mu.Unlock()

	return e.banner.Show("Doctor profile for "+draft.Name+" saved successfully!", StatusSuccess)
}

// SaveSuccessRate coerces the rate text and writes the success-rate draft
// under its own doctor id. Rate text without leading digits is rejected with
// a validation error before anything is written.
func (e *Editor) SaveSuccessRate(ctx context.Context) (Status, error) {
	e.mu.Lock()
	draft := e.rate
	e.mu.Unlock()

	rate, err := ParseRate(draft.Rate)
	if err != nil {
		return Status{}, err
	}

	record := domain.SuccessRate{
		DoctorID:    draft.DoctorID,
		Rate:        rate,
		Description: draft.Description,
	}

	if err := e.write(ctx, record); err != nil {
		return e.banner.Show("Error saving success rate: "+err.Error(), StatusError), nil
	}

	e.mu.Lock()
	if e.rate == draft {
		e.rateSeed = draft
	}
	e.mu.Unlock()

	name := "doctor"
	if d, ok := e.loaded().Doctors[draft.DoctorID]; ok && d.Name != "" {
		name = d.Name
	}

	return e.banner.Show("Success rate for "+name+" saved successfully!", StatusSuccess), nil
}

// SaveHero writes the hero draft.
func (e *Editor) SaveHero(ctx context.Context) Status {
	e.mu.Lock()
	hero := e.hero
	e.mu.Unlock()

	if err := e.write(ctx, hero); err != nil {
		return e.banner.Show("Error saving hero section: "+err.Error(), StatusError)
	}

	return e.banner.Show("Hero section saved successfully!", StatusSuccess)
}

// Close stops the banner timer. A save already in flight still completes.
func (e *Editor) Close() {
	e.banner.Stop()
}

// write performs a blocking store write that outlives the caller's
// cancellation, bounded by the save timeout.
func (e *Editor) write(ctx context.Context, record domain.Record) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	err := e.store.Write(ctx, record)

	outcome := ports.SaveSucceeded
	if err != nil {
		outcome = ports.SaveFailed

		logging.FromContext(ctx).WarnContext(ctx, "content save failed",
			slog.String("resource", record.Resource().String()),
			slog.String("document", record.DocumentID()),
			slog.Any("error", err),
		)
	}

	e.metrics.SaveCompleted(record.Resource(), outcome)

	return err
}

// seedDoctor must be called with mu held or before the editor is shared.
func (e *Editor) seedDoctor(c domain.Content) {
	e.doctor = DoctorDraft{}
	if d, ok := c.Doctors[e.selected]; ok {
		e.doctor = DoctorDraft{
			Name:       d.Name,
			Specialty:  d.Specialty,
			Bio:        d.Bio,
			Education:  domain.JoinLines(d.Education),
			Experience: domain.JoinLines(d.Experience),
		}
	}

	e.rate = SuccessRateDraft{DoctorID: e.selected}
	if r, ok := c.SuccessRates[e.selected]; ok {
		e.rate.Rate = strconv.Itoa(r.Rate)
		e.rate.Description = r.Description
	}

	e.doctorSeed = e.doctor
	e.rateSeed = e.rate
}

func previewOf(d DoctorDraft) DoctorPreview {
	p := DoctorPreview{
		Name:       d.Name,
		Specialty:  d.Specialty,
		Bio:        d.Bio,
		Education:  domain.SplitLines(d.Education),
		Experience: domain.SplitLines(d.Experience),
	}

	if p.Name == "" {
		p.Name = "Doctor Name"
	}

	if p.Specialty == "" {
		p.Specialty = "Specialty"
	}

	if p.Bio == "" {
		p.Bio = "Biography"
	}

	return p
}
