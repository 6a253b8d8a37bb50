package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/clinic-site/internal/adapters/http/dto"
	"github.com/jsamuelsen/clinic-site/internal/adapters/http/middleware"
	"github.com/jsamuelsen/clinic-site/internal/app"
	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/platform/logging"
)

// AdminHandler serves the admin editor of a page view. Every route runs
// behind middleware.RequireAdminSession, so the view and its open editor
// are already resolved.
type AdminHandler struct{}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// editor returns the resolved view and its editor, or writes the error.
func (h *AdminHandler) editor(c *gin.Context) (*app.PageView, *app.Editor, bool) {
	view := middleware.GetPageView(c)
	if view == nil {
		dto.HandleError(c, domain.NewForbiddenError(c.FullPath(), "no admin session"))
		return nil, nil, false
	}

	// The editor may have been closed since the middleware ran.
	ed, err := view.Editor(c.Request.Method + " " + c.FullPath())
	if err != nil {
		dto.HandleError(c, err)
		return nil, nil, false
	}

	return view, ed, true
}

func (h *AdminHandler) respondEditor(c *gin.Context, view *app.PageView, ed *app.Editor) {
	c.JSON(http.StatusOK, dto.NewEditorResponse(view.ID(), ed.State()))
}

func respondAction(c *gin.Context, st app.Status) {
	c.JSON(http.StatusOK, dto.ActionResponse{Status: dto.NewStatusResponse(st)})
}

// GetEditor handles GET /editor.
// Returns the drafts, selected doctor, banner and preview.
func (h *AdminHandler) GetEditor(c *gin.Context) {
	view, ed, ok := h.editor(c)
	if !ok {
		return
	}

	h.respondEditor(c, view, ed)
}

// PutColors handles PUT /colors.
// Replaces the colors draft.
func (h *AdminHandler) PutColors(c *gin.Context) {
	view, ed, ok := h.editor(c)
	if !ok {
		return
	}

	var req dto.ColorsRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RejectInvalid(c, err)
		return
	}

	ed.SetColors(domain.ColorTheme(req.Colors))
	h.respondEditor(c, view, ed)
}

// PatchColors handles PATCH /colors.
// Sets the given properties on the colors draft and keeps the rest.
func (h *AdminHandler) PatchColors(c *gin.Context) {
	view, ed, ok := h.editor(c)
	if !ok {
		return
	}

	var req dto.ColorsRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RejectInvalid(c, err)
		return
	}

	ed.MergeColors(domain.ColorTheme(req.Colors))
	h.respondEditor(c, view, ed)
}

// PutDoctor handles PUT /doctor.
// Replaces the doctor draft of the selected doctor.
func (h *AdminHandler) PutDoctor(c *gin.Context) {
	view, ed, ok := h.editor(c)
	if !ok {
		return
	}

	var req dto.DoctorForm
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RejectInvalid(c, err)
		return
	}

	ed.SetDoctor(req.Draft())
	h.respondEditor(c, view, ed)
}

// PutSuccessRate handles PUT /success-rate.
// Replaces the success-rate draft. The rate text is kept as typed.
func (h *AdminHandler) PutSuccessRate(c *gin.Context) {
	view, ed, ok := h.editor(c)
	if !ok {
		return
	}

	var req dto.SuccessRateForm
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RejectInvalid(c, err)
		return
	}

	ed.SetSuccessRate(req.Draft())
	h.respondEditor(c, view, ed)
}

// PutHero handles PUT /hero.
// Replaces the hero draft.
func (h *AdminHandler) PutHero(c *gin.Context) {
	view, ed, ok := h.editor(c)
	if !ok {
		return
	}

	var req dto.HeroForm
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RejectInvalid(c, err)
		return
	}

	ed.SetHero(req.Hero())
	h.respondEditor(c, view, ed)
}

// SelectDoctor handles POST /doctor/select.
// Re-seeds the doctor and success-rate drafts; unsaved edits are dropped
// and reported.
func (h *AdminHandler) SelectDoctor(c *gin.Context) {
	view, ed, ok := h.editor(c)
	if !ok {
		return
	}

	var req dto.SelectDoctorRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RejectInvalid(c, err)
		return
	}

	res, err := ed.SelectDoctor(domain.DoctorID(req.DoctorID))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if res.DiscardedUnsaved {
		logging.FromContext(c.Request.Context()).Info("unsaved doctor drafts discarded",
			slog.String("doctor_id", req.DoctorID),
		)
	}

	c.JSON(http.StatusOK, dto.SelectDoctorResponse{
		SelectedDoctor:   string(res.Selected),
		DiscardedUnsaved: res.DiscardedUnsaved,
		Editor:           dto.NewEditorResponse(view.ID(), ed.State()),
	})
}

// ApplyColors handles POST /colors/apply.
// Previews the colors draft on this page view only.
func (h *AdminHandler) ApplyColors(c *gin.Context) {
	view, ed, ok := h.editor(c)
	if !ok {
		return
	}

	props := ed.ApplyColors()
	view.PreviewTheme(props)

	c.JSON(http.StatusOK, dto.ApplyColorsResponse{
		Properties: props,
		Status:     dto.NewStatusResponse(ed.State().Status),
	})
}

// ApplyDoctor handles POST /doctor/apply.
func (h *AdminHandler) ApplyDoctor(c *gin.Context) {
	if _, ed, ok := h.editor(c); ok {
		respondAction(c, ed.ApplyDoctor())
	}
}

// ApplySuccessRate handles POST /success-rate/apply.
func (h *AdminHandler) ApplySuccessRate(c *gin.Context) {
	if _, ed, ok := h.editor(c); ok {
		respondAction(c, ed.ApplySuccessRate())
	}
}

// ApplyHero handles POST /hero/apply.
func (h *AdminHandler) ApplyHero(c *gin.Context) {
	if _, ed, ok := h.editor(c); ok {
		respondAction(c, ed.ApplyHero())
	}
}

// SaveColors handles POST /colors/save.
// A failed write is reported on the banner, not as an HTTP error.
func (h *AdminHandler) SaveColors(c *gin.Context) {
	if _, ed, ok := h.editor(c); ok {
		respondAction(c, ed.SaveColors(c.Request.Context()))
	}
}

// SaveDoctor handles POST /doctor/save.
func (h *AdminHandler) SaveDoctor(c *gin.Context) {
	if _, ed, ok := h.editor(c); ok {
		respondAction(c, ed.SaveDoctor(c.Request.Context()))
	}
}

// SaveSuccessRate handles POST /success-rate/save.
// Rate text without leading digits is rejected with 400 before any write.
func (h *AdminHandler) SaveSuccessRate(c *gin.Context) {
	_, ed, ok := h.editor(c)
	if !ok {
		return
	}

	st, err := ed.SaveSuccessRate(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	respondAction(c, st)
}

// SaveHero handles POST /hero/save.
func (h *AdminHandler) SaveHero(c *gin.Context) {
	if _, ed, ok := h.editor(c); ok {
		respondAction(c, ed.SaveHero(c.Request.Context()))
	}
}

// Close handles POST /close.
// Hides the editor and drops its drafts.
func (h *AdminHandler) Close(c *gin.Context) {
	view, _, ok := h.editor(c)
	if !ok {
		return
	}

	view.CloseAdmin()
	logging.FromContext(c.Request.Context()).Info("admin editor closed")

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers the editor routes on a group that already
// resolves the session.
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/editor", h.GetEditor)

	rg.PUT("/colors", h.PutColors)
	rg.PATCH("/colors", h.PatchColors)
	rg.PUT("/doctor", h.PutDoctor)
	rg.PUT("/success-rate", h.PutSuccessRate)
	rg.PUT("/hero", h.PutHero)

	rg.POST("/doctor/select", h.SelectDoctor)

	rg.POST("/colors/apply", h.ApplyColors)
	rg.POST("/doctor/apply", h.ApplyDoctor)
	rg.POST("/success-rate/apply", h.ApplySuccessRate)
	rg.POST("/hero/apply", h.ApplyHero)

	rg.POST("/colors/save", h.SaveColors)
	rg.POST("/doctor/save", h.SaveDoctor)
	rg.POST("/success-rate/save", h.SaveSuccessRate)
	rg.POST("/hero/save", h.SaveHero)

	rg.POST("/close", h.Close)
}
