// Package web renders the public page and serves its embedded assets.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"github.com/jsamuelsen/clinic-site/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Template names.
const (
	TemplatePage    = "page"
	TemplateHero    = "hero"
	TemplateDoctors = "doctors"
)

// Static returns the embedded static assets rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	return sub
}

// Page is the view model of the full page.
type Page struct {
	Title       string
	Description string
	Theme       []domain.Property
	Hero        domain.HeroContent
	Doctors     []Card
	Roster      []domain.RosterEntry
}

// Card is one doctor card.
type Card struct {
	ID          string
	Name        string
	Specialty   string
	Bio         string
	Education   []string
	Experience  []string
	SuccessRate *domain.SuccessRate
}

// NewPage builds the view model for content.
func NewPage(c domain.Content) Page {
	p := Page{
		Title:       c.Title,
		Description: c.Description,
		Theme:       c.Colors.Properties(),
		Hero:        c.Hero.WithDefaults(),
		Doctors:     cardsOf(c),
		Roster:      domain.Roster,
	}

	if p.Title == "" {
		p.Title = domain.DefaultTitle
	}

	if p.Description == "" {
		p.Description = domain.DefaultDescription
	}

	return p
}

func cardsOf(c domain.Content) []Card {
	cards := c.Cards()
	out := make([]Card, 0, len(cards))

	for _, dc := range cards {
		out = append(out, Card{
			ID:          string(dc.ID),
			Name:        dc.Doctor.Name,
			Specialty:   dc.Doctor.Specialty,
			Bio:         dc.Doctor.Bio,
			Education:   dc.Doctor.Education,
			Experience:  dc.Doctor.Experience,
			SuccessRate: dc.SuccessRate,
		})
	}

	return out
}

// Renderer executes the page templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New(TemplatePage).
		Funcs(template.FuncMap{
			"themeCSS": ThemeCSS,
			"percent":  percent,
		}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Template returns the parsed template set for gin's HTML renderer.
func (r *Renderer) Template() *template.Template {
	return r.tmpl
}

// RegionID returns the id of the element that shows resource, or "" when
// the resource is applied as theme properties instead.
func RegionID(resource domain.Resource) string {
	switch resource {
	case domain.ResourceHero:
		return "home"
	case domain.ResourceDoctors, domain.ResourceSuccessRates:
		return "doctors"
	default:
		return ""
	}
}

// Fragment re-renders the page region that shows resource. Colors have no
// region and yield an empty fragment.
func (r *Renderer) Fragment(resource domain.Resource, c domain.Content) (string, error) {
	var (
		name string
		data any
	)

	switch resource {
	case domain.ResourceHero:
		name, data = TemplateHero, c.Hero.WithDefaults()
	case domain.ResourceDoctors, domain.ResourceSuccessRates:
		name, data = TemplateDoctors, cardsOf(c)
	default:
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s fragment: %w", name, err)
	}

	return buf.String(), nil
}

// ThemeCSS renders properties as a :root rule. Characters that could end
// the declaration or the style element are written as CSS escapes, so a
// stored value can never leave its declaration.
func ThemeCSS(props []domain.Property) template.CSS {
	var b strings.Builder

	b.WriteString(":root {")

	for _, p := range props {
		b.WriteString(" ")
		b.WriteString(escapeCSS(p.Name))
		b.WriteString(": ")
		b.WriteString(escapeCSS(p.Value))
		b.WriteString(";")
	}

	b.WriteString(" }")

	return template.CSS(b.String()) //nolint:gosec // every value is escaped above
}

func escapeCSS(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch r {
		case '<', '>', '{', '}', ';', '"', '\'', '\\', '\n', '\r', '\f':
			fmt.Fprintf(&b, `\%x `, r)
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// percent formats a success rate as a CSS width. Rates are not clamped.
func percent(rate int) template.CSS {
	return template.CSS(fmt.Sprintf("width: %d%%", rate)) //nolint:gosec // integer only
}
