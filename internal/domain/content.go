package domain

import (
	"maps"
	"slices"
	"strings"
)

// Resource names one of the four content slices held by the store.
type Resource string

const (
	// ResourceColors is the singleton settings/colors document.
	ResourceColors Resource = "colors"

	// ResourceHero is the singleton settings/hero document.
	ResourceHero Resource = "hero"

	// ResourceDoctors is the doctors collection keyed by doctor id.
	ResourceDoctors Resource = "doctors"

	// ResourceSuccessRates is the successRates collection keyed by doctor id.
	ResourceSuccessRates Resource = "successRates"
)

// Resources lists every resource in subscription order.
var Resources = []Resource{ResourceColors, ResourceHero, ResourceDoctors, ResourceSuccessRates}

// String implements fmt.Stringer.
func (r Resource) String() string {
	return string(r)
}

// Valid reports whether r is one of the known resources.
func (r Resource) Valid() bool {
	return slices.Contains(Resources, r)
}

// Record is a full document that can be written to the content store.
type Record interface {
	// Resource is the slice the record belongs to.
	Resource() Resource

	// DocumentID is the key the record is stored under.
	DocumentID() string
}

// Theme custom property names.
const (
	ColorPrimary   = "--primary"
	ColorSecondary = "--secondary"
	ColorDark      = "--dark"
	ColorAccent    = "--accent"
	ColorLight     = "--light"
)

// ColorSlots lists the named theme slots in display order.
var ColorSlots = []string{ColorPrimary, ColorSecondary, ColorDark, ColorAccent, ColorLight}

// ColorTheme maps CSS custom property names to color values.
// Values are never validated; whatever is stored is applied.
type ColorTheme map[string]string

// Resource implements Record.
func (ColorTheme) Resource() Resource { return ResourceColors }

// DocumentID implements Record.
func (ColorTheme) DocumentID() string { return "colors" }

// Clone returns an independent copy.
func (c ColorTheme) Clone() ColorTheme {
	if c == nil {
		return ColorTheme{}
	}

	return maps.Clone(c)
}

// Property is a single custom property assignment.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Properties returns the theme as assignments, named slots first and
// any extra stored keys after them in lexical order.
func (c ColorTheme) Properties() []Property {
	props := make([]Property, 0, len(c))

	for _, slot := range ColorSlots {
		if v, ok := c[slot]; ok {
			props = append(props, Property{Name: slot, Value: v})
		}
	}

	extra := make([]string, 0)
	for k := range c {
		if !slices.Contains(ColorSlots, k) {
			extra = append(extra, k)
		}
	}

	slices.Sort(extra)

	for _, k := range extra {
		props = append(props, Property{Name: k, Value: c[k]})
	}

	return props
}

// HeroContent is the banner copy at the top of the page.
type HeroContent struct {
	Title    string `json:"title"    firestore:"title"    bson:"title"`
	Subtitle string `json:"subtitle" firestore:"subtitle" bson:"subtitle"`
	Button1  string `json:"button1"  firestore:"button1"  bson:"button1"`
	Button2  string `json:"button2"  firestore:"button2"  bson:"button2"`
}

// Resource implements Record.
func (HeroContent) Resource() Resource { return ResourceHero }

// DocumentID implements Record.
func (HeroContent) DocumentID() string { return "hero" }

// WithDefaults fills empty fields from DefaultHero.
func (h HeroContent) WithDefaults() HeroContent {
	d := DefaultHero()

	if h.Title == "" {
		h.Title = d.Title
	}

	if h.Subtitle == "" {
		h.Subtitle = d.Subtitle
	}

	if h.Button1 == "" {
		h.Button1 = d.Button1
	}

	if h.Button2 == "" {
		h.Button2 = d.Button2
	}

	return h
}

// DoctorProfile is one entry of the medical team.
type DoctorProfile struct {
	ID         DoctorID `json:"-"          firestore:"-"          bson:"_id"`
	Name       string   `json:"name"       firestore:"name"       bson:"name"`
	Specialty  string   `json:"specialty"  firestore:"specialty"  bson:"specialty"`
	Bio        string   `json:"bio"        firestore:"bio"        bson:"bio"`
	Education  []string `json:"education"  firestore:"education"  bson:"education"`
	Experience []string `json:"experience" firestore:"experience" bson:"experience"`
}

// Resource implements Record.
func (DoctorProfile) Resource() Resource { return ResourceDoctors }

// DocumentID implements Record.
func (d DoctorProfile) DocumentID() string { return string(d.ID) }

// SuccessRate is the percentage bar shown on a doctor card.
type SuccessRate struct {
	DoctorID    DoctorID `json:"doctorId"    firestore:"doctorId"    bson:"_id"`
	Rate        int      `json:"rate"        firestore:"rate"        bson:"rate"`
	Description string   `json:"description" firestore:"description" bson:"description"`
}

// Resource implements Record.
func (SuccessRate) Resource() Resource { return ResourceSuccessRates }

// DocumentID implements Record.
func (s SuccessRate) DocumentID() string { return string(s.DoctorID) }

// SplitLines decodes newline-delimited editor text into entries.
// Empty lines are kept so that JoinLines(SplitLines(s)) == s.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// JoinLines encodes entries as newline-delimited editor text.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// Snapshot is a full-slice update delivered by the content store.
// Only the field matching Resource is meaningful.
type Snapshot struct {
	Resource     Resource
	Exists       bool
	Colors       ColorTheme
	Hero         HeroContent
	Doctors      map[DoctorID]DoctorProfile
	SuccessRates map[DoctorID]SuccessRate
}

// Content is the full set of slices rendered by the site.
type Content struct {
	Title        string
	Description  string
	Colors       ColorTheme
	Hero         HeroContent
	Doctors      map[DoctorID]DoctorProfile
	SuccessRates map[DoctorID]SuccessRate
}

// Apply replaces the slice named by the snapshot. A singleton snapshot for a
// document that does not exist leaves the slice untouched.
func (c *Content) Apply(s Snapshot) {
	switch s.Resource {
	case ResourceColors:
		if s.Exists {
			c.Colors = s.Colors.Clone()
		}
	case ResourceHero:
		if s.Exists {
			c.Hero = s.Hero
		}
	case ResourceDoctors:
		c.Doctors = maps.Clone(s.Doctors)
		if c.Doctors == nil {
			c.Doctors = map[DoctorID]DoctorProfile{}
		}
	case ResourceSuccessRates:
		c.SuccessRates = maps.Clone(s.SuccessRates)
		if c.SuccessRates == nil {
			c.SuccessRates = map[DoctorID]SuccessRate{}
		}
	}
}

// Clone returns a deep enough copy for independent mutation of slices.
func (c Content) Clone() Content {
	out := c
	out.Colors = c.Colors.Clone()
	out.Doctors = maps.Clone(c.Doctors)
	out.SuccessRates = maps.Clone(c.SuccessRates)

	return out
}

// Slice returns the current value of one resource as a snapshot.
func (c Content) Slice(r Resource) Snapshot {
	s := Snapshot{Resource: r, Exists: true}

	switch r {
	case ResourceColors:
		s.Colors = c.Colors.Clone()
	case ResourceHero:
		s.Hero = c.Hero
	case ResourceDoctors:
		s.Doctors = maps.Clone(c.Doctors)
	case ResourceSuccessRates:
		s.SuccessRates = maps.Clone(c.SuccessRates)
	}

	return s
}

// DoctorCard pairs a doctor with its optional success rate for display.
type DoctorCard struct {
	ID          DoctorID
	Doctor      DoctorProfile
	SuccessRate *SuccessRate
}

// Cards returns the doctor roster in stable order: known ids first in
// roster order, then any unknown ids lexically.
func (c Content) Cards() []DoctorCard {
	ids := slices.Collect(maps.Keys(c.Doctors))
	slices.SortFunc(ids, compareDoctorIDs)

	cards := make([]DoctorCard, 0, len(ids))

	for _, id := range ids {
		card := DoctorCard{ID: id, Doctor: c.Doctors[id]}
		if rate, ok := c.SuccessRates[id]; ok {
			card.SuccessRate = &rate
		}

		cards = append(cards, card)
	}

	return cards
}
