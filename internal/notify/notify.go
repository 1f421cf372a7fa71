// Package notify renders outbound notification text for a disc from a
// message template, substituting $-prefixed variables with disc and
// account fields.
package notify

import (
	"errors"
	"strings"
	"time"

	"github.com/lostflight/lostflight/internal/model"
)

// ErrTemplateNotFound signals a stale or deleted template reference.
// Callers should fall back to the type's current default template or
// surface the error.
var ErrTemplateNotFound = errors.New("template not found")

// HeldUntilFormat is the short date layout used for $heldUntil.
const HeldUntilFormat = "Jan 2, 2006"

// variables lists the recognized substitution tokens, longest first so
// that a scan at '$' never matches a shorter token that prefixes a longer
// one ($heldUntil must not lose its tail to a shorter match).
var variables = []string{
	"heldUntil",
	"plastic",
	"color",
	"brand",
	"mold",
	"name",
	"laf",
}

// Values holds the substitution inputs for one disc. Absent fields
// substitute as empty strings.
type Values struct {
	Name      string
	Color     string
	Brand     string
	Plastic   string
	Mold      string
	LAF       string
	HeldUntil *time.Time
}

// DiscValues extracts substitution values from a disc and its owning
// account's settings.
func DiscValues(d *model.Disc, u *model.User) Values {
	return Values{
		Name:      d.Name,
		Color:     d.Color,
		Brand:     d.Brand,
		Plastic:   d.Plastic,
		Mold:      d.Mold,
		LAF:       u.LAF,
		HeldUntil: d.HeldUntil,
	}
}

func (v Values) lookup(name string) string {
	switch name {
	case "name":
		return v.Name
	case "color":
		return v.Color
	case "brand":
		return v.Brand
	case "plastic":
		return v.Plastic
	case "mold":
		return v.Mold
	case "laf":
		return v.LAF
	case "heldUntil":
		if v.HeldUntil == nil {
			return ""
		}
		return v.HeldUntil.Format(HeldUntilFormat)
	}
	return ""
}

// Span is one segment of rendered output. Variable spans were produced by
// substitution; literal spans come straight from the template content.
type Span struct {
	Text     string `json:"text"`
	Variable bool   `json:"variable"`
}

// Spans splits template content into an ordered sequence of literal and
// substituted segments, for previews that style the two differently.
// Render concatenates the same spans, so the two can never disagree.
func Spans(content string, v Values) []Span {
	var spans []Span
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			spans = append(spans, Span{Text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(content); {
		if content[i] != '$' {
			literal.WriteByte(content[i])
			i++
			continue
		}

		matched := false
		for _, name := range variables {
			if strings.HasPrefix(content[i+1:], name) {
				flush()
				spans = append(spans, Span{Text: v.lookup(name), Variable: true})
				i += 1 + len(name)
				matched = true
				break
			}
		}
		if !matched {
			// Unrecognized $word stays verbatim.
			literal.WriteByte('$')
			i++
		}
	}
	flush()

	return spans
}

// Render substitutes recognized variables in content and returns the
// final message text.
func Render(content string, v Values) string {
	var b strings.Builder
	for _, s := range Spans(content, v) {
		b.WriteString(s.Text)
	}
	return b.String()
}

// TemplateChoice selects the message source for a notification slot:
// either a reference to one of the account's templates, or custom
// free-form text.
type TemplateChoice struct {
	id     int64
	custom bool
}

// UseTemplate selects the template with the given id.
func UseTemplate(id int64) TemplateChoice {
	return TemplateChoice{id: id}
}

// Custom selects the disc's stored custom text, sent verbatim.
func Custom() TemplateChoice {
	return TemplateChoice{custom: true}
}

// IsCustom reports whether the choice is custom text.
func (c TemplateChoice) IsCustom() bool {
	return c.custom
}

// TemplateID returns the referenced template id, if any.
func (c TemplateChoice) TemplateID() (int64, bool) {
	if c.custom {
		return 0, false
	}
	return c.id, true
}

// ChannelChoice converts a disc's stored channel into a TemplateChoice.
// Returns false when the channel selects neither a template nor custom
// text, in which case callers use the type's default template.
func ChannelChoice(ch model.Channel) (TemplateChoice, bool) {
	if ch.Custom {
		return Custom(), true
	}
	if ch.TemplateID != nil {
		return UseTemplate(*ch.TemplateID), true
	}
	return TemplateChoice{}, false
}

// DefaultFor returns the default template of the given type, or nil.
func DefaultFor(templates []model.Template, typ string) *model.Template {
	for i := range templates {
		if templates[i].Type == typ && templates[i].IsDefault {
			return &templates[i]
		}
	}
	return nil
}

// Resolve produces the literal message text for one notification slot.
// A custom choice returns customText unmodified, with no substitution.
// A template choice locates the template by id among the account's
// templates of the matching type and renders it; a missing template
// yields ErrTemplateNotFound.
func Resolve(choice TemplateChoice, customText, typ string, templates []model.Template, v Values) (string, error) {
	if choice.IsCustom() {
		return customText, nil
	}

	id, _ := choice.TemplateID()
	for i := range templates {
		if templates[i].ID == id && templates[i].Type == typ {
			return Render(templates[i].Content, v), nil
		}
	}
	return "", ErrTemplateNotFound
}
