// Package modes builds Mode records from mode documents and renders them as
// JSON values for the aggregated modes artifact.
package modes

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/jingkaihe/cliner/pkg/document"
)

// Header keys recognised in a mode document. Keys listed together are tried
// in order, so a legacy key only applies when the primary key is absent.
var (
	SlugKeys               = []string{"slug:"}
	NameKeys               = []string{"name:", "mode_name:"}
	DescriptionKeys        = []string{"description:"}
	DefaultOutputKeys      = []string{"defaultOutput:", "default_output:"}
	CustomInstructionsKeys = []string{"customInstructions:"}
)

// Section markers recognised in a mode document.
const (
	GroupsMarker       = "groups:"
	RestrictionsMarker = "restrictions:"
)

// ErrSerialization is returned when a Mode cannot be rendered as JSON.
var ErrSerialization = errors.New("failed to serialize mode")

// Mode is a parsed mode document.
type Mode struct {
	Slug               string            `json:"slug"`
	Name               string            `json:"name"`
	RoleDefinition     string            `json:"roleDefinition"`
	Groups             []string          `json:"groups"`
	Description        *string           `json:"description,omitempty"`
	Restrictions       map[string]string `json:"restrictions,omitempty"`
	DefaultOutput      *string           `json:"defaultOutput,omitempty"`
	CustomInstructions *string           `json:"customInstructions,omitempty"`
}

// Parse splits content into header and body and builds a Mode from them.
func Parse(content string) (*Mode, error) {
	doc, err := document.Split(content)
	if err != nil {
		return nil, err
	}
	return Build(doc.Header, doc.Body)
}

// Build composes a Mode from header lines and body text. The slug is derived
// from the name only when the header carries no explicit slug.
func Build(header document.Header, body string) (*Mode, error) {
	name, ok := header.FirstField(NameKeys...)
	if !ok {
		return nil, errors.WithStack(&document.MissingFieldError{Field: "name", Candidates: NameKeys})
	}

	slug, ok := header.FirstField(SlugKeys...)
	if !ok {
		slug = Slugify(name)
	}

	return &Mode{
		Slug:               slug,
		Name:               name,
		RoleDefinition:     strings.TrimSpace(body),
		Groups:             header.List(GroupsMarker),
		Description:        optionalField(header, DescriptionKeys),
		Restrictions:       header.Map(RestrictionsMarker),
		DefaultOutput:      optionalField(header, DefaultOutputKeys),
		CustomInstructions: optionalField(header, CustomInstructionsKeys),
	}, nil
}

func optionalField(header document.Header, keys []string) *string {
	value, ok := header.FirstField(keys...)
	if !ok {
		return nil
	}
	return &value
}

// Slugify lowercases name, turns every character that is neither alphanumeric
// nor a hyphen into a hyphen, collapses hyphen runs and trims hyphens from
// both ends.
func Slugify(name string) string {
	var b strings.Builder
	lastWasHyphen := false

	for _, r := range strings.ToLower(name) {
		if r != '-' && !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			r = '-'
		}
		if r == '-' {
			if !lastWasHyphen {
				b.WriteRune(r)
			}
			lastWasHyphen = true
			continue
		}
		b.WriteRune(r)
		lastWasHyphen = false
	}

	return strings.Trim(b.String(), "-")
}

// JSON renders the mode as a JSON value.
func (m *Mode) JSON() (json.RawMessage, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(ErrSerialization, "mode %s: %v", m.Slug, err)
	}
	return json.RawMessage(data), nil
}

// ParseJSON parses content and renders the resulting Mode as a JSON value.
func ParseJSON(content string) (json.RawMessage, error) {
	mode, err := Parse(content)
	if err != nil {
		return nil, err
	}
	return mode.JSON()
}
