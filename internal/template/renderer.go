// Package template resolves message templates from drafts and merges
// reminder fields into them.
package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/meetreminder/meetreminder/internal/model"
)

// ErrTemplateMerge is returned when a merged template no longer decodes.
var ErrTemplateMerge = errors.New("template merge failed")

var placeholderRe = regexp.MustCompile(`{{[^{}]+}}`)

var valueEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`/`, `\/`,
	"\b", `\b`,
	"\f", `\f`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeValue escapes s for interpolation inside a JSON string literal.
func EscapeValue(s string) string {
	return valueEscaper.Replace(s)
}

// Render substitutes every {{field}} in the template's subject, text and
// html with the matching value from fields. Missing fields render empty.
//
// The template is merged in its JSON-encoded form so a single substitution
// pass covers all three bodies; values are escaped to stay inside their
// string literal.
func Render(bundle *model.TemplateBundle, fields map[string]string) (*model.RenderedMessage, error) {
	// Placeholder names may contain <, > or &, so those stay unescaped.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(model.RenderedMessage{
		Subject: bundle.Subject,
		Text:    bundle.Text,
		HTML:    bundle.HTML,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateMerge, err)
	}
	encoded := bytes.TrimRight(buf.Bytes(), "\n")

	merged := placeholderRe.ReplaceAllStringFunc(string(encoded), func(key string) string {
		field := strings.Trim(key, "{}")
		return EscapeValue(fields[field])
	})

	var out model.RenderedMessage
	if err := json.Unmarshal([]byte(merged), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateMerge, err)
	}
	return &out, nil
}
