package template

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/meetreminder/meetreminder/internal/model"
)

// ErrTemplateNotFound is returned when no draft carries the requested subject.
var ErrTemplateNotFound = errors.New("template draft not found")

// Source resolves a template bundle by subject line
type Source interface {
	ResolveBySubject(ctx context.Context, subject string) (*model.TemplateBundle, error)
}

// DraftFinder looks up a stored draft by exact subject
type DraftFinder interface {
	FindDraftBySubject(ctx context.Context, subject string) (*model.Draft, bool, error)
}

var inlineImageRe = regexp.MustCompile(`<img.*?src="cid:(.*?)".*?alt="(.*?)"[^>]+>`)

// DraftSource builds template bundles from drafts
type DraftSource struct {
	finder DraftFinder
}

// NewDraftSource creates a DraftSource over finder
func NewDraftSource(finder DraftFinder) *DraftSource {
	return &DraftSource{finder: finder}
}

// ResolveBySubject loads the draft with the given subject and binds the
// inline images its HTML references.
func (s *DraftSource) ResolveBySubject(ctx context.Context, subject string) (*model.TemplateBundle, error) {
	draft, found, err := s.finder.FindDraftBySubject(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to look up template draft: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, subject)
	}
	return BundleFromDraft(draft), nil
}

// BundleFromDraft splits a draft's file parts into attachments and inline
// images. An inline image is bound to content id X when the HTML contains
// <img src="cid:X" alt="Y"> and the image is named Y.
func BundleFromDraft(draft *model.Draft) *model.TemplateBundle {
	bundle := &model.TemplateBundle{
		Subject:      draft.Subject,
		Text:         draft.Text,
		HTML:         draft.HTML,
		InlineImages: make(map[string]model.Attachment),
	}

	inlineByName := make(map[string]model.Attachment)
	for _, part := range draft.Parts {
		if part.Inline {
			inlineByName[part.Name] = part
			continue
		}
		bundle.Attachments = append(bundle.Attachments, part)
	}

	bound := make(map[string]bool)
	for _, m := range inlineImageRe.FindAllStringSubmatch(draft.HTML, -1) {
		cid, name := m[1], m[2]
		if img, ok := inlineByName[name]; ok {
			bundle.InlineImages[cid] = img
			bound[name] = true
		}
	}

	// Unreferenced inline parts still travel with the message
	for _, part := range draft.Parts {
		if part.Inline && !bound[part.Name] {
			bundle.Attachments = append(bundle.Attachments, part)
		}
	}
	return bundle
}
