package service

import (
	"fmt"
	"time"

	"github.com/sakif/snippetbox/internal/apperror"
	"github.com/sakif/snippetbox/internal/model"
)

// VERSION HISTORY
//
// Versions is a stack, most recent first. Every committed edit and every
// version restore pushes the values that were live just before it. Nothing
// caps the depth.
//
//	edit:     [v2 v1]          → [pre-edit v2 v1]
//	restore1: [pre-edit v2 v1] → [pre-restore pre-edit v1]   (v2 is live again)

// applyEdit records the current values and then replaces them with f.
func applyEdit(s *model.Snippet, f model.Fields, now time.Time) {
	s.Versions = prepend(s.Snapshot(), s.Versions)
	setFields(s, f)
	s.UpdatedAt = now
}

// applyVersion makes Versions[index] live again. The pre-restore values are
// pushed and the restored entry leaves the stack.
func applyVersion(s *model.Snippet, index int, now time.Time) error {
	if index < 0 || index >= len(s.Versions) {
		return apperror.ValidationFailed("version",
			fmt.Sprintf("version %d does not exist (snippet has %d)", index, len(s.Versions)))
	}

	restored := s.Versions[index]
	rest := make([]model.Version, 0, len(s.Versions))
	rest = append(rest, s.Versions[:index]...)
	rest = append(rest, s.Versions[index+1:]...)

	s.Versions = prepend(s.Snapshot(), rest)
	setFields(s, restored.Fields())
	s.UpdatedAt = now
	return nil
}

func setFields(s *model.Snippet, f model.Fields) {
	s.Title = f.Title
	s.Description = f.Description
	s.Language = f.Language
	s.Tags = f.Tags
	s.Code = f.Code
}

func prepend(v model.Version, stack []model.Version) []model.Version {
	out := make([]model.Version, 0, len(stack)+1)
	out = append(out, v)
	return append(out, stack...)
}
