// Package model defines the data structures used throughout the application.
package model

import "time"

// Snippet is one saved code snippet.
//
// The JSON names are the on-disk contract of the local collection and of the
// export file, so they must not change:
//
//	{"id":"cv37rs3pp9olc6atsptg","title":"Hi","code":"print(1)",
//	 "tags":["demo"],"isFavorite":false,"deletedAt":null,"versions":[],...}
//
// DeletedAt is nil for an active snippet and set for a snippet in the trash.
// Versions holds prior states, most recent first.
type Snippet struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Language    string     `json:"language"`
	Code        string     `json:"code"`
	Tags        []string   `json:"tags"`
	IsFavorite  bool       `json:"isFavorite"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
	Versions    []Version  `json:"versions"`
}

// Active reports whether the snippet is outside the trash.
func (s *Snippet) Active() bool {
	return s.DeletedAt == nil
}

// HasTag reports whether tag is one of the snippet's tags.
func (s *Snippet) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// LastSaved is the instant the current field values were committed:
// UpdatedAt, or CreatedAt for a snippet that was never edited.
func (s *Snippet) LastSaved() time.Time {
	if s.UpdatedAt.IsZero() {
		return s.CreatedAt
	}
	return s.UpdatedAt
}

// Version is a snapshot of a snippet's user-authored fields taken right
// before an edit or a version restore. SavedAt is when those values had been
// committed.
type Version struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Tags        []string  `json:"tags"`
	Code        string    `json:"code"`
	SavedAt     time.Time `json:"savedAt"`
}

// Fields are the user-authored values of a snippet. Create and edit take
// them; drafts persist them.
type Fields struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Tags        []string `json:"tags"`
	Code        string   `json:"code"`
}

// Draft is unsaved edit-form state for one edit session.
type Draft = Fields

// Fields returns the snippet's current user-authored values.
func (s *Snippet) Fields() Fields {
	return Fields{
		Title:       s.Title,
		Description: s.Description,
		Language:    s.Language,
		Tags:        append([]string{}, s.Tags...),
		Code:        s.Code,
	}
}

// Snapshot captures the current values as a Version.
func (s *Snippet) Snapshot() Version {
	f := s.Fields()
	return Version{
		Title:       f.Title,
		Description: f.Description,
		Language:    f.Language,
		Tags:        f.Tags,
		Code:        f.Code,
		SavedAt:     s.LastSaved(),
	}
}

// Fields returns the user-authored values stored in the version.
func (v Version) Fields() Fields {
	return Fields{
		Title:       v.Title,
		Description: v.Description,
		Language:    v.Language,
		Tags:        append([]string{}, v.Tags...),
		Code:        v.Code,
	}
}
