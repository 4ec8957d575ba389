package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snippetbox/internal/apperror"
	"github.com/sakif/snippetbox/internal/model"
)

// DefaultExportFile is the file name offered for exports.
const DefaultExportFile = "snippets_backup.json"

// Export returns the whole collection, trash and history included, as
// indented JSON.
func (s *SnippetService) Export(ctx context.Context) ([]byte, error) {
	all, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting snippets: %w", err)
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("exporting snippets: %w", err)
	}
	s.logger.Info("snippets exported", slog.Int("count", len(all)))
	return data, nil
}

// Import replaces the whole collection with the records in data. Any
// problem rejects the payload as a whole and the stored collection is left
// untouched.
func (s *SnippetService) Import(ctx context.Context, data []byte) (int, error) {
	records, err := decodeImport(data)
	if err != nil {
		s.logger.Warn("import rejected", slog.String("error", err.Error()))
		return 0, err
	}

	if err := s.repo.Save(ctx, records); err != nil {
		return 0, fmt.Errorf("importing snippets: %w", err)
	}

	s.logger.Info("snippets imported", slog.Int("count", len(records)))
	return len(records), nil
}

// decodeImport parses and validates an import payload. The top level must be
// an array. Each record needs a unique non-empty id, a title, code and a
// createdAt; optional fields get their zero values. Tags, the record's and
// its versions', are trimmed and deduplicated.
func decodeImport(data []byte) ([]model.Snippet, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, apperror.MalformedImport("Invalid format: expected a JSON array of snippets")
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, apperror.MalformedImport("Invalid format: " + err.Error())
	}

	records := make([]model.Snippet, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, r := range raw {
		var sn model.Snippet
		if err := json.Unmarshal(r, &sn); err != nil {
			return nil, apperror.MalformedImport(fmt.Sprintf("record %d: %v", i, err))
		}
		if err := checkRecord(&sn); err != nil {
			return nil, apperror.MalformedImport(fmt.Sprintf("record %d: %s", i, err))
		}
		if _, dup := seen[sn.ID]; dup {
			return nil, apperror.MalformedImport(fmt.Sprintf("record %d: duplicate id %q", i, sn.ID))
		}
		seen[sn.ID] = struct{}{}

		sn.Tags = NormalizeTags(sn.Tags)
		if sn.Versions == nil {
			sn.Versions = []model.Version{}
		}
		for j := range sn.Versions {
			sn.Versions[j].Tags = NormalizeTags(sn.Versions[j].Tags)
		}
		if sn.Language == "" {
			sn.Language = DefaultLanguage
		}
		if sn.UpdatedAt.IsZero() {
			sn.UpdatedAt = sn.CreatedAt
		}
		records = append(records, sn)
	}
	return records, nil
}

func checkRecord(sn *model.Snippet) error {
	switch {
	case strings.TrimSpace(sn.ID) == "":
		return fmt.Errorf("missing id")
	case strings.TrimSpace(sn.Title) == "":
		return fmt.Errorf("missing title")
	case strings.TrimSpace(sn.Code) == "":
		return fmt.Errorf("missing code")
	case sn.CreatedAt.IsZero():
		return fmt.Errorf("missing createdAt")
	}
	return nil
}
