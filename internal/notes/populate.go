package notes

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/notekeeper/internal/category"
	"github.com/at-ishikawa/notekeeper/internal/folder"
	"github.com/at-ishikawa/notekeeper/internal/record"
)

// populate fills the category and folder names of records in place.
// References to deleted categories or folders are dropped.
func populate(ctx context.Context, categories category.Repository, folders folder.Repository, records []record.Record) error {
	if len(records) == 0 {
		return nil
	}

	var categoryIDs, folderIDs []string
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.CategoryID != "" {
			if _, ok := seen["c:"+r.CategoryID]; !ok {
				seen["c:"+r.CategoryID] = struct{}{}
				categoryIDs = append(categoryIDs, r.CategoryID)
			}
		}
		for _, id := range r.FolderIDs {
			if _, ok := seen["f:"+id]; !ok {
				seen["f:"+id] = struct{}{}
				folderIDs = append(folderIDs, id)
			}
		}
	}

	categoryNames := make(map[string]string)
	if len(categoryIDs) > 0 {
		found, err := categories.FindByIDs(ctx, categoryIDs)
		if err != nil {
			return fmt.Errorf("categories.FindByIDs() > %w", err)
		}
		for _, c := range found {
			categoryNames[c.ID] = c.Name
		}
	}
	folderNames := make(map[string]string)
	if len(folderIDs) > 0 {
		found, err := folders.FindByIDs(ctx, folderIDs)
		if err != nil {
			return fmt.Errorf("folders.FindByIDs() > %w", err)
		}
		for _, f := range found {
			folderNames[f.ID] = f.Name
		}
	}

	for i := range records {
		r := &records[i]
		r.Category = nil
		if name, ok := categoryNames[r.CategoryID]; ok {
			r.Category = &record.CategoryRef{ID: r.CategoryID, Name: name}
		}
		r.Folders = make([]record.FolderRef, 0, len(r.FolderIDs))
		for _, id := range r.FolderIDs {
			if name, ok := folderNames[id]; ok {
				r.Folders = append(r.Folders, record.FolderRef{ID: id, Name: name})
			}
		}
	}
	return nil
}
