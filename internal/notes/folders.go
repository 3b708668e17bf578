package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/at-ishikawa/notekeeper/internal/folder"
	"github.com/at-ishikawa/notekeeper/internal/record"
	"github.com/at-ishikawa/notekeeper/internal/ws"
)

// FolderInput is the user-provided part of a folder.
type FolderInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type FolderService struct {
	deps    Dependencies
	records *RecordService
}

func NewFolderService(deps Dependencies, records *RecordService) *FolderService {
	return &FolderService{deps: deps.withDefaults(), records: records}
}

func (s *FolderService) changed(ctx context.Context, eventType string, f *folder.Folder) {
	s.deps.Cache.Invalidate(ctx)
	s.deps.Events.Publish(ws.Event{Type: eventType, FolderID: f.ID, Payload: f})
}

func (s *FolderService) find(ctx context.Context, id string) (*folder.Folder, error) {
	f, err := s.deps.Folders.FindByID(ctx, id)
	if errors.Is(err, folder.ErrNotFound) {
		return nil, notFoundError("Folder not found")
	}
	if err != nil {
		return nil, fmt.Errorf("folders.FindByID() > %w", err)
	}
	return f, nil
}

func (s *FolderService) Create(ctx context.Context, in FolderInput) (*folder.Folder, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, validationError("Folder name is required")
	}
	now := s.deps.Now().UTC()
	f := &folder.Folder{
		Name:        in.Name,
		Description: in.Description,
		RecordIDs:   []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.deps.Folders.Create(ctx, f); err != nil {
		if errors.Is(err, folder.ErrDuplicate) {
			return nil, conflictError("A folder with this name already exists")
		}
		return nil, fmt.Errorf("folders.Create() > %w", err)
	}
	s.deps.Logger.Info("created folder", zap.String("folderId", f.ID), zap.String("name", f.Name))
	s.changed(ctx, ws.FolderCreated, f)
	return f, nil
}

func (s *FolderService) Update(ctx context.Context, id string, in FolderInput) (*folder.Folder, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, validationError("Folder name is required")
	}
	f, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Name = in.Name
	f.Description = in.Description
	f.UpdatedAt = s.deps.Now().UTC()
	if err := s.deps.Folders.Update(ctx, f); err != nil {
		switch {
		case errors.Is(err, folder.ErrNotFound):
			return nil, notFoundError("Folder not found")
		case errors.Is(err, folder.ErrDuplicate):
			return nil, conflictError("A folder with this name already exists")
		}
		return nil, fmt.Errorf("folders.Update() > %w", err)
	}
	s.changed(ctx, ws.FolderUpdated, f)
	return f, nil
}

// Get returns the folder with its records populated in link order.
func (s *FolderService) Get(ctx context.Context, id string) (*folder.Folder, error) {
	f, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Records = []record.Record{}
	if len(f.RecordIDs) == 0 {
		return f, nil
	}

	found, err := s.deps.Records.FindByIDs(ctx, f.RecordIDs)
	if err != nil {
		return nil, fmt.Errorf("records.FindByIDs() > %w", err)
	}
	byID := make(map[string]record.Record, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	for _, recordID := range f.RecordIDs {
		if r, ok := byID[recordID]; ok {
			f.Records = append(f.Records, r)
		}
	}
	if err := populate(ctx, s.deps.Categories, s.deps.Folders, f.Records); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FolderService) List(ctx context.Context) ([]folder.Folder, error) {
	folders, err := s.deps.Folders.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("folders.FindAll() > %w", err)
	}
	if folders == nil {
		folders = []folder.Folder{}
	}
	return folders, nil
}

// Delete removes the folder and unlinks it from its records.
func (s *FolderService) Delete(ctx context.Context, id string) (*folder.Folder, error) {
	f, err := s.deps.Folders.Delete(ctx, id)
	if errors.Is(err, folder.ErrNotFound) {
		return nil, notFoundError("Folder not found")
	}
	if err != nil {
		return nil, fmt.Errorf("folders.Delete() > %w", err)
	}
	if err := s.deps.Records.RemoveFolderFromAll(ctx, id); err != nil {
		s.deps.Logger.Warn("failed to unlink a deleted folder from records", zap.String("folderId", id), zap.Error(err))
	}
	s.deps.Logger.Info("deleted folder", zap.String("folderId", id))
	s.changed(ctx, ws.FolderDeleted, f)
	return f, nil
}

// findRecord looks a record up by id, then by title.
func (s *FolderService) findRecord(ctx context.Context, ref string) (*record.Record, error) {
	r, err := s.deps.Records.FindByID(ctx, ref)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, record.ErrNotFound) {
		return nil, fmt.Errorf("records.FindByID() > %w", err)
	}
	r, err = s.deps.Records.FindByTitle(ctx, ref)
	if errors.Is(err, record.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("records.FindByTitle() > %w", err)
	}
	return r, nil
}

// AddRecord links an existing record, given by id or title, to the folder.
func (s *FolderService) AddRecord(ctx context.Context, folderID, recordRef string) (*folder.Folder, error) {
	recordRef = strings.TrimSpace(recordRef)
	if recordRef == "" {
		return nil, validationError("Record is required")
	}
	f, err := s.deps.Folders.FindByID(ctx, folderID)
	if errors.Is(err, folder.ErrNotFound) {
		return nil, validationError("Folder is Not Found")
	}
	if err != nil {
		return nil, fmt.Errorf("folders.FindByID() > %w", err)
	}
	r, err := s.findRecord(ctx, recordRef)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, validationError("Record is Not Found")
	}
	if f.HasRecord(r.ID) {
		return nil, validationError("Record Already Exist")
	}

	if err := s.link(ctx, f.ID, r.ID); err != nil {
		return nil, err
	}
	return s.Get(ctx, f.ID)
}

// link updates both sides of the folder/record relation, undoing the first
// update when the second one fails.
func (s *FolderService) link(ctx context.Context, folderID, recordID string) error {
	if err := s.deps.Folders.AddRecord(ctx, folderID, recordID); err != nil {
		if errors.Is(err, folder.ErrNotFound) {
			return validationError("Folder is Not Found")
		}
		return fmt.Errorf("folders.AddRecord() > %w", err)
	}
	if err := s.deps.Records.AddFolder(ctx, recordID, folderID); err != nil {
		if rollbackErr := s.deps.Folders.RemoveRecord(ctx, folderID, recordID); rollbackErr != nil {
			s.deps.Logger.Error("failed to roll back a folder link",
				zap.String("folderId", folderID),
				zap.String("recordId", recordID),
				zap.Error(rollbackErr))
		}
		if errors.Is(err, record.ErrNotFound) {
			return validationError("Record is Not Found")
		}
		return fmt.Errorf("records.AddFolder() > %w", err)
	}

	s.deps.Cache.Invalidate(ctx)
	s.deps.Events.Publish(ws.Event{Type: ws.FolderUpdated, FolderID: folderID, RecordID: recordID})
	return nil
}

// RemoveRecord unlinks a record from the folder.
func (s *FolderService) RemoveRecord(ctx context.Context, folderID, recordID string) (*folder.Folder, error) {
	f, err := s.find(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if !f.HasRecord(recordID) {
		return nil, notFoundError("Record is not in this folder")
	}
	if err := s.deps.Folders.RemoveRecord(ctx, folderID, recordID); err != nil {
		return nil, fmt.Errorf("folders.RemoveRecord() > %w", err)
	}
	if err := s.deps.Records.RemoveFolder(ctx, recordID, folderID); err != nil && !errors.Is(err, record.ErrNotFound) {
		return nil, fmt.Errorf("records.RemoveFolder() > %w", err)
	}

	s.deps.Cache.Invalidate(ctx)
	s.deps.Events.Publish(ws.Event{Type: ws.FolderUpdated, FolderID: folderID, RecordID: recordID})
	return s.Get(ctx, folderID)
}

// CreateRecord creates a record and links it to the folder. The new record is
// deleted again when it cannot be linked.
func (s *FolderService) CreateRecord(ctx context.Context, folderID string, in RecordInput) (*record.Record, error) {
	if _, err := s.deps.Folders.FindByID(ctx, folderID); err != nil {
		if errors.Is(err, folder.ErrNotFound) {
			return nil, validationError("Folder is Not Found")
		}
		return nil, fmt.Errorf("folders.FindByID() > %w", err)
	}

	r, err := s.records.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.link(ctx, folderID, r.ID); err != nil {
		deleted, deleteErr := s.deps.Records.Delete(ctx, r.ID)
		if deleteErr != nil {
			s.deps.Logger.Error("failed to delete an unlinked record",
				zap.String("recordId", r.ID),
				zap.Error(deleteErr))
			s.deps.Cache.Invalidate(ctx)
			return nil, err
		}
		s.records.changed(ctx, ws.RecordDeleted, deleted)
		return nil, err
	}

	return s.records.Get(ctx, r.ID)
}
