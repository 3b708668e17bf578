// Package datasync provides YAML snapshot export and import of every entity.
package datasync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/notekeeper/internal/category"
	"github.com/at-ishikawa/notekeeper/internal/folder"
	"github.com/at-ishikawa/notekeeper/internal/record"
)

// SnapshotVersion is the format version written by Export.
const SnapshotVersion = 1

// Snapshot is the YAML document of all categories, folders and records.
// Links between folders and records are stored on both sides with snapshot ids.
type Snapshot struct {
	Version    int                 `yaml:"version"`
	ExportedAt time.Time           `yaml:"exported_at"`
	Categories []category.Category `yaml:"categories"`
	Folders    []folder.Folder     `yaml:"folders"`
	Records    []record.Record     `yaml:"records"`
}

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	CategoriesNew     int
	CategoriesSkipped int
	FoldersNew        int
	FoldersSkipped    int
	FoldersUpdated    int
	RecordsNew        int
	RecordsSkipped    int
	RecordsUpdated    int
	LinksNew          int
	LinksSkipped      int
	Warnings          int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun         bool
	UpdateExisting bool
}

// Importer reads a YAML snapshot and writes it to the repositories.
// Entities are matched by category name, folder name and record title.
type Importer struct {
	recordRepo   record.Repository
	folderRepo   folder.Repository
	categoryRepo category.Repository
	writer       io.Writer
	now          func() time.Time
}

// NewImporter creates a new Importer that reports progress to writer.
func NewImporter(recordRepo record.Repository, folderRepo folder.Repository, categoryRepo category.Repository, writer io.Writer) *Importer {
	return &Importer{
		recordRepo:   recordRepo,
		folderRepo:   folderRepo,
		categoryRepo: categoryRepo,
		writer:       writer,
		now:          time.Now,
	}
}

type link struct {
	folderID string
	recordID string
}

// importState maps snapshot ids to the ids stored in the database.
type importState struct {
	categoryIDs map[string]string
	folderIDs   map[string]string
	recordIDs   map[string]string
	// linked holds the links that already exist, by stored ids.
	linked map[link]struct{}
}

// Import recreates the snapshot read from r.
func (imp *Importer) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	var snapshot Snapshot
	if err := yaml.NewDecoder(r).Decode(&snapshot); err != nil {
		if errors.Is(err, io.EOF) {
			return &ImportResult{}, nil
		}
		return nil, fmt.Errorf("yaml.Decode() > %w", err)
	}
	if snapshot.Version > SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}

	var result ImportResult
	state := &importState{
		categoryIDs: make(map[string]string),
		folderIDs:   make(map[string]string),
		recordIDs:   make(map[string]string),
		linked:      make(map[link]struct{}),
	}

	for _, c := range snapshot.Categories {
		if err := imp.importCategory(ctx, c, state, opts, &result); err != nil {
			return nil, fmt.Errorf("importCategory(%s) > %w", c.Name, err)
		}
	}
	for _, f := range snapshot.Folders {
		if err := imp.importFolder(ctx, f, state, opts, &result); err != nil {
			return nil, fmt.Errorf("importFolder(%s) > %w", f.Name, err)
		}
	}
	for _, rec := range snapshot.Records {
		if err := imp.importRecord(ctx, rec, state, opts, &result); err != nil {
			return nil, fmt.Errorf("importRecord(%s) > %w", rec.Title, err)
		}
	}
	if err := imp.importLinks(ctx, snapshot, state, opts, &result); err != nil {
		return nil, fmt.Errorf("importLinks() > %w", err)
	}
	return &result, nil
}

func (imp *Importer) importCategory(ctx context.Context, c category.Category, state *importState, opts ImportOptions, result *ImportResult) error {
	existing, err := imp.categoryRepo.FindByName(ctx, c.Name)
	if err == nil {
		state.categoryIDs[c.ID] = existing.ID
		fmt.Fprintf(imp.writer, "  [SKIP]  category %q\n", c.Name)
		result.CategoriesSkipped++
		return nil
	}
	if !errors.Is(err, category.ErrNotFound) {
		return fmt.Errorf("FindByName() > %w", err)
	}

	state.categoryIDs[c.ID] = c.ID
	if !opts.DryRun {
		created := &category.Category{Name: c.Name, CreatedAt: orNow(c.CreatedAt, imp.now)}
		if err := imp.categoryRepo.Create(ctx, created); err != nil {
			return fmt.Errorf("Create() > %w", err)
		}
		state.categoryIDs[c.ID] = created.ID
	}
	fmt.Fprintf(imp.writer, "  [NEW]  category %q\n", c.Name)
	result.CategoriesNew++
	return nil
}

func (imp *Importer) importFolder(ctx context.Context, f folder.Folder, state *importState, opts ImportOptions, result *ImportResult) error {
	existing, err := imp.folderRepo.FindByName(ctx, f.Name)
	if err == nil {
		state.folderIDs[f.ID] = existing.ID
		for _, recordID := range existing.RecordIDs {
			state.linked[link{folderID: existing.ID, recordID: recordID}] = struct{}{}
		}
		if !opts.UpdateExisting || existing.Description == f.Description {
			fmt.Fprintf(imp.writer, "  [SKIP]  folder %q\n", f.Name)
			result.FoldersSkipped++
			return nil
		}
		existing.Description = f.Description
		existing.UpdatedAt = imp.now().UTC()
		if !opts.DryRun {
			if err := imp.folderRepo.Update(ctx, existing); err != nil {
				return fmt.Errorf("Update() > %w", err)
			}
		}
		fmt.Fprintf(imp.writer, "  [UPDATE]  folder %q\n", f.Name)
		result.FoldersUpdated++
		return nil
	}
	if !errors.Is(err, folder.ErrNotFound) {
		return fmt.Errorf("FindByName() > %w", err)
	}

	state.folderIDs[f.ID] = f.ID
	if !opts.DryRun {
		created := &folder.Folder{
			Name:        f.Name,
			Description: f.Description,
			RecordIDs:   []string{},
			CreatedAt:   orNow(f.CreatedAt, imp.now),
			UpdatedAt:   orNow(f.UpdatedAt, imp.now),
		}
		if err := imp.folderRepo.Create(ctx, created); err != nil {
			return fmt.Errorf("Create() > %w", err)
		}
		state.folderIDs[f.ID] = created.ID
	}
	fmt.Fprintf(imp.writer, "  [NEW]  folder %q\n", f.Name)
	result.FoldersNew++
	return nil
}

func (imp *Importer) categoryID(snapshotID string, title string, state *importState, result *ImportResult) string {
	if snapshotID == "" {
		return ""
	}
	id, ok := state.categoryIDs[snapshotID]
	if !ok {
		fmt.Fprintf(imp.writer, "  [WARN]  category %s of %q is not in the snapshot\n", snapshotID, title)
		result.Warnings++
		return ""
	}
	return id
}

func (imp *Importer) importRecord(ctx context.Context, rec record.Record, state *importState, opts ImportOptions, result *ImportResult) error {
	categoryID := imp.categoryID(rec.CategoryID, rec.Title, state, result)

	existing, err := imp.recordRepo.FindByTitle(ctx, rec.Title)
	if err == nil {
		state.recordIDs[rec.ID] = existing.ID
		for _, folderID := range existing.FolderIDs {
			state.linked[link{folderID: folderID, recordID: existing.ID}] = struct{}{}
		}
		if !opts.UpdateExisting {
			fmt.Fprintf(imp.writer, "  [SKIP]  record %q\n", rec.Title)
			result.RecordsSkipped++
			return nil
		}
		existing.Content = rec.Content
		existing.CategoryID = categoryID
		existing.Image = rec.Image
		existing.UpdatedAt = imp.now().UTC()
		if !opts.DryRun {
			if err := imp.recordRepo.Update(ctx, existing); err != nil {
				return fmt.Errorf("Update() > %w", err)
			}
		}
		fmt.Fprintf(imp.writer, "  [UPDATE]  record %q\n", rec.Title)
		result.RecordsUpdated++
		return nil
	}
	if !errors.Is(err, record.ErrNotFound) {
		return fmt.Errorf("FindByTitle() > %w", err)
	}

	state.recordIDs[rec.ID] = rec.ID
	if !opts.DryRun {
		createdAt := orNow(rec.CreatedAt, imp.now)
		dateInfo := rec.DateInfo
		if dateInfo.FullDate == "" {
			dateInfo = record.NewDateInfo(createdAt, time.UTC)
		}
		created := &record.Record{
			Title:      rec.Title,
			Content:    rec.Content,
			CategoryID: categoryID,
			Image:      rec.Image,
			DateInfo:   dateInfo,
			CreatedAt:  createdAt,
			UpdatedAt:  orNow(rec.UpdatedAt, imp.now),
		}
		if err := imp.recordRepo.Create(ctx, created); err != nil {
			return fmt.Errorf("Create() > %w", err)
		}
		state.recordIDs[rec.ID] = created.ID
	}
	fmt.Fprintf(imp.writer, "  [NEW]  record %q\n", rec.Title)
	result.RecordsNew++
	return nil
}

// importLinks restores the folder/record links listed on either side of the snapshot.
func (imp *Importer) importLinks(ctx context.Context, snapshot Snapshot, state *importState, opts ImportOptions, result *ImportResult) error {
	var links []link
	seen := make(map[link]struct{})
	add := func(l link) {
		if _, ok := seen[l]; ok {
			return
		}
		seen[l] = struct{}{}
		links = append(links, l)
	}
	for _, f := range snapshot.Folders {
		for _, recordID := range f.RecordIDs {
			add(link{folderID: f.ID, recordID: recordID})
		}
	}
	for _, rec := range snapshot.Records {
		for _, folderID := range rec.FolderIDs {
			add(link{folderID: folderID, recordID: rec.ID})
		}
	}

	for _, l := range links {
		folderID, folderOK := state.folderIDs[l.folderID]
		recordID, recordOK := state.recordIDs[l.recordID]
		if !folderOK || !recordOK {
			fmt.Fprintf(imp.writer, "  [WARN]  link %s -> %s refers to a missing entity\n", l.folderID, l.recordID)
			result.Warnings++
			continue
		}
		stored := link{folderID: folderID, recordID: recordID}
		if _, ok := state.linked[stored]; ok {
			result.LinksSkipped++
			continue
		}
		if !opts.DryRun {
			if err := imp.folderRepo.AddRecord(ctx, folderID, recordID); err != nil {
				return fmt.Errorf("AddRecord() > %w", err)
			}
			if err := imp.recordRepo.AddFolder(ctx, recordID, folderID); err != nil {
				return fmt.Errorf("AddFolder() > %w", err)
			}
		}
		state.linked[stored] = struct{}{}
		result.LinksNew++
	}
	return nil
}

func orNow(t time.Time, now func() time.Time) time.Time {
	if t.IsZero() {
		return now().UTC()
	}
	return t
}

// Exporter reads every entity from the repositories.
type Exporter struct {
	recordRepo   record.Repository
	folderRepo   folder.Repository
	categoryRepo category.Repository
	now          func() time.Time
}

// NewExporter creates a new Exporter.
func NewExporter(recordRepo record.Repository, folderRepo folder.Repository, categoryRepo category.Repository) *Exporter {
	return &Exporter{
		recordRepo:   recordRepo,
		folderRepo:   folderRepo,
		categoryRepo: categoryRepo,
		now:          time.Now,
	}
}

// Snapshot reads all data from the database.
func (e *Exporter) Snapshot(ctx context.Context) (*Snapshot, error) {
	categories, err := e.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("categoryRepo.FindAll() > %w", err)
	}
	folders, err := e.folderRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("folderRepo.FindAll() > %w", err)
	}
	records, err := e.recordRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("recordRepo.FindAll() > %w", err)
	}

	return &Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: e.now().UTC(),
		Categories: categories,
		Folders:    folders,
		Records:    records,
	}, nil
}

// Export writes the snapshot as YAML to w.
func (e *Exporter) Export(ctx context.Context, w io.Writer) error {
	snapshot, err := e.Snapshot(ctx)
	if err != nil {
		return err
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(snapshot); err != nil {
		return fmt.Errorf("yaml.Encode() > %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("yaml.Close() > %w", err)
	}
	return nil
}
