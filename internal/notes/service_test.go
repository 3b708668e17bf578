package notes

import (
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	mock_cache "github.com/at-ishikawa/notekeeper/internal/mocks/cache"
	mock_category "github.com/at-ishikawa/notekeeper/internal/mocks/category"
	mock_folder "github.com/at-ishikawa/notekeeper/internal/mocks/folder"
	mock_notes "github.com/at-ishikawa/notekeeper/internal/mocks/notes"
	mock_record "github.com/at-ishikawa/notekeeper/internal/mocks/record"
	mock_storage "github.com/at-ishikawa/notekeeper/internal/mocks/storage"
)

var testNow = time.Date(2026, time.March, 17, 9, 30, 0, 0, time.UTC)

type testMocks struct {
	records    *mock_record.MockRepository
	folders    *mock_folder.MockRepository
	categories *mock_category.MockRepository
	cache      *mock_cache.MockPeriodCache
	events     *mock_notes.MockEventPublisher
	images     *mock_storage.MockImageStorage
}

func newTestMocks(t *testing.T) (*testMocks, Dependencies) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &testMocks{
		records:    mock_record.NewMockRepository(ctrl),
		folders:    mock_folder.NewMockRepository(ctrl),
		categories: mock_category.NewMockRepository(ctrl),
		cache:      mock_cache.NewMockPeriodCache(ctrl),
		events:     mock_notes.NewMockEventPublisher(ctrl),
		images:     mock_storage.NewMockImageStorage(ctrl),
	}
	return m, Dependencies{
		Records:      m.records,
		Folders:      m.folders,
		Categories:   m.categories,
		Cache:        m.cache,
		Events:       m.events,
		Images:       m.images,
		DefaultLimit: 10,
		MaxLimit:     100,
		Now:          func() time.Time { return testNow },
	}
}

func stringPtr(s string) *string {
	return &s
}
