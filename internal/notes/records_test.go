package notes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/at-ishikawa/notekeeper/internal/cache"
	"github.com/at-ishikawa/notekeeper/internal/category"
	"github.com/at-ishikawa/notekeeper/internal/folder"
	"github.com/at-ishikawa/notekeeper/internal/record"
	"github.com/at-ishikawa/notekeeper/internal/storage"
	"github.com/at-ishikawa/notekeeper/internal/ws"
)

func TestRecordService_Create(t *testing.T) {
	work := &category.Category{ID: "c1", Name: "Work"}

	tests := []struct {
		name      string
		input     RecordInput
		setup     func(m *testMocks)
		want      *record.Record
		wantKind  error
		wantError string
	}{
		{
			name:      "missing content",
			input:     RecordInput{Title: "Plan", Content: "  ", Category: "Work"},
			setup:     func(m *testMocks) {},
			wantKind:  ErrValidation,
			wantError: "Title, content and category are required",
		},
		{
			name:  "duplicate title",
			input: RecordInput{Title: "Plan", Content: "weekly plan", Category: "Work"},
			setup: func(m *testMocks) {
				m.records.EXPECT().FindByTitle(gomock.Any(), "Plan").Return(&record.Record{ID: "r0", Title: "Plan"}, nil)
			},
			wantKind:  ErrConflict,
			wantError: "A record with this title already exists",
		},
		{
			name:  "category by name",
			input: RecordInput{Title: " Plan ", Content: "weekly plan", Category: "Work"},
			setup: func(m *testMocks) {
				m.records.EXPECT().FindByTitle(gomock.Any(), "Plan").Return(nil, record.ErrNotFound)
				m.categories.EXPECT().FindByID(gomock.Any(), "Work").Return(nil, category.ErrNotFound)
				m.categories.EXPECT().FindByName(gomock.Any(), "Work").Return(work, nil)
				m.records.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *record.Record) error {
					r.ID = "r1"
					return nil
				})
				m.cache.EXPECT().Invalidate(gomock.Any())
				m.events.EXPECT().Publish(gomock.Any()).Do(func(e ws.Event) {
					assert.Equal(t, ws.RecordCreated, e.Type)
					assert.Equal(t, "r1", e.RecordID)
				})
			},
			want: &record.Record{
				ID:         "r1",
				Title:      "Plan",
				Content:    "weekly plan",
				CategoryID: "c1",
				Category:   &record.CategoryRef{ID: "c1", Name: "Work"},
				DateInfo: record.DateInfo{
					Year: 2026, Month: 3, MonthName: "March", Week: 12, Day: 17,
					DayOfWeek: 2, DayName: "Tuesday", FullDate: "2026-03-17",
				},
				Folders:   []record.FolderRef{},
				CreatedAt: testNow,
				UpdatedAt: testNow,
			},
		},
		{
			name:  "new category is created",
			input: RecordInput{Title: "Run", Content: "5km", Category: "Health", Image: stringPtr("https://img/run.png")},
			setup: func(m *testMocks) {
				m.records.EXPECT().FindByTitle(gomock.Any(), "Run").Return(nil, record.ErrNotFound)
				m.categories.EXPECT().FindByID(gomock.Any(), "Health").Return(nil, category.ErrNotFound)
				m.categories.EXPECT().FindByName(gomock.Any(), "Health").Return(nil, category.ErrNotFound)
				m.categories.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *category.Category) error {
					c.ID = "c2"
					return nil
				})
				m.events.EXPECT().Publish(gomock.Any()).Do(func(e ws.Event) {
					assert.Equal(t, ws.CategoryCreated, e.Type)
				})
				m.records.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *record.Record) error {
					r.ID = "r2"
					return nil
				})
				m.cache.EXPECT().Invalidate(gomock.Any())
				m.events.EXPECT().Publish(gomock.Any())
			},
			want: &record.Record{
				ID:         "r2",
				Title:      "Run",
				Content:    "5km",
				CategoryID: "c2",
				Category:   &record.CategoryRef{ID: "c2", Name: "Health"},
				Image:      stringPtr("https://img/run.png"),
				DateInfo: record.DateInfo{
					Year: 2026, Month: 3, MonthName: "March", Week: 12, Day: 17,
					DayOfWeek: 2, DayName: "Tuesday", FullDate: "2026-03-17",
				},
				Folders:   []record.FolderRef{},
				CreatedAt: testNow,
				UpdatedAt: testNow,
			},
		},
		{
			name:  "category created concurrently",
			input: RecordInput{Title: "Run", Content: "5km", Category: "Health"},
			setup: func(m *testMocks) {
				m.records.EXPECT().FindByTitle(gomock.Any(), "Run").Return(nil, record.ErrNotFound)
				m.categories.EXPECT().FindByID(gomock.Any(), "Health").Return(nil, category.ErrNotFound)
				gomock.InOrder(
					m.categories.EXPECT().FindByName(gomock.Any(), "Health").Return(nil, category.ErrNotFound),
					m.categories.EXPECT().Create(gomock.Any(), gomock.Any()).Return(category.ErrDuplicate),
					m.categories.EXPECT().FindByName(gomock.Any(), "Health").Return(&category.Category{ID: "c2", Name: "Health"}, nil),
				)
				m.records.EXPECT().Create(gomock.Any(), gomock.Any()).Return(record.ErrDuplicate)
			},
			wantKind:  ErrConflict,
			wantError: "A record with this title already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, deps := newTestMocks(t)
			tt.setup(m)

			got, err := NewRecordService(deps).Create(context.Background(), tt.input)
			if tt.wantKind != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantKind)
				assert.Equal(t, tt.wantError, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordService_Create_Timezone(t *testing.T) {
	m, deps := newTestMocks(t)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	deps.Location = tokyo
	// 2026-03-21 23:00 UTC is Sunday 2026-03-22 in Tokyo
	deps.Now = func() time.Time { return time.Date(2026, time.March, 21, 23, 0, 0, 0, time.UTC) }

	m.records.EXPECT().FindByTitle(gomock.Any(), "Late").Return(nil, record.ErrNotFound)
	m.categories.EXPECT().FindByID(gomock.Any(), "c1").Return(&category.Category{ID: "c1", Name: "Work"}, nil)
	m.records.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	m.cache.EXPECT().Invalidate(gomock.Any())
	m.events.EXPECT().Publish(gomock.Any())

	got, err := NewRecordService(deps).Create(context.Background(), RecordInput{Title: "Late", Content: "night", Category: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-22", got.DateInfo.FullDate)
	assert.Equal(t, "Sunday", got.DateInfo.DayName)
	assert.Equal(t, 13, got.DateInfo.Week)
}

func TestRecordService_Get(t *testing.T) {
	t.Run("populates references", func(t *testing.T) {
		m, deps := newTestMocks(t)
		m.records.EXPECT().FindByID(gomock.Any(), "r1").Return(&record.Record{
			ID: "r1", CategoryID: "c1", FolderIDs: []string{"f2", "f1", "gone"},
		}, nil)
		m.categories.EXPECT().FindByIDs(gomock.Any(), []string{"c1"}).Return([]category.Category{{ID: "c1", Name: "Work"}}, nil)
		m.folders.EXPECT().FindByIDs(gomock.Any(), []string{"f2", "f1", "gone"}).Return([]folder.Folder{
			{ID: "f1", Name: "Inbox"},
			{ID: "f2", Name: "Archive"},
		}, nil)

		got, err := NewRecordService(deps).Get(context.Background(), "r1")
		require.NoError(t, err)
		assert.Equal(t, &record.CategoryRef{ID: "c1", Name: "Work"}, got.Category)
		assert.Equal(t, []record.FolderRef{{ID: "f2", Name: "Archive"}, {ID: "f1", Name: "Inbox"}}, got.Folders)
	})

	t.Run("not found", func(t *testing.T) {
		m, deps := newTestMocks(t)
		m.records.EXPECT().FindByID(gomock.Any(), "missing").Return(nil, record.ErrNotFound)

		_, err := NewRecordService(deps).Get(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "Record not found", err.Error())
	})

	t.Run("repository error", func(t *testing.T) {
		m, deps := newTestMocks(t)
		m.records.EXPECT().FindByID(gomock.Any(), "r1").Return(nil, errors.New("connection reset"))

		_, err := NewRecordService(deps).Get(context.Background(), "r1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "records.FindByID() > connection reset")
	})
}

func TestRecordService_List(t *testing.T) {
	t.Run("normalizes the query and paginates", func(t *testing.T) {
		m, deps := newTestMocks(t)
		m.records.EXPECT().List(gomock.Any(), record.ListQuery{
			Search: "plan", SortBy: record.SortByCreatedAt, Page: 2, Limit: 100,
		}).Return([]record.Record{{ID: "r1"}}, int64(250), nil)

		got, pagination, err := NewRecordService(deps).List(context.Background(), record.ListQuery{
			Search: " plan ", SortBy: "password", Page: 2, Limit: 500,
		})
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, 3, pagination.TotalPages)
		assert.True(t, pagination.HasNextPage)
		assert.True(t, pagination.HasPrevPage)
		require.NotNil(t, pagination.NextPage)
		assert.Equal(t, 3, *pagination.NextPage)
	})

	t.Run("category filter by name", func(t *testing.T) {
		m, deps := newTestMocks(t)
		m.categories.EXPECT().FindByID(gomock.Any(), "Work").Return(nil, category.ErrNotFound)
		m.categories.EXPECT().FindByName(gomock.Any(), "Work").Return(&category.Category{ID: "c1", Name: "Work"}, nil)
		m.records.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q record.ListQuery) ([]record.Record, int64, error) {
			assert.Equal(t, "c1", q.CategoryID)
			return nil, 0, nil
		})

		got, pagination, err := NewRecordService(deps).List(context.Background(), record.ListQuery{CategoryID: "Work"})
		require.NoError(t, err)
		assert.Equal(t, []record.Record{}, got)
		assert.Equal(t, 0, pagination.TotalPages)
		assert.False(t, pagination.HasNextPage)
	})

	t.Run("unknown category returns an empty page", func(t *testing.T) {
		m, deps := newTestMocks(t)
		m.categories.EXPECT().FindByID(gomock.Any(), "Nope").Return(nil, category.ErrNotFound)
		m.categories.EXPECT().FindByName(gomock.Any(), "Nope").Return(nil, category.ErrNotFound)

		got, pagination, err := NewRecordService(deps).List(context.Background(), record.ListQuery{CategoryID: "Nope", Page: 3})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, 3, pagination.CurrentPage)
		assert.Equal(t, int64(0), pagination.TotalRecords)
	})
}

func TestRecordService_Update(t *testing.T) {
	created := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	existing := func() *record.Record {
		return &record.Record{
			ID:         "r1",
			Title:      "Plan",
			Content:    "old",
			CategoryID: "c1",
			Image:      stringPtr("https://img/old.png"),
			DateInfo:   record.NewDateInfo(created, time.UTC),
			CreatedAt:  created,
			UpdatedAt:  created,
		}
	}

	t.Run("keeps date fields and image", func(t *testing.T) {
		m, deps := newTestMocks(t)
		m.records.EXPECT().FindByID(gomock.Any(), "r1").Return(existing(), nil)
		m.records.EXPECT().FindByTitle(gomock.Any(), "Plan v2").Return(nil, record.ErrNotFound)
		m.categories.EXPECT().FindByID(gomock.Any(), "c1").Return(&category.Category{ID: "c1", Name: "Work"}, nil)
		m.records.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		m.categories.EXPECT().FindByIDs(gomock.Any(), []string{"c1"}).Return([]category.Category{{ID: "c1", Name: "Work"}}, nil)
		m.cache.EXPECT().Invalidate(gomock.Any())
		m.events.EXPECT().Publish(gomock.Any()).Do(func(e ws.Event) {
			assert.Equal(t, ws.RecordUpdated, e.Type)
		})

		got, err := NewRecordService(deps).Update(context.Background(), "r1", RecordInput{Title: "Plan v2", Content: "new", Category: "c1"})
		require.NoError(t, err)
		assert.Equal(t, "Plan v2", got.Title)
		assert.Equal(t, "new", got.Content)
		assert.Equal(t, "https://img/old.png", *got.Image)
		assert.Equal(t, "2026-03-02", got.DateInfo.FullDate)
		assert.Equal(t, created, got.CreatedAt)
		assert.Equal(t, testNow, got.UpdatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		m, deps := newTestMocks(t)
		m.records.EXPECT().FindByID(gomock.Any(), "r9").Return(nil, record.ErrNotFound)

		_, err := NewRecordService(deps).Update(context.Background(), "r9", RecordInput{Title: "a", Content: "b", Category: "c"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("title taken by another record", func(t *testing.T) {
		m, deps := newTestMocks(t)
		m.records.EXPECT().FindByID(gomock.Any(), "r1").Return(existing(), nil)
		m.records.EXPECT().FindByTitle(gomock.Any(), "Run").Return(&record.Record{ID: "r2", Title: "Run"}, nil)

		_, err := NewRecordService(deps).Update(context.Background(), "r1", RecordInput{Title: "Run", Content: "b", Category: "c1"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("validation", func(t *testing.T) {
		_, deps := newTestMocks(t)
		_, err := NewRecordService(deps).Update(context.Background(), "r1", RecordInput{Title: "", Content: "b", Category: "c1"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestRecordService_Delete(t *testing.T) {
	t.Run("unlinks folders", func(t *testing.T) {
		m, deps := newTestMocks(t)
		m.records.EXPECT().Delete(gomock.Any(), "r1").Return(&record.Record{ID: "r1"}, nil)
		m.folders.EXPECT().RemoveRecordFromAll(gomock.Any(), "r1").Return(nil)
		m.cache.EXPECT().Invalidate(gomock.Any())
		m.events.EXPECT().Publish(ws.Event{Type: ws.RecordDeleted, RecordID: "r1", Payload: &record.Record{ID: "r1"}})

		got, err := NewRecordService(deps).Delete(context.Background(), "r1")
		require.NoError(t, err)
		assert.Equal(t, "r1", got.ID)
	})

	t.Run("folder cleanup failure is not fatal", func(t *testing.T) {
		m, deps := newTestMocks(t)
		m.records.EXPECT().Delete(gomock.Any(), "r1").Return(&record.Record{ID: "r1"}, nil)
		m.folders.EXPECT().RemoveRecordFromAll(gomock.Any(), "r1").Return(errors.New("timeout"))
		m.cache.EXPECT().Invalidate(gomock.Any())
		m.events.EXPECT().Publish(gomock.Any())

		_, err := NewRecordService(deps).Delete(context.Background(), "r1")
		assert.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		m, deps := newTestMocks(t)
		m.records.EXPECT().Delete(gomock.Any(), "r1").Return(nil, record.ErrNotFound)

		_, err := NewRecordService(deps).Delete(context.Background(), "r1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRecordService_ByPeriod(t *testing.T) {
	weekRecords := []record.Record{{ID: "r1", CategoryID: "c1"}}

	tests := []struct {
		name      string
		call      func(s *RecordService) ([]record.Record, error)
		setup     func(m *testMocks)
		want      []record.Record
		wantError string
	}{
		{
			name: "cache miss loads and stores",
			call: func(s *RecordService) ([]record.Record, error) { return s.ByWeek(context.Background(), 2026, 12) },
			setup: func(m *testMocks) {
				m.cache.EXPECT().Get(gomock.Any(), "week:2026-12").Return(nil, cache.Version(3), false)
				m.records.EXPECT().FindByPeriod(gomock.Any(), record.Period{Kind: record.PeriodWeek, Year: 2026, Week: 12}).Return(weekRecords, nil)
				m.categories.EXPECT().FindByIDs(gomock.Any(), []string{"c1"}).Return([]category.Category{{ID: "c1", Name: "Work"}}, nil)
				m.cache.EXPECT().Set(gomock.Any(), "week:2026-12", cache.Version(3), gomock.Len(1))
			},
			want: []record.Record{{ID: "r1", CategoryID: "c1", Category: &record.CategoryRef{ID: "c1", Name: "Work"}, Folders: []record.FolderRef{}}},
		},
		{
			name: "cache hit",
			call: func(s *RecordService) ([]record.Record, error) { return s.ByMonth(context.Background(), 2026, 3) },
			setup: func(m *testMocks) {
				m.cache.EXPECT().Get(gomock.Any(), "month:2026-3").Return(weekRecords, cache.Version(3), true)
			},
			want: weekRecords,
		},
		{
			name: "empty day",
			call: func(s *RecordService) ([]record.Record, error) { return s.ByDay(context.Background(), 2024, 2, 29) },
			setup: func(m *testMocks) {
				m.cache.EXPECT().Get(gomock.Any(), "day:2024-2-29").Return(nil, cache.Version(0), false)
				m.records.EXPECT().FindByPeriod(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.cache.EXPECT().Set(gomock.Any(), "day:2024-2-29", cache.Version(0), []record.Record{})
			},
			want: []record.Record{},
		},
		{
			name:      "invalid month",
			call:      func(s *RecordService) ([]record.Record, error) { return s.ByMonth(context.Background(), 2026, 13) },
			setup:     func(m *testMocks) {},
			wantError: "Month must be between 1 and 12",
		},
		{
			name:      "invalid week",
			call:      func(s *RecordService) ([]record.Record, error) { return s.ByWeek(context.Background(), 2026, 55) },
			setup:     func(m *testMocks) {},
			wantError: "Week must be between 1 and 54",
		},
		{
			name:      "invalid day",
			call:      func(s *RecordService) ([]record.Record, error) { return s.ByDay(context.Background(), 2026, 2, 29) },
			setup:     func(m *testMocks) {},
			wantError: "Invalid date",
		},
		{
			name:      "invalid year",
			call:      func(s *RecordService) ([]record.Record, error) { return s.ByWeek(context.Background(), 0, 1) },
			setup:     func(m *testMocks) {},
			wantError: "Invalid year",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, deps := newTestMocks(t)
			tt.setup(m)

			got, err := tt.call(NewRecordService(deps))
			if tt.wantError != "" {
				assert.ErrorIs(t, err, ErrValidation)
				assert.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordService_PeriodCacheInvalidatedDuringLoad(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	periodCache := cache.NewRedisCache(client, time.Minute, zap.NewNop())

	m, deps := newTestMocks(t)
	deps.Cache = periodCache
	service := NewRecordService(deps)

	period := record.Period{Kind: record.PeriodWeek, Year: 2026, Week: 12}
	stale := []record.Record{{ID: "r1", Title: "before update"}}
	fresh := []record.Record{{ID: "r1", Title: "after update"}}
	gomock.InOrder(
		m.records.EXPECT().FindByPeriod(gomock.Any(), period).DoAndReturn(func(ctx context.Context, _ record.Period) ([]record.Record, error) {
			// a concurrent update commits and invalidates after the read
			periodCache.Invalidate(ctx)
			return stale, nil
		}),
		m.records.EXPECT().FindByPeriod(gomock.Any(), period).Return(fresh, nil),
	)

	got, err := service.ByWeek(context.Background(), 2026, 12)
	require.NoError(t, err)
	assert.Equal(t, "before update", got[0].Title)

	got, err = service.ByWeek(context.Background(), 2026, 12)
	require.NoError(t, err)
	assert.Equal(t, "after update", got[0].Title)

	got, err = service.ByWeek(context.Background(), 2026, 12)
	require.NoError(t, err)
	assert.Equal(t, "after update", got[0].Title)
}

func TestRecordService_Categories(t *testing.T) {
	m, deps := newTestMocks(t)
	m.records.EXPECT().DistinctCategoryIDs(gomock.Any()).Return([]string{"c1", "c2"}, nil)
	m.categories.EXPECT().FindByIDs(gomock.Any(), []string{"c1", "c2"}).Return([]category.Category{
		{ID: "c2", Name: "Health"},
		{ID: "c1", Name: "Work"},
	}, nil)

	got, err := NewRecordService(deps).Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Health", "Work"}, got)
}

func TestRecordService_SetImage(t *testing.T) {
	t.Run("uploads and stores the url", func(t *testing.T) {
		m, deps := newTestMocks(t)
		m.records.EXPECT().FindByID(gomock.Any(), "r1").Return(&record.Record{ID: "r1"}, nil)
		m.images.EXPECT().Upload(gomock.Any(), "r1", "cat.png", "image/png", gomock.Any(), int64(3)).
			Return("https://cdn/records/r1/x.png", nil)
		m.records.EXPECT().SetImage(gomock.Any(), "r1", "https://cdn/records/r1/x.png").Return(nil)
		m.cache.EXPECT().Invalidate(gomock.Any())
		m.events.EXPECT().Publish(gomock.Any())

		got, err := NewRecordService(deps).SetImage(context.Background(), "r1", "cat.png", "image/png", strings.NewReader("png"), 3)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/records/r1/x.png", *got.Image)
	})

	t.Run("unsupported type", func(t *testing.T) {
		m, deps := newTestMocks(t)
		m.records.EXPECT().FindByID(gomock.Any(), "r1").Return(&record.Record{ID: "r1"}, nil)
		m.images.EXPECT().Upload(gomock.Any(), "r1", "a.txt", "text/plain", gomock.Any(), int64(1)).
			Return("", storage.ErrUnsupportedType)

		_, err := NewRecordService(deps).SetImage(context.Background(), "r1", "a.txt", "text/plain", strings.NewReader("a"), 1)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("storage not configured", func(t *testing.T) {
		_, deps := newTestMocks(t)
		deps.Images = nil

		_, err := NewRecordService(deps).SetImage(context.Background(), "r1", "a.png", "image/png", strings.NewReader("a"), 1)
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}
