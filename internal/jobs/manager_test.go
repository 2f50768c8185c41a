package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/maltedev/gatherer-scraper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCrawler struct {
	mock.Mock
}

func (m *MockCrawler) FetchCardList(ctx context.Context, setName string) ([]*models.CardListRow, error) {
	args := m.Called(ctx, setName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CardListRow), args.Error(1)
}

func (m *MockCrawler) FetchCard(ctx context.Context, multiverseID int) ([]*models.CardFace, error) {
	args := m.Called(ctx, multiverseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CardFace), args.Error(1)
}

type MockResultStore struct {
	mock.Mock
}

func (m *MockResultStore) SaveCardSet(ctx context.Context, jobID, setName string, rows []*models.CardListRow) error {
	return m.Called(ctx, jobID, setName, rows).Error(0)
}

func (m *MockResultStore) SaveCard(ctx context.Context, jobID string, multiverseID int, faces []*models.CardFace) error {
	return m.Called(ctx, jobID, multiverseID, faces).Error(0)
}

type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	mockArgs := m.Called(ctx, sql, args)
	return pgconn.NewCommandTag(mockArgs.String(0)), mockArgs.Error(1)
}

func (m *MockQuerier) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	mockArgs := m.Called(ctx, sql, args)
	return nil, mockArgs.Error(0)
}

func (m *MockQuerier) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	m.Called(ctx, sql, args)
	return nil
}

// liveContext matches a context that can still run a statement.
var liveContext = mock.MatchedBy(func(ctx context.Context) bool {
	return ctx.Err() == nil
})

func newTestManager(c CardCrawler, r ResultStore) *Manager {
	return &Manager{crawler: c, results: r, logger: slog.Default()}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		target  string
		want    string
		wantErr bool
	}{
		{"set", KindSet, "Theros", "Theros", false},
		{"set is trimmed", KindSet, "  Magic 2014 Core Set ", "Magic 2014 Core Set", false},
		{"card", KindCard, "409574", "409574", false},
		{"card with leading zero", KindCard, "00042", "42", false},
		{"empty target", KindSet, " ", "", true},
		{"card not numeric", KindCard, "Fire // Ice", "", true},
		{"card not positive", KindCard, "0", "", true},
		{"unknown kind", Kind("booster"), "Theros", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.kind, tt.target)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidJob)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManager_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("set job stores rows", func(t *testing.T) {
		crawler := new(MockCrawler)
		store := new(MockResultStore)
		m := newTestManager(crawler, store)

		rows := []*models.CardListRow{{MultiverseID: 1}, {MultiverseID: 2}}
		crawler.On("FetchCardList", ctx, "Theros").Return(rows, nil)
		store.On("SaveCardSet", ctx, "job-1", "Theros", rows).Return(nil)

		count, err := m.execute(ctx, &Job{ID: "job-1", Kind: KindSet, Target: "Theros"})
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		crawler.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("card job stores faces", func(t *testing.T) {
		crawler := new(MockCrawler)
		store := new(MockResultStore)
		m := newTestManager(crawler, store)

		faces := []*models.CardFace{{Number: "128a"}, {Number: "128b"}}
		crawler.On("FetchCard", ctx, 27165).Return(faces, nil)
		store.On("SaveCard", ctx, "job-2", 27165, faces).Return(nil)

		count, err := m.execute(ctx, &Job{ID: "job-2", Kind: KindCard, Target: "27165"})
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		store.AssertExpectations(t)
	})

	t.Run("crawl failure stores nothing", func(t *testing.T) {
		crawler := new(MockCrawler)
		store := new(MockResultStore)
		m := newTestManager(crawler, store)

		crawlErr := errors.New("page 3 failed")
		crawler.On("FetchCardList", ctx, "Theros").Return(nil, crawlErr)

		_, err := m.execute(ctx, &Job{ID: "job-3", Kind: KindSet, Target: "Theros"})
		assert.ErrorIs(t, err, crawlErr)
		store.AssertNotCalled(t, "SaveCardSet", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure fails the job", func(t *testing.T) {
		crawler := new(MockCrawler)
		store := new(MockResultStore)
		m := newTestManager(crawler, store)

		faces := []*models.CardFace{{Number: "1"}}
		storeErr := errors.New("db down")
		crawler.On("FetchCard", ctx, 1).Return(faces, nil)
		store.On("SaveCard", ctx, "job-4", 1, faces).Return(storeErr)

		_, err := m.execute(ctx, &Job{ID: "job-4", Kind: KindCard, Target: "1"})
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("unknown kind", func(t *testing.T) {
		m := newTestManager(new(MockCrawler), new(MockResultStore))

		_, err := m.execute(ctx, &Job{ID: "job-5", Kind: "booster", Target: "x"})
		assert.ErrorIs(t, err, ErrInvalidJob)
	})
}

func TestManager_RunJob(t *testing.T) {
	t.Run("cancelled crawl still marks the job failed", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		crawler := new(MockCrawler)
		db := new(MockQuerier)
		m := newTestManager(crawler, new(MockResultStore))
		m.db = db

		crawler.On("FetchCardList", ctx, "Theros").Return(nil, context.Canceled)
		db.On("Exec", liveContext, mock.Anything, []interface{}{StatusFailed, 0, context.Canceled.Error(), "job-1"}).
			Return("UPDATE 1", nil)

		m.runJob(ctx, &Job{ID: "job-1", Kind: KindSet, Target: "Theros"})

		db.AssertExpectations(t)
	})

	t.Run("completed job records its result count", func(t *testing.T) {
		ctx := context.Background()
		crawler := new(MockCrawler)
		store := new(MockResultStore)
		db := new(MockQuerier)
		m := newTestManager(crawler, store)
		m.db = db

		faces := []*models.CardFace{{Number: "1"}}
		crawler.On("FetchCard", ctx, 1).Return(faces, nil)
		store.On("SaveCard", ctx, "job-2", 1, faces).Return(nil)
		db.On("Exec", liveContext, mock.Anything, []interface{}{StatusCompleted, 1, "", "job-2"}).
			Return("UPDATE 1", nil)

		m.runJob(ctx, &Job{ID: "job-2", Kind: KindCard, Target: "1"})

		db.AssertExpectations(t)
	})
}

func TestManager_RequeueInterrupted(t *testing.T) {
	ctx := context.Background()

	t.Run("running jobs go back to pending", func(t *testing.T) {
		db := new(MockQuerier)
		m := newTestManager(new(MockCrawler), new(MockResultStore))
		m.db = db

		db.On("Exec", ctx, mock.Anything, []interface{}{StatusPending, StatusRunning}).Return("UPDATE 2", nil)

		n, err := m.requeueInterrupted(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("database error is returned", func(t *testing.T) {
		db := new(MockQuerier)
		m := newTestManager(new(MockCrawler), new(MockResultStore))
		m.db = db

		db.On("Exec", ctx, mock.Anything, mock.Anything).Return("", errors.New("db down"))

		_, err := m.requeueInterrupted(ctx)
		assert.ErrorContains(t, err, "db down")
	})
}

func TestSuccessRate(t *testing.T) {
	assert.Equal(t, 0.0, successRate(0, 0))
	assert.Equal(t, 50.0, successRate(2, 4))
	assert.Equal(t, 100.0, successRate(3, 3))
}
