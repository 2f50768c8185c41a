package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/maltedev/gatherer-scraper/internal/database"
	"github.com/maltedev/gatherer-scraper/internal/jobs"
	"github.com/maltedev/gatherer-scraper/internal/models"
	"github.com/maltedev/gatherer-scraper/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCrawler struct {
	mock.Mock
}

func (m *MockCrawler) FetchCardList(ctx context.Context, setName string) ([]*models.CardListRow, error) {
	args := m.Called(setName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CardListRow), args.Error(1)
}

func (m *MockCrawler) FetchCard(ctx context.Context, multiverseID int) ([]*models.CardFace, error) {
	args := m.Called(multiverseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CardFace), args.Error(1)
}

type MockJobs struct {
	mock.Mock
}

func (m *MockJobs) CreateJob(ctx context.Context, kind jobs.Kind, target string) (*jobs.Job, error) {
	args := m.Called(kind, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobs.Job), args.Error(1)
}

func (m *MockJobs) GetJob(ctx context.Context, jobID string) (*jobs.Job, error) {
	args := m.Called(jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobs.Job), args.Error(1)
}

func (m *MockJobs) ListJobs(ctx context.Context) ([]*jobs.Job, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*jobs.Job), args.Error(1)
}

func (m *MockJobs) GetStats(ctx context.Context) (*jobs.Stats, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobs.Stats), args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetCardSet(ctx context.Context, setName string) (*database.CardSet, error) {
	args := m.Called(setName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.CardSet), args.Error(1)
}

func (m *MockCatalog) GetCard(ctx context.Context, multiverseID int) (*database.Card, error) {
	args := m.Called(multiverseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Card), args.Error(1)
}

type testServer struct {
	crawler *MockCrawler
	jobs    *MockJobs
	catalog *MockCatalog
	router  chi.Router
}

func newTestServer() *testServer {
	s := &testServer{
		crawler: new(MockCrawler),
		jobs:    new(MockJobs),
		catalog: new(MockCatalog),
		router:  chi.NewRouter(),
	}
	NewHandlers(s.crawler, s.jobs, s.catalog, slog.Default()).Routes(s.router)
	return s
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandlers_GetSetCards(t *testing.T) {
	t.Run("returns crawled rows", func(t *testing.T) {
		s := newTestServer()
		rows := []*models.CardListRow{{MultiverseID: 1, Name: "Abhorrent Overlord", Printings: []models.RowPrinting{}}}
		s.crawler.On("FetchCardList", "Magic 2014 Core Set").Return(rows, nil)

		rec := s.do(http.MethodGet, "/api/v1/sets/Magic%202014%20Core%20Set/cards", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Magic 2014 Core Set", body["set"])
		assert.Equal(t, float64(1), body["count"])
	})

	t.Run("crawl failure is a bad gateway", func(t *testing.T) {
		s := newTestServer()
		s.crawler.On("FetchCardList", "Theros").Return(nil, fmt.Errorf("row 3: %w", parser.ErrMissingReference))

		rec := s.do(http.MethodGet, "/api/v1/sets/Theros/cards", "")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, decode(t, rec)["error"], "unexpected page layout")
	})
}

func TestHandlers_GetCard(t *testing.T) {
	t.Run("returns faces", func(t *testing.T) {
		s := newTestServer()
		faces := []*models.CardFace{{MultiverseID: 27165, Name: "Fire", Rulings: []models.Ruling{}}}
		s.crawler.On("FetchCard", 27165).Return(faces, nil)

		rec := s.do(http.MethodGet, "/api/v1/cards/27165", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(27165), decode(t, rec)["multiverse_id"])
	})

	t.Run("rejects non numeric id", func(t *testing.T) {
		s := newTestServer()

		rec := s.do(http.MethodGet, "/api/v1/cards/fire", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		s.crawler.AssertNotCalled(t, "FetchCard", mock.Anything)
	})

	t.Run("timeout maps to gateway timeout", func(t *testing.T) {
		s := newTestServer()
		s.crawler.On("FetchCard", 5).Return(nil, context.DeadlineExceeded)

		rec := s.do(http.MethodGet, "/api/v1/cards/5", "")

		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})
}

func TestHandlers_Catalog(t *testing.T) {
	s := newTestServer()
	s.catalog.On("GetCardSet", "Theros").Return(&database.CardSet{Name: "Theros", CardCount: 249}, nil)
	s.catalog.On("GetCard", 42).Return(nil, fmt.Errorf("card 42: %w", database.ErrNotFound))

	rec := s.do(http.MethodGet, "/api/v1/catalog/sets/Theros", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(249), decode(t, rec)["card_count"])

	rec = s.do(http.MethodGet, "/api/v1/catalog/cards/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlers_Jobs(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		s := newTestServer()
		s.jobs.On("CreateJob", jobs.KindSet, "Theros").Return(&jobs.Job{ID: "abc", Status: jobs.StatusPending}, nil)

		rec := s.do(http.MethodPost, "/api/v1/jobs", `{"kind":"set","target":"Theros"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "abc", body["job_id"])
		assert.Equal(t, "pending", body["status"])
	})

	t.Run("create with invalid request", func(t *testing.T) {
		s := newTestServer()
		s.jobs.On("CreateJob", jobs.Kind("booster"), "x").Return(nil, fmt.Errorf("%w: unknown kind", jobs.ErrInvalidJob))

		rec := s.do(http.MethodPost, "/api/v1/jobs", `{"kind":"booster","target":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do(http.MethodPost, "/api/v1/jobs", `{not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create with store failure", func(t *testing.T) {
		s := newTestServer()
		s.jobs.On("CreateJob", jobs.KindCard, "1").Return(nil, errors.New("db down"))

		rec := s.do(http.MethodPost, "/api/v1/jobs", `{"kind":"card","target":"1"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("get", func(t *testing.T) {
		s := newTestServer()
		s.jobs.On("GetJob", "abc").Return(&jobs.Job{ID: "abc", Kind: jobs.KindCard, Status: jobs.StatusCompleted, ResultCount: 2}, nil)
		s.jobs.On("GetJob", "missing").Return(nil, jobs.ErrJobNotFound)

		rec := s.do(http.MethodGet, "/api/v1/jobs/abc", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(2), decode(t, rec)["result_count"])

		rec = s.do(http.MethodGet, "/api/v1/jobs/missing", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list and stats", func(t *testing.T) {
		s := newTestServer()
		s.jobs.On("ListJobs").Return([]*jobs.Job{{ID: "a"}, {ID: "b"}}, nil)
		s.jobs.On("GetStats").Return(&jobs.Stats{TotalJobs: 2, StoredCards: 7}, nil)

		rec := s.do(http.MethodGet, "/api/v1/jobs", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		var list []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.Len(t, list, 2)

		rec = s.do(http.MethodGet, "/api/v1/stats", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(7), decode(t, rec)["stored_cards"])
	})
}
