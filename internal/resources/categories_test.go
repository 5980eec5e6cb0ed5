package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/disparabot/admin/internal/caching"
	"github.com/disparabot/admin/internal/upstream"
)

type CategoriesTestSuite struct {
	suite.Suite
	cache caching.CacheService
}

func TestCategoriesTestSuite(t *testing.T) {
	suite.Run(t, new(CategoriesTestSuite))
}

func (s *CategoriesTestSuite) SetupTest() {
	mr := miniredis.RunT(s.T())
	s.cache = caching.NewCacheServiceWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func (s *CategoriesTestSuite) newService(handler http.HandlerFunc) (*Categories, *httptest.Server) {
	server := httptest.NewServer(handler)
	s.T().Cleanup(server.Close)
	api := upstream.NewClient(server.URL, 5*time.Second)
	return NewCategories(api, s.cache, time.Minute), server
}

func (s *CategoriesTestSuite) TestListAppliesDisplayDefaults() {
	svc, _ := s.newService(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"id":1,"name":"Ofertas","status":"ativo","products_count":"12"},
			{"id":2,"name":"Extra","description":"Tudo","color":"#111111","icon":"🎁","status":"inativo"}
		]}`))
	})

	categories, err := svc.List(context.Background(), "tok")
	require.NoError(s.T(), err)
	require.Len(s.T(), categories, 2)

	assert.Equal(s.T(), "Sem descrição", categories[0].Description)
	assert.Equal(s.T(), "#3b82f6", categories[0].Color)
	assert.Equal(s.T(), "📦", categories[0].Icon)
	assert.True(s.T(), categories[0].Active)
	assert.Equal(s.T(), 12, categories[0].ProductsCount)

	assert.Equal(s.T(), "Tudo", categories[1].Description)
	assert.Equal(s.T(), "#111111", categories[1].Color)
	assert.False(s.T(), categories[1].Active)
}

func (s *CategoriesTestSuite) TestListIsReadThroughCached() {
	var calls int32
	svc, _ := s.newService(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"data":[{"id":1,"name":"Ofertas","status":"ativo"}]}`))
	})

	_, err := svc.List(context.Background(), "tok")
	require.NoError(s.T(), err)
	_, err = svc.List(context.Background(), "tok")
	require.NoError(s.T(), err)

	assert.Equal(s.T(), int32(1), atomic.LoadInt32(&calls))
}

func (s *CategoriesTestSuite) TestCreateSendsPayloadAndInvalidates() {
	var gotMethod, gotPath string
	var gotBody map[string]interface{}
	svc, _ := s.newService(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`{"data":[{"id":1,"name":"Ofertas","status":"ativo"}]}`))
			return
		}
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"data":{"id":9}}`))
	})

	// prime the cache, then mutate
	_, err := svc.List(context.Background(), "tok")
	require.NoError(s.T(), err)

	err = svc.Create(context.Background(), "tok", CategoryInput{
		Name:   "Novidades",
		Slug:   "novidades",
		Icon:   "🎁",
		Active: true,
	})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), http.MethodPost, gotMethod)
	assert.Equal(s.T(), "/category", gotPath)
	assert.Equal(s.T(), "Novidades", gotBody["name"])
	assert.Equal(s.T(), "ativo", gotBody["status"])
	assert.Equal(s.T(), "🎁", gotBody["icon"])
	_, hasDescription := gotBody["description"]
	assert.False(s.T(), hasDescription, "empty optional fields are omitted")

	// the next List must hit the upstream again
	var cached []interface{}
	hit, err := s.cache.GetList(context.Background(), "categorias", &cached)
	require.NoError(s.T(), err)
	assert.False(s.T(), hit)
}

func (s *CategoriesTestSuite) TestUpdateTargetsEntityPath() {
	var gotMethod, gotPath string
	svc, _ := s.newService(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	})

	require.NoError(s.T(), svc.Update(context.Background(), "tok", 7, CategoryInput{Name: "X"}))
	assert.Equal(s.T(), http.MethodPut, gotMethod)
	assert.Equal(s.T(), "/category/7", gotPath)

	require.NoError(s.T(), svc.Delete(context.Background(), "tok", 7))
	assert.Equal(s.T(), http.MethodDelete, gotMethod)
	assert.Equal(s.T(), "/category/7", gotPath)
}

func (s *CategoriesTestSuite) TestMutationErrorSkipsInvalidation() {
	svc, _ := s.newService(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`{"data":[{"id":1,"name":"Ofertas","status":"ativo"}]}`))
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"Nome obrigatório"}`))
	})

	_, err := svc.List(context.Background(), "tok")
	require.NoError(s.T(), err)

	err = svc.Create(context.Background(), "tok", CategoryInput{})
	require.Error(s.T(), err)
	assert.Equal(s.T(), "Nome obrigatório", upstream.ErrorMessage(err))

	var cached []interface{}
	hit, cacheErr := s.cache.GetList(context.Background(), "categorias", &cached)
	require.NoError(s.T(), cacheErr)
	assert.True(s.T(), hit, "failed mutations leave the cache alone")
}
