package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/disparabot/admin/internal/models"
)

type MockProductCreator struct {
	mock.Mock
}

func (m *MockProductCreator) Create(ctx context.Context, token string, in models.ProductInput) error {
	args := m.Called(ctx, token, in)
	return args.Error(0)
}

type RunnerTestSuite struct {
	suite.Suite
	products *MockProductCreator
}

func TestRunnerTestSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}

func (s *RunnerTestSuite) SetupTest() {
	s.products = new(MockProductCreator)
}

func (s *RunnerTestSuite) TestExecuteRefusesInactiveSource() {
	runner := NewRunner(s.products, "test-agent", 10, nil)
	err := runner.Execute(context.Background(), "tok", models.Scrapping{ID: 1, Type: models.TypeScraping, Active: false})
	assert.ErrorIs(s.T(), err, ErrSourceInactive)
}

func (s *RunnerTestSuite) TestExecuteRefusesAPISources() {
	runner := NewRunner(s.products, "test-agent", 10, nil)
	err := runner.Execute(context.Background(), "tok", models.Scrapping{ID: 1, Type: models.TypeAPI, Active: true})
	assert.ErrorIs(s.T(), err, ErrNotScrapable)
}

func (s *RunnerTestSuite) TestExecuteRefusesDoubleRun() {
	done := make(chan Result, 2)
	runner := NewRunner(s.products, "test-agent", 10, func(r Result) { done <- r })

	// an unreachable URL keeps the first run alive long enough only in the
	// worst case; the second Execute races it, so accept either outcome
	source := models.Scrapping{ID: 1, Name: "x", Type: models.TypeScraping, Active: true, URL: "http://127.0.0.1:1/nope"}
	require.NoError(s.T(), runner.Execute(context.Background(), "tok", source))

	err := runner.Execute(context.Background(), "tok", source)
	if err != nil {
		assert.ErrorIs(s.T(), err, ErrAlreadyRunning)
	}

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		s.T().Fatal("run never finished")
	}
}

func (s *RunnerTestSuite) TestStatusMergesLocalRegistryOverFallback() {
	runner := NewRunner(s.products, "test-agent", 10, nil)
	assert.Equal(s.T(), models.ExecutionError, runner.Status(1, models.ExecutionError))

	done := make(chan Result, 1)
	runner.onDone = func(r Result) { done <- r }
	source := models.Scrapping{ID: 1, Name: "x", Type: models.TypeScraping, Active: true, URL: "http://127.0.0.1:1/nope"}
	require.NoError(s.T(), runner.Execute(context.Background(), "tok", source))

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		s.T().Fatal("run never finished")
	}
	// the failed run leaves a local error state that wins over the listing
	assert.Equal(s.T(), models.ExecutionError, runner.Status(1, models.ExecutionStopped))
}

func (s *RunnerTestSuite) TestRunCollectsProductsFromPage() {
	page := `<html><body>
		<div class="product-card">
			<h3 class="product-title">Fone Bluetooth</h3>
			<span class="price">R$ 1.234,56</span>
			<a href="/p/fone"></a>
			<img src="/img/fone.png">
		</div>
		<div class="product-card">
			<h3>Carregador Turbo</h3>
			<span class="price">R$ 89,90</span>
			<a href="/p/carregador"></a>
		</div>
	</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	var mu sync.Mutex
	var created []models.ProductInput
	s.products.On("Create", mock.Anything, "tok", mock.Anything).Run(func(args mock.Arguments) {
		mu.Lock()
		defer mu.Unlock()
		created = append(created, args.Get(2).(models.ProductInput))
	}).Return(nil)

	done := make(chan Result, 1)
	runner := NewRunner(s.products, "test-agent", 10, func(r Result) { done <- r })

	source := models.Scrapping{ID: 7, Name: "loja", Type: models.TypeScraping, Active: true, URL: server.URL}
	require.NoError(s.T(), runner.Execute(context.Background(), "tok", source))

	var result Result
	select {
	case result = <-done:
	case <-time.After(10 * time.Second):
		s.T().Fatal("run never finished")
	}

	require.NoError(s.T(), result.Err)
	assert.Equal(s.T(), 2, result.Collected)
	assert.Equal(s.T(), 2, runner.Collected(7))
	assert.Equal(s.T(), models.ExecutionStopped, runner.Status(7, models.ExecutionRunning))

	mu.Lock()
	defer mu.Unlock()
	require.Len(s.T(), created, 2)
	assert.Equal(s.T(), "Fone Bluetooth", created[0].Name)
	assert.Equal(s.T(), 1234.56, created[0].Price)
	assert.Equal(s.T(), models.TypeScraping, created[0].Source)
	assert.True(s.T(), created[0].IsActive)
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"R$ 1.234,56", 1234.56},
		{"R$ 89,90", 89.90},
		{"19.99", 19.99},
		{"1.299", 1.299},
		{"sem preço", 0},
		{"", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParsePrice(tc.in), "input %q", tc.in)
	}
}
