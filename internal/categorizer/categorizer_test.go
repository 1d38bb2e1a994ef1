package categorizer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelvasco/dindinho/internal/logging"
	"github.com/rafaelvasco/dindinho/internal/models"
	"github.com/rafaelvasco/dindinho/internal/store"
)

// mockAIClient scripts ClassifyBatch responses and records calls.
type mockAIClient struct {
	mu       sync.Mutex
	calls    [][]string
	failures int
	classify func(descs []string) []string
}

func (m *mockAIClient) ClassifyBatch(_ context.Context, descs []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, append([]string(nil), descs...))
	if m.failures > 0 {
		m.failures--
		return nil, errors.New("service unavailable")
	}
	if m.classify != nil {
		return m.classify(descs), nil
	}
	out := make([]string, len(descs))
	for i := range out {
		out[i] = models.CategoryRestaurants
	}
	return out, nil
}

func (m *mockAIClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func importDecision(desc string) models.ImportDecision {
	return models.ImportDecision{
		Transaction: models.ParsedTransaction{
			Date:                  time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
			Description:           desc,
			NormalizedDescription: desc,
			AmountCents:           -1000,
		},
		ProposedAction: models.ActionImport,
	}
}

func TestCategorizeUsesConfirmedCache(t *testing.T) {
	s := store.NewMemoryStore()
	s.Seed([]models.Expense{
		{ID: "e1", NormalizedDescription: "uber trip", Category: models.CategoryTransport, CategoryConfirmed: true},
		{ID: "e2", NormalizedDescription: "padaria pao", Category: models.CategoryRestaurants, CategoryConfirmed: false},
	}, nil, nil)

	client := &mockAIClient{}
	o := NewOrchestrator(client, s, &logging.MockLogger{})

	decisions := []models.ImportDecision{importDecision("uber trip")}
	require.NoError(t, o.Categorize(context.Background(), decisions))

	assert.Equal(t, models.CategoryTransport, decisions[0].Category)
	assert.Zero(t, client.callCount(), "cached description must not reach the service")
}

func TestCategorizeUnconfirmedCategoryNotCached(t *testing.T) {
	s := store.NewMemoryStore()
	s.Seed([]models.Expense{
		{ID: "e1", NormalizedDescription: "padaria pao", Category: models.CategoryRestaurants, CategoryConfirmed: false},
	}, nil, nil)

	client := &mockAIClient{}
	o := NewOrchestrator(client, s, &logging.MockLogger{})

	decisions := []models.ImportDecision{importDecision("padaria pao")}
	require.NoError(t, o.Categorize(context.Background(), decisions))

	assert.Equal(t, 1, client.callCount(), "unconfirmed categories must not seed the cache")
}

func TestCategorizeSubscriptionMatchGetsFixedLabel(t *testing.T) {
	client := &mockAIClient{}
	o := NewOrchestrator(client, store.NewMemoryStore(), &logging.MockLogger{})

	decisions := []models.ImportDecision{
		{
			Transaction:    models.ParsedTransaction{NormalizedDescription: "netflix com"},
			ProposedAction: models.ActionSubscriptionMatch,
		},
	}
	require.NoError(t, o.Categorize(context.Background(), decisions))

	assert.Equal(t, models.CategorySubscriptions, decisions[0].Category)
	assert.Zero(t, client.callCount())
}

func TestCategorizeSkipsNonImportActions(t *testing.T) {
	client := &mockAIClient{}
	o := NewOrchestrator(client, store.NewMemoryStore(), &logging.MockLogger{})

	decisions := []models.ImportDecision{
		{Transaction: models.ParsedTransaction{NormalizedDescription: "pix enviado"}, ProposedAction: models.ActionIgnoredMatch},
		{Transaction: models.ParsedTransaction{NormalizedDescription: "apple com bill"}, ProposedAction: models.ActionDuplicate},
	}
	require.NoError(t, o.Categorize(context.Background(), decisions))

	assert.Empty(t, decisions[0].Category)
	assert.Empty(t, decisions[1].Category)
	assert.Zero(t, client.callCount())
}

func TestCategorizeCoercesUnknownLabels(t *testing.T) {
	client := &mockAIClient{classify: func(descs []string) []string {
		return []string{"Categoria Inventada"}
	}}
	o := NewOrchestrator(client, store.NewMemoryStore(), &logging.MockLogger{})

	decisions := []models.ImportDecision{importDecision("loja estranha")}
	require.NoError(t, o.Categorize(context.Background(), decisions))

	assert.Equal(t, models.CategoryOther, decisions[0].Category)
}

func TestCategorizeDeduplicatesDescriptions(t *testing.T) {
	client := &mockAIClient{}
	o := NewOrchestrator(client, store.NewMemoryStore(), &logging.MockLogger{})

	decisions := []models.ImportDecision{
		importDecision("ifood restaurante"),
		importDecision("ifood restaurante"),
	}
	require.NoError(t, o.Categorize(context.Background(), decisions))

	require.Equal(t, 1, client.callCount())
	assert.Len(t, client.calls[0], 1)
	assert.Equal(t, models.CategoryRestaurants, decisions[0].Category)
	assert.Equal(t, models.CategoryRestaurants, decisions[1].Category)
}

func TestCategorizeReusesResultsAcrossCalls(t *testing.T) {
	client := &mockAIClient{}
	o := NewOrchestrator(client, store.NewMemoryStore(), &logging.MockLogger{})

	first := []models.ImportDecision{importDecision("uber trip")}
	require.NoError(t, o.Categorize(context.Background(), first))
	assert.Equal(t, models.CategoryRestaurants, first[0].Category)

	second := []models.ImportDecision{importDecision("uber trip")}
	require.NoError(t, o.Categorize(context.Background(), second))

	assert.Equal(t, models.CategoryRestaurants, second[0].Category)
	assert.Equal(t, 1, client.callCount(), "a description answered once must not reach the service again this run")
}

func TestCategorizeFallbackNotReused(t *testing.T) {
	client := &mockAIClient{failures: 3}
	o := NewOrchestrator(client, store.NewMemoryStore(), &logging.MockLogger{},
		WithRetry(3, time.Millisecond))

	first := []models.ImportDecision{importDecision("uber trip")}
	require.NoError(t, o.Categorize(context.Background(), first))
	assert.Equal(t, models.CategoryOther, first[0].Category)
	require.Equal(t, 3, client.callCount())

	// Service recovered; the fallback label must not shadow a real answer.
	second := []models.ImportDecision{importDecision("uber trip")}
	require.NoError(t, o.Categorize(context.Background(), second))

	assert.Equal(t, 4, client.callCount())
	assert.Equal(t, models.CategoryRestaurants, second[0].Category)
}

func TestCategorizeRetriesThenSucceeds(t *testing.T) {
	client := &mockAIClient{failures: 2}
	o := NewOrchestrator(client, store.NewMemoryStore(), &logging.MockLogger{},
		WithRetry(3, time.Millisecond))

	decisions := []models.ImportDecision{importDecision("ifood restaurante")}
	require.NoError(t, o.Categorize(context.Background(), decisions))

	assert.Equal(t, 3, client.callCount())
	assert.Equal(t, models.CategoryRestaurants, decisions[0].Category)
}

func TestCategorizeFallsBackAfterRetryBudget(t *testing.T) {
	client := &mockAIClient{failures: 10}
	logger := &logging.MockLogger{}
	o := NewOrchestrator(client, store.NewMemoryStore(), logger,
		WithRetry(3, time.Millisecond))

	decisions := []models.ImportDecision{importDecision("ifood restaurante")}
	require.NoError(t, o.Categorize(context.Background(), decisions))

	assert.Equal(t, 3, client.callCount())
	assert.Equal(t, models.CategoryOther, decisions[0].Category)
	assert.True(t, logger.HasMessage("ERROR", "Classification gave up, using fallback category"))
}

func TestCategorizeNilClientUsesFallback(t *testing.T) {
	o := NewOrchestrator(nil, store.NewMemoryStore(), &logging.MockLogger{})

	decisions := []models.ImportDecision{importDecision("qualquer coisa")}
	require.NoError(t, o.Categorize(context.Background(), decisions))

	assert.Equal(t, models.CategoryOther, decisions[0].Category)
}

func TestCategorizeBatchesLargeSessions(t *testing.T) {
	client := &mockAIClient{}
	o := NewOrchestrator(client, store.NewMemoryStore(), &logging.MockLogger{},
		WithBatchSize(10), WithConcurrency(2))

	decisions := make([]models.ImportDecision, 25)
	for i := range decisions {
		decisions[i] = importDecision("merchant " + string(rune('a'+i)))
	}
	require.NoError(t, o.Categorize(context.Background(), decisions))

	assert.Equal(t, 3, client.callCount(), "25 descriptions at batch size 10")
	for _, d := range decisions {
		assert.Equal(t, models.CategoryRestaurants, d.Category)
	}
}
