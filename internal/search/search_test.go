package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge/internal/types"
)

type fakeBackend struct {
	mu      sync.Mutex
	queries []string
	hits    []types.SearchHit
	err     error
}

func (f *fakeBackend) Query(_ context.Context, q string, max int) ([]types.SearchHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > max {
		return f.hits[:max], nil
	}
	return f.hits, nil
}

func TestTopics(t *testing.T) {
	assert.Len(t, AllTopics, 5)
	for _, topic := range AllTopics {
		assert.True(t, topic.Valid())
		assert.NotEmpty(t, topic.Description())
		parsed, err := ParseTopic(topic.ToolName())
		require.NoError(t, err)
		assert.Equal(t, topic, parsed)
	}

	assert.Equal(t, "coffee boxes market size growth rate statistics trends", TopicMarket.Augment(" coffee boxes "))
	assert.Equal(t, topicKeywords[TopicRegulatory], TopicRegulatory.Augment(""))

	_, err := ParseTopic("search_weather")
	assert.ErrorIs(t, err, ErrUnknownTopic)
	got, err := ParseTopic("case-studies")
	require.NoError(t, err)
	assert.Equal(t, TopicCaseStudies, got)
}

func TestSearcher_AugmentsAndCaches(t *testing.T) {
	backend := &fakeBackend{hits: []types.SearchHit{{Title: "a", Link: "https://a"}, {Title: "b", Link: "https://b"}}}
	s := New(backend, Options{MaxResults: 5, CacheTTL: time.Minute})

	hits, err := s.Search(context.Background(), TopicCompetitors, "coffee")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	_, err = s.Search(context.Background(), TopicCompetitors, "coffee")
	require.NoError(t, err)
	_, err = s.Search(context.Background(), TopicMarket, "coffee")
	require.NoError(t, err)

	require.Len(t, backend.queries, 2, "second competitors search served from cache")
	assert.Equal(t, TopicCompetitors.Augment("coffee"), backend.queries[0])
	assert.Equal(t, TopicMarket.Augment("coffee"), backend.queries[1])
}

func TestSearcher_Errors(t *testing.T) {
	backend := &fakeBackend{err: errors.New("blocked")}
	s := New(backend, Options{})

	_, err := s.Search(context.Background(), TopicComplaints, "coffee")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")

	_, err = s.Search(context.Background(), Topic("weather"), "coffee")
	assert.ErrorIs(t, err, ErrUnknownTopic)
	assert.Len(t, backend.queries, 1)
}

func TestCache_ExpiryAndEviction(t *testing.T) {
	c := NewCache(2, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	c.Set("q1", []types.SearchHit{{Title: "1"}})
	now = now.Add(time.Second)
	c.Set("q2", []types.SearchHit{{Title: "2"}})
	now = now.Add(time.Second)
	c.Set("q3", []types.SearchHit{{Title: "3"}})

	assert.Equal(t, 2, c.Size())
	_, ok := c.Get("q1")
	assert.False(t, ok, "oldest entry evicted")

	hits, ok := c.Get("q3")
	require.True(t, ok)
	hits[0].Title = "mutated"
	again, _ := c.Get("q3")
	assert.Equal(t, "3", again[0].Title, "callers get copies")

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("q3")
	assert.False(t, ok, "expired")
}
