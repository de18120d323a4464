package usage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_Aggregates(t *testing.T) {
	tracker := NewTracker()
	tracker.Track("gemini-2.5-flash", "section:market", 10, 5)
	tracker.Track("gemini-2.5-flash", "section:vision", 2, 3)
	tracker.Track("gemini-2.5-pro", "research", 100, 0)
	tracker.Track("gemini-2.5-pro", "", 1, 1)

	stats := tracker.Stats()
	assert.Equal(t, Counts{Calls: 4, Input: 113, Output: 9, Total: 122}, stats.Total)
	assert.Equal(t, int64(20), stats.ByModel["gemini-2.5-flash"].Total)
	assert.Equal(t, 2, stats.ByStep["section"].Calls)
	assert.Equal(t, int64(15), stats.ByLabel["section:market"].Total)
	assert.Equal(t, 1, stats.ByLabel["unlabeled"].Calls)
}

func TestTracker_StatsIsACopy(t *testing.T) {
	tracker := NewTracker()
	tracker.Track("m", "research", 1, 1)
	stats := tracker.Stats()
	stats.ByLabel["research"] = Counts{}
	assert.Equal(t, 1, tracker.Stats().ByLabel["research"].Calls)
}

func TestTracker_NilIsNoop(t *testing.T) {
	var tracker *Tracker
	tracker.Track("m", "x", 1, 1)
	assert.Equal(t, Stats{}, tracker.Stats())
	assert.Nil(t, FromContext(context.Background()))
}

func TestTracker_Concurrent(t *testing.T) {
	tracker := NewTracker()
	ctx := NewContext(context.Background(), tracker)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			FromContext(ctx).Track("m", "section:market", 1, 2)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(150), tracker.Stats().Total.Total)
}
