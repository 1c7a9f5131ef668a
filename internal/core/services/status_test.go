package services

import (
	"fmt"
	stdsync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

func TestNewStatusTracker(t *testing.T) {
	tracker := NewStatusTracker(nil)
	require.NotNil(t, tracker)
	assert.Equal(t, domain.StatusNotProcessed, tracker.Status("/anything"))
}

func TestStatusTracker_SetAndStatus(t *testing.T) {
	tracker := NewStatusTracker(nil)

	tracker.Set("/data/x.txt", domain.StatusProcessing)
	assert.Equal(t, domain.StatusProcessing, tracker.Status("/data/x.txt"))

	tracker.Set("/data/x.txt", domain.StatusProcessed)
	assert.Equal(t, domain.StatusProcessed, tracker.Status("/data/x.txt"))

	// Unrelated paths stay at the default
	assert.Equal(t, domain.StatusNotProcessed, tracker.Status("/data/y.txt"))
}

func TestStatusTracker_Status_NormalisesPath(t *testing.T) {
	tracker := NewStatusTracker(nil)

	tracker.Set("/data//nested/../x.txt", domain.StatusProcessed)

	assert.Equal(t, domain.StatusProcessed, tracker.Status("/data/x.txt"))
}

func TestStatusTracker_ExclusionsWin(t *testing.T) {
	tracker := NewStatusTracker(domain.ExclusionList{"node_modules"})

	// Recorded state never shadows an exclusion match
	tracker.Set("/data/node_modules/pkg.json", domain.StatusProcessed)

	assert.Equal(t, domain.StatusExcluded, tracker.Status("/data/node_modules/pkg.json"))
	assert.Equal(t, domain.StatusExcluded, tracker.Status("/data/node_modules"))
}

func TestStatusTracker_SetExclusions(t *testing.T) {
	tracker := NewStatusTracker(nil)
	tracker.Set("/data/build/out.bin", domain.StatusProcessed)
	assert.Equal(t, domain.StatusProcessed, tracker.Status("/data/build/out.bin"))

	tracker.SetExclusions(domain.ExclusionList{"build"})
	assert.Equal(t, domain.StatusExcluded, tracker.Status("/data/build/out.bin"))

	tracker.SetExclusions(nil)
	assert.Equal(t, domain.StatusProcessed, tracker.Status("/data/build/out.bin"))
}

func TestStatusTracker_Subscribe(t *testing.T) {
	tracker := NewStatusTracker(nil)

	type event struct {
		path   string
		status domain.PathStatus
	}
	var events []event
	cancel := tracker.Subscribe(func(path string, status domain.PathStatus) {
		events = append(events, event{path, status})
	})

	tracker.Set("/data/x.txt", domain.StatusProcessing)
	tracker.Set("/data/x.txt", domain.StatusProcessed)

	require.Len(t, events, 2)
	assert.Equal(t, event{"/data/x.txt", domain.StatusProcessing}, events[0])
	assert.Equal(t, event{"/data/x.txt", domain.StatusProcessed}, events[1])

	cancel()
	tracker.Set("/data/y.txt", domain.StatusProcessed)
	assert.Len(t, events, 2)

	// Cancelling twice is harmless
	cancel()
}

func TestStatusTracker_Set_UnchangedIsSilent(t *testing.T) {
	tracker := NewStatusTracker(nil)

	notified := 0
	tracker.Subscribe(func(string, domain.PathStatus) { notified++ })

	tracker.Set("/data/x.txt", domain.StatusProcessed)
	tracker.Set("/data/x.txt", domain.StatusProcessed)

	assert.Equal(t, 1, notified)
}

func TestStatusTracker_SubscribersNotifiedInOrder(t *testing.T) {
	tracker := NewStatusTracker(nil)

	var order []string
	tracker.Subscribe(func(string, domain.PathStatus) { order = append(order, "first") })
	tracker.Subscribe(func(string, domain.PathStatus) { order = append(order, "second") })

	tracker.Set("/data/x.txt", domain.StatusProcessed)

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestStatusTracker_Forget(t *testing.T) {
	tracker := NewStatusTracker(nil)
	tracker.Set("/data/x.txt", domain.StatusProcessed)

	var last domain.PathStatus
	tracker.Subscribe(func(_ string, status domain.PathStatus) { last = status })

	tracker.Forget("/data/x.txt")

	assert.Equal(t, domain.StatusNotProcessed, tracker.Status("/data/x.txt"))
	assert.Equal(t, domain.StatusNotProcessed, last)

	// Forgetting an unknown path notifies nobody
	last = domain.StatusProcessed
	tracker.Forget("/data/unknown.txt")
	assert.Equal(t, domain.StatusProcessed, last)
}

func TestStatusTracker_Reset(t *testing.T) {
	tracker := NewStatusTracker(nil)
	tracker.Set("/data/x.txt", domain.StatusProcessed)
	tracker.Set("/data/y.txt", domain.StatusExcluded)

	notified := false
	tracker.Subscribe(func(string, domain.PathStatus) { notified = true })

	tracker.Reset()

	assert.Equal(t, domain.StatusNotProcessed, tracker.Status("/data/x.txt"))
	assert.Equal(t, domain.StatusNotProcessed, tracker.Status("/data/y.txt"))
	assert.False(t, notified)
}

func TestStatusTracker_ConcurrentAccess(t *testing.T) {
	tracker := NewStatusTracker(domain.ExclusionList{".git"})

	var wg stdsync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			path := fmt.Sprintf("/data/file-%d.txt", n)
			tracker.Set(path, domain.StatusProcessing)
			_ = tracker.Status(path)
			tracker.Set(path, domain.StatusProcessed)
			_ = tracker.Status("/data/.git/config")
		}(i)
	}
	wg.Wait()

	for i := 0; i < 25; i++ {
		assert.Equal(t, domain.StatusProcessed, tracker.Status(fmt.Sprintf("/data/file-%d.txt", i)))
	}
	assert.Equal(t, domain.StatusExcluded, tracker.Status("/data/.git/config"))
}
