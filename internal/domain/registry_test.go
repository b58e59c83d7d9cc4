package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryListPreservesCatalogOrder(t *testing.T) {
	registry := NewRegistry(SeedCatalog())

	activities := registry.List()
	require.Len(t, activities, 6)

	names := make([]string, 0, len(activities))
	for _, a := range activities {
		names = append(names, a.Name)
		require.NotEmpty(t, a.Description)
		require.NotEmpty(t, a.Schedule)
		require.Positive(t, a.MaxParticipants)
		require.NotNil(t, a.Participants)
		require.Empty(t, a.Participants)
	}
	require.Equal(t, []string{
		"Basketball Club",
		"Tennis Team",
		"Art Studio",
		"Music Band",
		"Debate Team",
		"Science Club",
	}, names)
}

func TestRegistrySignupAndUnregister(t *testing.T) {
	registry := NewRegistry(SeedCatalog())

	after, err := registry.Signup("Basketball Club", "a@x.edu")
	require.NoError(t, err)
	require.Equal(t, []string{"a@x.edu"}, after.Participants)

	_, err = registry.Signup("Basketball Club", "a@x.edu")
	require.ErrorIs(t, err, ErrAlreadySignedUp)

	got, err := registry.Get("Basketball Club")
	require.NoError(t, err)
	require.Equal(t, []string{"a@x.edu"}, got.Participants)

	after, err = registry.Unregister("Basketball Club", "a@x.edu")
	require.NoError(t, err)
	require.Empty(t, after.Participants)

	_, err = registry.Unregister("Basketball Club", "a@x.edu")
	require.ErrorIs(t, err, ErrNotRegistered)

	// The state machine returns to SignedUp after a full cycle.
	_, err = registry.Signup("Basketball Club", "a@x.edu")
	require.NoError(t, err)
}

func TestRegistryUnknownActivity(t *testing.T) {
	registry := NewRegistry(SeedCatalog())
	before := registry.List()

	_, err := registry.Signup("NoSuchClub", "a@x.edu")
	require.ErrorIs(t, err, ErrActivityNotFound)

	_, err = registry.Unregister("NoSuchClub", "a@x.edu")
	require.ErrorIs(t, err, ErrActivityNotFound)

	_, err = registry.Get("basketball club")
	require.ErrorIs(t, err, ErrActivityNotFound)

	require.Equal(t, before, registry.List())
}

func TestRegistrySameEmailAcrossActivities(t *testing.T) {
	registry := NewRegistry(SeedCatalog())

	_, err := registry.Signup("Music Band", "student5@mergington.edu")
	require.NoError(t, err)
	_, err = registry.Signup("Debate Team", "student5@mergington.edu")
	require.NoError(t, err)

	band, err := registry.Get("Music Band")
	require.NoError(t, err)
	debate, err := registry.Get("Debate Team")
	require.NoError(t, err)
	require.True(t, band.Has("student5@mergington.edu"))
	require.True(t, debate.Has("student5@mergington.edu"))
}

func TestRegistryUnregisterKeepsOrder(t *testing.T) {
	registry := NewRegistry(SeedCatalog())
	for _, email := range []string{"a@x.edu", "b@x.edu", "c@x.edu", "d@x.edu"} {
		_, err := registry.Signup("Art Studio", email)
		require.NoError(t, err)
	}

	after, err := registry.Unregister("Art Studio", "b@x.edu")
	require.NoError(t, err)
	require.Equal(t, []string{"a@x.edu", "c@x.edu", "d@x.edu"}, after.Participants)
}

func TestRegistrySnapshotsAreIsolated(t *testing.T) {
	registry := NewRegistry(SeedCatalog())
	_, err := registry.Signup("Tennis Team", "a@x.edu")
	require.NoError(t, err)

	listed := registry.List()
	listed[1].Participants[0] = "mutated@x.edu"

	got, err := registry.Get("Tennis Team")
	require.NoError(t, err)
	require.Equal(t, []string{"a@x.edu"}, got.Participants)
}

func TestRegistryCapacityIsNotEnforcedByDefault(t *testing.T) {
	registry := NewRegistry([]Activity{{Name: "Chess", MaxParticipants: 1}})

	_, err := registry.Signup("Chess", "a@x.edu")
	require.NoError(t, err)
	after, err := registry.Signup("Chess", "b@x.edu")
	require.NoError(t, err)
	require.Len(t, after.Participants, 2)
}

func TestRegistryCapacityEnforcement(t *testing.T) {
	registry := NewRegistry([]Activity{{Name: "Chess", MaxParticipants: 1}}, WithCapacityEnforcement(true))

	_, err := registry.Signup("Chess", "a@x.edu")
	require.NoError(t, err)
	_, err = registry.Signup("Chess", "b@x.edu")
	require.ErrorIs(t, err, ErrActivityFull)

	// A duplicate is still reported as a duplicate when the roster is full.
	_, err = registry.Signup("Chess", "a@x.edu")
	require.ErrorIs(t, err, ErrAlreadySignedUp)
}

func TestNewRegistryDeduplicatesSeed(t *testing.T) {
	registry := NewRegistry([]Activity{
		{Name: "Chess", Participants: []string{"a@x.edu", "a@x.edu", "b@x.edu"}},
		{Name: "Chess", Description: "ignored"},
	})

	activities := registry.List()
	require.Len(t, activities, 1)
	require.Empty(t, activities[0].Description)
	require.Equal(t, []string{"a@x.edu", "b@x.edu"}, activities[0].Participants)
}

func TestRegistryConcurrentDuplicateSignup(t *testing.T) {
	registry := NewRegistry(SeedCatalog())

	const workers = 64
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := registry.Signup("Science Club", "race@x.edu"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, 1, successes)
	got, err := registry.Get("Science Club")
	require.NoError(t, err)
	require.Equal(t, []string{"race@x.edu"}, got.Participants)
}
