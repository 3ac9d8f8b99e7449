// Package testing provides a reusable conformance suite for mounts.Store
// implementations.
package testing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/davmount/pkg/store/mounts"
)

// StoreTestSuite tests the mounts.Store interface contract, not
// implementation details, making it reusable across backends.
//
// Usage:
//
//	func TestMyStore(t *testing.T) {
//	    suite := &testing.StoreTestSuite{
//	        NewStore: func() mounts.Store {
//	            return mystore.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore is a factory function that creates a fresh Store instance
	// for each test. This ensures test isolation.
	NewStore func() mounts.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("Save_GetRoundTrip", suite.testSaveGetRoundTrip)
	t.Run("Save_Upserts", suite.testSaveUpserts)
	t.Run("Save_RejectsEmptyID", suite.testSaveRejectsEmptyID)
	t.Run("Get_NotFound", suite.testGetNotFound)
	t.Run("Delete_RemovesRecord", suite.testDeleteRemovesRecord)
	t.Run("Delete_NotFound", suite.testDeleteNotFound)
	t.Run("List_Empty", suite.testListEmpty)
	t.Run("List_OrderedByID", suite.testListOrderedByID)
	t.Run("Save_IsolatedFromCaller", suite.testSaveIsolatedFromCaller)
	t.Run("Close_RejectsOperations", suite.testCloseRejectsOperations)
}

// testContext returns a standard test context.
func testContext() context.Context {
	return context.Background()
}

// testRecord builds a distinct record for the given suffix.
func testRecord(suffix string) *mounts.Record {
	url := "https://dav.example.com/" + suffix
	user := "user-" + suffix
	return &mounts.Record{
		ID:        mounts.ComputeID(url, user),
		Name:      "mount-" + suffix,
		URL:       url,
		Username:  user,
		Password:  "secret-" + suffix,
		Writable:  true,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (suite *StoreTestSuite) testSaveGetRoundTrip(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	want := testRecord("roundtrip")
	require.NoError(t, store.Save(testContext(), want))

	got, err := store.Get(testContext(), want.ID)
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.URL, got.URL)
	assert.Equal(t, want.Username, got.Username)
	assert.Equal(t, want.Password, got.Password)
	assert.Equal(t, want.Writable, got.Writable)
	// Timestamp precision differs across backends (e.g. microseconds in
	// PostgreSQL), so compare with tolerance.
	assert.WithinDuration(t, want.CreatedAt, got.CreatedAt, time.Millisecond)
}

func (suite *StoreTestSuite) testSaveUpserts(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	rec := testRecord("upsert")
	require.NoError(t, store.Save(testContext(), rec))

	updated := *rec
	updated.Name = "renamed"
	updated.Password = "rotated"
	updated.Writable = false
	require.NoError(t, store.Save(testContext(), &updated))

	got, err := store.Get(testContext(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, "rotated", got.Password)
	assert.False(t, got.Writable)

	records, err := store.List(testContext())
	require.NoError(t, err)
	assert.Len(t, records, 1, "upsert must not create a second record")
}

func (suite *StoreTestSuite) testSaveRejectsEmptyID(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	rec := testRecord("no-id")
	rec.ID = ""
	require.Error(t, store.Save(testContext(), rec))
}

func (suite *StoreTestSuite) testGetNotFound(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	_, err := store.Get(testContext(), mounts.ComputeID("https://nowhere.example.com", "nobody"))
	require.Error(t, err)
	assert.True(t, mounts.IsNotFound(err), "expected NotFound, got %v", err)
}

func (suite *StoreTestSuite) testDeleteRemovesRecord(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	rec := testRecord("delete")
	require.NoError(t, store.Save(testContext(), rec))
	require.NoError(t, store.Delete(testContext(), rec.ID))

	_, err := store.Get(testContext(), rec.ID)
	assert.True(t, mounts.IsNotFound(err), "expected NotFound after delete, got %v", err)
}

func (suite *StoreTestSuite) testDeleteNotFound(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	err := store.Delete(testContext(), mounts.ComputeID("https://nowhere.example.com", "nobody"))
	require.Error(t, err)
	assert.True(t, mounts.IsNotFound(err), "expected NotFound, got %v", err)
}

func (suite *StoreTestSuite) testListEmpty(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	records, err := store.List(testContext())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func (suite *StoreTestSuite) testListOrderedByID(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	// Insert in arbitrary order; List must come back sorted by ID.
	for _, suffix := range []string{"zeta", "alpha", "midway"} {
		require.NoError(t, store.Save(testContext(), testRecord(suffix)))
	}

	records, err := store.List(testContext())
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i := 1; i < len(records); i++ {
		assert.Less(t, string(records[i-1].ID), string(records[i].ID),
			"records %d and %d out of order", i-1, i)
	}
}

func (suite *StoreTestSuite) testSaveIsolatedFromCaller(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	rec := testRecord("isolation")
	require.NoError(t, store.Save(testContext(), rec))

	// Mutating the caller's record after Save must not affect the store.
	rec.Name = "mutated"

	got, err := store.Get(testContext(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "mount-isolation", got.Name)
}

func (suite *StoreTestSuite) testCloseRejectsOperations(t *testing.T) {
	store := suite.NewStore()

	rec := testRecord("closed")
	require.NoError(t, store.Save(testContext(), rec))
	require.NoError(t, store.Close())

	assert.Error(t, store.Save(testContext(), testRecord(fmt.Sprintf("closed-%d", time.Now().UnixNano()))))

	_, err := store.Get(testContext(), rec.ID)
	assert.Error(t, err)

	_, err = store.List(testContext())
	assert.Error(t, err)
}
