package feedsync

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rental-availability/backend/internal/availability"
	"github.com/rental-availability/backend/internal/ical"
	"github.com/rental-availability/backend/internal/storage/models"
)

func day(t *testing.T, s string) availability.Day {
	t.Helper()
	d, err := availability.ParseDay(s)
	require.NoError(t, err)
	return d
}

// icsFor builds a well-formed interchange document blocking the given days.
func icsFor(t *testing.T, days ...availability.Day) []byte {
	t.Helper()
	m := make(map[availability.Day]availability.SourceTag, len(days))
	for _, d := range days {
		m[d] = availability.ManualTag()
	}
	return []byte(ical.Encode(availability.Compress(m), nil))
}

type fakeFeedStore struct {
	feeds    map[string]*models.CalendarFeed
	statuses map[string]string
	errs     map[string]*string
}

func newFakeFeedStore(feeds ...*models.CalendarFeed) *fakeFeedStore {
	s := &fakeFeedStore{
		feeds:    make(map[string]*models.CalendarFeed),
		statuses: make(map[string]string),
		errs:     make(map[string]*string),
	}
	for _, f := range feeds {
		s.feeds[f.ID] = f
	}
	return s
}

func (s *fakeFeedStore) GetByID(_ context.Context, id string) (*models.CalendarFeed, error) {
	return s.feeds[id], nil
}

func (s *fakeFeedStore) ListEnabled(_ context.Context) ([]models.CalendarFeed, error) {
	var out []models.CalendarFeed
	for _, f := range s.feeds {
		if f.Enabled && f.SourceType == models.SourceTypeProvider {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (s *fakeFeedStore) Create(_ context.Context, feed *models.CalendarFeed) error {
	if feed.ID == "" {
		feed.ID = fmt.Sprintf("feed-%d", len(s.feeds)+1)
	}
	s.feeds[feed.ID] = feed
	return nil
}

func (s *fakeFeedStore) Delete(_ context.Context, id string) error {
	delete(s.feeds, id)
	return nil
}

func (s *fakeFeedStore) SetEnabled(_ context.Context, id string, enabled bool) error {
	if f, ok := s.feeds[id]; ok {
		f.Enabled = enabled
	}
	return nil
}

func (s *fakeFeedStore) UpdateSyncStatus(_ context.Context, id string, status string, syncError *string) error {
	s.statuses[id] = status
	s.errs[id] = syncError
	return nil
}

type fakeStores struct {
	stores map[string]*availability.Store
	saves  map[string]int
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		stores: make(map[string]*availability.Store),
		saves:  make(map[string]int),
	}
}

func (f *fakeStores) StoreFor(_ context.Context, propertyID string) (*availability.Store, error) {
	if _, ok := f.stores[propertyID]; !ok {
		f.stores[propertyID] = availability.NewStore()
	}
	return f.stores[propertyID], nil
}

func (f *fakeStores) Save(_ context.Context, propertyID string) error {
	f.saves[propertyID]++
	return nil
}

type fakeFetcher struct {
	docs    map[string][]byte
	errs    map[string]error
	onFetch func()
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if f.onFetch != nil {
		f.onFetch()
	}
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	return f.docs[url], nil
}

func providerFeed(id, propertyID, url string) *models.CalendarFeed {
	return &models.CalendarFeed{
		ID:         id,
		PropertyID: propertyID,
		Name:       id,
		URL:        url,
		SourceType: models.SourceTypeProvider,
		Enabled:    true,
	}
}

func TestImportFromDocumentMergesAndClearsStale(t *testing.T) {
	feeds := newFakeFeedStore(providerFeed("airbnb", "prop-1", "https://example.com/airbnb.ics"))
	stores := newFakeStores()
	c := NewController(feeds, stores, &fakeFetcher{})

	store, err := stores.StoreFor(context.Background(), "prop-1")
	require.NoError(t, err)
	stale := day(t, "2026-09-01")
	kept := day(t, "2026-09-02")
	store.MergeFeedDates("airbnb", []availability.Day{stale, kept})

	added := day(t, "2026-09-03")
	result, err := c.ImportFromDocument(context.Background(), "airbnb", icsFor(t, kept, added))
	require.NoError(t, err)

	assert.Equal(t, 2, result.ImportedCount)
	assert.Equal(t, 1, result.ClearedCount)
	assert.False(t, store.IsBlocked(stale), "day the feed no longer reports must be cleared")
	assert.True(t, store.IsBlocked(kept))
	assert.True(t, store.IsBlocked(added))
	assert.Equal(t, models.SyncStatusSynced, feeds.statuses["airbnb"])
	assert.Equal(t, 1, stores.saves["prop-1"])
}

func TestImportMalformedDocumentMutatesNothing(t *testing.T) {
	feeds := newFakeFeedStore(providerFeed("airbnb", "prop-1", "https://example.com/airbnb.ics"))
	stores := newFakeStores()
	c := NewController(feeds, stores, &fakeFetcher{})

	store, err := stores.StoreFor(context.Background(), "prop-1")
	require.NoError(t, err)
	existing := day(t, "2026-09-01")
	store.MergeFeedDates("airbnb", []availability.Day{existing})

	result, err := c.ImportFromDocument(context.Background(), "airbnb", []byte("not a calendar"))
	require.Error(t, err)

	assert.Error(t, result.Error)
	assert.True(t, store.IsBlocked(existing), "failed decode must not touch the map")
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, models.SyncStatusError, feeds.statuses["airbnb"])
	require.NotNil(t, feeds.errs["airbnb"])
	assert.Equal(t, 0, stores.saves["prop-1"])
}

func TestImportEmptyDocumentIsEmptySuccess(t *testing.T) {
	feeds := newFakeFeedStore(providerFeed("airbnb", "prop-1", "https://example.com/airbnb.ics"))
	stores := newFakeStores()
	c := NewController(feeds, stores, &fakeFetcher{})

	store, err := stores.StoreFor(context.Background(), "prop-1")
	require.NoError(t, err)
	store.SetManual(day(t, "2026-09-01"))

	result, err := c.ImportFromDocument(context.Background(), "airbnb", icsFor(t))
	require.NoError(t, err)

	assert.Equal(t, 0, result.ImportedCount)
	assert.Equal(t, 1, store.Len(), "empty success leaves the map untouched")
	assert.Equal(t, models.SyncStatusSynced, feeds.statuses["airbnb"])
	assert.Equal(t, 0, stores.saves["prop-1"])
}

func TestImportOverwritesManualDays(t *testing.T) {
	feeds := newFakeFeedStore(providerFeed("airbnb", "prop-1", "https://example.com/airbnb.ics"))
	stores := newFakeStores()
	c := NewController(feeds, stores, &fakeFetcher{})

	store, err := stores.StoreFor(context.Background(), "prop-1")
	require.NoError(t, err)
	d := day(t, "2026-09-01")
	store.SetManual(d)

	_, err = c.ImportFromDocument(context.Background(), "airbnb", icsFor(t, d))
	require.NoError(t, err)

	tag, ok := store.SourceOf(d)
	require.True(t, ok)
	assert.Equal(t, availability.FeedTag("airbnb"), tag)
}

func TestTriggerSyncFetchFailure(t *testing.T) {
	feeds := newFakeFeedStore(providerFeed("airbnb", "prop-1", "https://example.com/airbnb.ics"))
	stores := newFakeStores()
	fetcher := &fakeFetcher{errs: map[string]error{
		"https://example.com/airbnb.ics": fmt.Errorf("connection refused"),
	}}
	c := NewController(feeds, stores, fetcher)

	result, err := c.TriggerSync(context.Background(), "airbnb")
	require.Error(t, err)

	assert.Error(t, result.Error)
	assert.Equal(t, models.SyncStatusError, feeds.statuses["airbnb"])
	assert.Equal(t, 0, stores.saves["prop-1"])
}

func TestTriggerSyncCancelledDiscardsDocument(t *testing.T) {
	feeds := newFakeFeedStore(providerFeed("airbnb", "prop-1", "https://example.com/airbnb.ics"))
	stores := newFakeStores()

	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &fakeFetcher{
		docs: map[string][]byte{
			"https://example.com/airbnb.ics": icsFor(t, day(t, "2026-09-01")),
		},
		// The feed is deregistered while the fetch is in flight.
		onFetch: cancel,
	}
	c := NewController(feeds, stores, fetcher)

	result, err := c.TriggerSync(ctx, "airbnb")
	require.Error(t, err)

	assert.ErrorIs(t, result.Error, context.Canceled)
	assert.Nil(t, stores.stores["prop-1"], "cancelled sync must not touch the property store")
	assert.Equal(t, models.SyncStatusError, feeds.statuses["airbnb"])
}

func TestSyncAllEnabledIsolatesFailures(t *testing.T) {
	feeds := newFakeFeedStore(
		providerFeed("broken", "prop-1", "https://example.com/broken.ics"),
		providerFeed("healthy", "prop-1", "https://example.com/healthy.ics"),
	)
	stores := newFakeStores()
	d := day(t, "2026-09-10")
	fetcher := &fakeFetcher{
		docs: map[string][]byte{"https://example.com/healthy.ics": icsFor(t, d)},
		errs: map[string]error{"https://example.com/broken.ics": fmt.Errorf("boom")},
	}
	c := NewController(feeds, stores, fetcher)

	results := c.SyncAllEnabled(context.Background())
	require.Len(t, results, 2)

	assert.Equal(t, models.SyncStatusError, feeds.statuses["broken"])
	assert.Equal(t, models.SyncStatusSynced, feeds.statuses["healthy"])

	store, err := stores.StoreFor(context.Background(), "prop-1")
	require.NoError(t, err)
	tag, ok := store.SourceOf(d)
	require.True(t, ok)
	assert.Equal(t, availability.FeedTag("healthy"), tag)
}

func TestToggleEnabledClearOnDisable(t *testing.T) {
	feed := providerFeed("airbnb", "prop-1", "https://example.com/airbnb.ics")
	feed.ClearOnDisable = true
	feeds := newFakeFeedStore(feed)
	stores := newFakeStores()
	c := NewController(feeds, stores, &fakeFetcher{})

	store, err := stores.StoreFor(context.Background(), "prop-1")
	require.NoError(t, err)
	store.MergeFeedDates("airbnb", []availability.Day{day(t, "2026-09-01")})
	store.SetManual(day(t, "2026-09-02"))

	require.NoError(t, c.ToggleEnabled(context.Background(), "airbnb", false))

	assert.False(t, feed.Enabled)
	assert.False(t, store.IsBlocked(day(t, "2026-09-01")), "clear_on_disable retracts the feed's days")
	assert.True(t, store.IsBlocked(day(t, "2026-09-02")), "manual days survive")
	assert.Equal(t, 1, stores.saves["prop-1"])
}

func TestToggleEnabledKeepsDaysByDefault(t *testing.T) {
	feeds := newFakeFeedStore(providerFeed("airbnb", "prop-1", "https://example.com/airbnb.ics"))
	stores := newFakeStores()
	c := NewController(feeds, stores, &fakeFetcher{})

	store, err := stores.StoreFor(context.Background(), "prop-1")
	require.NoError(t, err)
	store.MergeFeedDates("airbnb", []availability.Day{day(t, "2026-09-01")})

	require.NoError(t, c.ToggleEnabled(context.Background(), "airbnb", false))

	assert.True(t, store.IsBlocked(day(t, "2026-09-01")))
	assert.Equal(t, 0, stores.saves["prop-1"])
}

func TestDeregisterFeedCascade(t *testing.T) {
	feeds := newFakeFeedStore(providerFeed("airbnb", "prop-1", "https://example.com/airbnb.ics"))
	stores := newFakeStores()
	c := NewController(feeds, stores, &fakeFetcher{})

	store, err := stores.StoreFor(context.Background(), "prop-1")
	require.NoError(t, err)
	store.MergeFeedDates("airbnb", []availability.Day{day(t, "2026-09-01")})

	require.NoError(t, c.DeregisterFeed(context.Background(), "airbnb", true))

	assert.Nil(t, feeds.feeds["airbnb"])
	assert.Equal(t, 0, store.Len())
}

func TestRegisterFeedValidation(t *testing.T) {
	feeds := newFakeFeedStore()
	c := NewController(feeds, newFakeStores(), &fakeFetcher{})

	err := c.RegisterFeed(context.Background(), &models.CalendarFeed{PropertyID: "prop-1"})
	assert.Error(t, err, "name is required")

	err = c.RegisterFeed(context.Background(), &models.CalendarFeed{
		PropertyID: "prop-1",
		Name:       "Airbnb",
	})
	assert.Error(t, err, "provider feeds require a URL")

	err = c.RegisterFeed(context.Background(), &models.CalendarFeed{
		PropertyID: "prop-1",
		Name:       "Paper calendar",
		SourceType: models.SourceTypeManualImport,
	})
	require.NoError(t, err)
	assert.Len(t, feeds.feeds, 1)
}
