package kb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/sparqltt/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeWikidata serves the three endpoints the client uses.
type fakeWikidata struct {
	labels   map[string]string
	aliases  map[string][]string
	redirect map[string]string
	// sparql maps a query fragment to the values bound to ?v; queries are
	// whitespace-normalised before they are sent.
	sparql map[string][]string
	search map[string]string

	failures   atomic.Int32 // requests to fail before answering
	entityHits atomic.Int32
	sparqlHits atomic.Int32
	batches    [][]string
	mu         sync.Mutex
	block      chan struct{}
}

func (f *fakeWikidata) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.block != nil {
		<-f.block
	}
	if f.failures.Load() > 0 {
		f.failures.Add(-1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	switch {
	case r.URL.Path == "/sparql":
		f.sparqlHits.Add(1)
		f.serveSPARQL(w, q.Get("query"))
	case q.Get("action") == "wbgetentities":
		f.entityHits.Add(1)
		f.serveEntities(w, strings.Split(q.Get("ids"), "|"), q.Get("props"))
	case q.Get("action") == "wbsearchentities":
		var results []map[string]string
		if id, ok := f.search[q.Get("search")]; ok {
			results = append(results, map[string]string{"id": id})
		}
		json.NewEncoder(w).Encode(map[string]any{"search": results})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeWikidata) serveSPARQL(w http.ResponseWriter, query string) {
	var bindings []map[string]binding
	for fragment, values := range f.sparql {
		if !strings.Contains(query, fragment) {
			continue
		}
		for _, v := range values {
			bindings = append(bindings, map[string]binding{
				"v": {Type: "uri", Value: "http://www.wikidata.org/entity/" + v},
			})
		}
	}
	json.NewEncoder(w).Encode(map[string]any{"results": map[string]any{"bindings": bindings}})
}

func (f *fakeWikidata) serveEntities(w http.ResponseWriter, ids []string, props string) {
	f.mu.Lock()
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	f.batches = append(f.batches, sorted)
	f.mu.Unlock()

	entities := make(map[string]any, len(ids))
	for _, id := range ids {
		e := map[string]any{"id": id}
		if target, ok := f.redirect[id]; ok {
			e["id"] = target
		}
		if props == "labels" {
			if label, ok := f.labels[id]; ok {
				e["labels"] = map[string]any{"en": map[string]string{"language": "en", "value": label}}
			}
		}
		if props == "aliases" {
			var aliases []map[string]string
			for _, a := range f.aliases[id] {
				aliases = append(aliases, map[string]string{"language": "en", "value": a})
			}
			if aliases != nil {
				e["aliases"] = map[string]any{"en": aliases}
			}
		}
		entities[id] = e
	}
	json.NewEncoder(w).Encode(map[string]any{"entities": entities})
}

func newFake() *fakeWikidata {
	return &fakeWikidata{
		labels: map[string]string{
			"Q30":   "United States of America",
			"Q148":  "People's Republic of China",
			"P1082": "population",
		},
		aliases:  map[string][]string{"Q30": {"USA", "America"}},
		redirect: map[string]string{"Q1000000": "Q30"},
		sparql: map[string][]string{
			"{ wd:Q30 wdt:P31 ?v. }":   {"Q6256", "Q3624078"},
			"{ wd:Q76 wdt:P31 ?v. }":   {"Q5"},
			"{ wd:Q1490 wdt:P31 ?v. }": {"Q515"},
			"COUNT(?s)":                {"Q3624078"},
		},
		search: map[string]string{"Barack Obama": "Q76"},
	}
}

func newTestClient(t *testing.T, fake *fakeWikidata, cache Cache) *Wikidata {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewWikidata(Options{
		Endpoint:   srv.URL + "/sparql",
		API:        srv.URL + "/w/api.php",
		Timeout:    5 * time.Second,
		BatchWait:  10 * time.Millisecond,
		HTTPClient: srv.Client(),
		Cache:      cache,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestWikidata_Label(t *testing.T) {
	w := newTestClient(t, newFake(), nil)
	ctx := context.Background()

	label, ok, err := w.Label(ctx, "Q30")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "United States of America", label)

	_, ok, err = w.Label(ctx, "Q999")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = w.Label(ctx, "not an id")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWikidata_LabelsBatched(t *testing.T) {
	fake := newFake()
	w := newTestClient(t, fake, nil)

	labels, err := w.Labels(context.Background(), []string{"Q30", "Q148", "P1082", "Q30", "Q1000000", "bogus"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Q30":   "United States of America",
		"Q148":  "People's Republic of China",
		"P1082": "population",
	}, labels)
	assert.Equal(t, int32(1), fake.entityHits.Load())
	assert.Equal(t, [][]string{{"P1082", "Q1000000", "Q148", "Q30"}}, fake.batches)
}

func TestWikidata_LabelsChunkedAtFifty(t *testing.T) {
	fake := newFake()
	w := newTestClient(t, fake, nil)

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("Q%d", 5000+i)
	}
	_, err := w.Labels(context.Background(), ids)
	require.NoError(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	total := 0
	for _, batch := range fake.batches {
		assert.LessOrEqual(t, len(batch), maxBatch)
		total += len(batch)
	}
	assert.Equal(t, 120, total)
}

func TestWikidata_LabelCachePersists(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	first := newFake()
	_, err = newTestClient(t, first, s).Labels(ctx, []string{"Q30", "Q999"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), first.entityHits.Load())

	second := newFake()
	w := newTestClient(t, second, s)
	label, ok, err := w.Label(ctx, "Q30")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "United States of America", label)
	_, ok, err = w.Label(ctx, "Q999")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(0), second.entityHits.Load())
}

func TestWikidata_RetriesOnce(t *testing.T) {
	fake := newFake()
	fake.failures.Store(1)
	w := newTestClient(t, fake, nil)

	values, err := w.PropertyValues(context.Background(), "Q1490", "P31")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q515"}, values)
	assert.Equal(t, int32(1), fake.sparqlHits.Load())
	assert.Equal(t, int32(0), fake.failures.Load())
}

func TestWikidata_Unavailable(t *testing.T) {
	fake := newFake()
	fake.failures.Store(2)
	w := newTestClient(t, fake, nil)

	_, err := w.PropertyValues(context.Background(), "Q1490", "P31")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, int32(0), fake.failures.Load())
	assert.Equal(t, int32(0), fake.sparqlHits.Load())
}

func TestWikidata_SharesInFlightRequests(t *testing.T) {
	fake := newFake()
	fake.block = make(chan struct{})
	w := newTestClient(t, fake, nil)

	var wg sync.WaitGroup
	results := make([][]string, 5)
	errs := make([]error, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = w.PropertyValues(context.Background(), "Q1490", "P31")
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(fake.block)
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, []string{"Q515"}, results[i])
	}
	assert.Equal(t, int32(1), fake.sparqlHits.Load())
}

func TestWikidata_RequestCache(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer s.Close()

	fake := newFake()
	w := newTestClient(t, fake, s)
	for i := 0; i < 3; i++ {
		_, err := w.PropertyValues(context.Background(), "Q1490", "P31")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), fake.sparqlHits.Load())
}

func TestWikidata_Domain(t *testing.T) {
	w := newTestClient(t, newFake(), nil)
	ctx := context.Background()

	tests := []struct {
		qid  string
		want string
		ok   bool
	}{
		{"Q1490", "Q515", true},
		{"Q76", "Q5", true},
		{"Q30", "Q3624078", true},
		{"Q404", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.qid, func(t *testing.T) {
			got, ok, err := w.Domain(ctx, tt.qid)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWikidata_AltLabels(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer s.Close()

	fake := newFake()
	w := newTestClient(t, fake, s)
	ctx := context.Background()

	aliases, err := w.AltLabels(ctx, "Q30")
	require.NoError(t, err)
	assert.Equal(t, []string{"USA", "America"}, aliases)

	aliases, err = w.AltLabels(ctx, "Q148")
	require.NoError(t, err)
	assert.Empty(t, aliases)

	cached, ok, err := s.AltLabels(ctx, "Q30")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"USA", "America"}, cached)
}

func TestWikidata_EntityByName(t *testing.T) {
	w := newTestClient(t, newFake(), nil)

	id, ok, err := w.EntityByName(context.Background(), "Barack Obama")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Q76", id)

	_, ok, err = w.EntityByName(context.Background(), "Nobody In Particular")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWikidata_ContextCancelled(t *testing.T) {
	fake := newFake()
	fake.block = make(chan struct{})
	w := newTestClient(t, fake, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := w.PropertyValues(ctx, "Q1490", "P31")
	assert.ErrorIs(t, err, context.Canceled)
	close(fake.block)
}

func TestIsEntity(t *testing.T) {
	assert.True(t, IsEntity("Q30"))
	assert.False(t, IsEntity("P31"))
	assert.False(t, IsEntity("Q30x"))
	assert.False(t, IsEntity("http://www.wikidata.org/entity/Q30"))
}
