package kb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/graph-gophers/dataloader"
	"golang.org/x/sync/singleflight"

	"github.com/roach88/sparqltt/internal/sparql"
)

const (
	DefaultEndpoint  = "https://query.wikidata.org/sparql"
	DefaultAPI       = "https://www.wikidata.org/w/api.php"
	DefaultTimeout   = 30 * time.Second
	DefaultBatchWait = 5 * time.Millisecond

	// maxBatch is the wbgetentities limit on ids per call.
	maxBatch = 50
	attempts = 2
)

// Cache stores raw responses and labels between runs. *store.Store
// implements it.
type Cache interface {
	Request(ctx context.Context, url string) (string, bool, error)
	PutRequest(ctx context.Context, url, result string) error
	Labels(ctx context.Context, ids []string) (map[string]*string, error)
	PutLabels(ctx context.Context, labels map[string]*string) error
	AltLabels(ctx context.Context, id string) ([]string, bool, error)
	PutAltLabels(ctx context.Context, id string, labels []string) error
}

// Options configures a Wikidata client. Zero fields take the defaults.
type Options struct {
	Endpoint   string
	API        string
	Timeout    time.Duration
	BatchWait  time.Duration
	HTTPClient *http.Client
	Cache      Cache
	Logger     *slog.Logger
}

// Wikidata is the live knowledge base. Safe for concurrent use: identical
// in-flight requests share one HTTP call and label lookups issued close
// together are batched into one wbgetentities call.
type Wikidata struct {
	endpoint string
	api      string
	timeout  time.Duration
	client   *http.Client
	cache    Cache
	logger   *slog.Logger

	group  singleflight.Group
	labels *dataloader.Loader
}

// NewWikidata returns a client for the public Wikidata services, or for
// the endpoints named in opts.
func NewWikidata(opts Options) *Wikidata {
	w := &Wikidata{
		endpoint: opts.Endpoint,
		api:      opts.API,
		timeout:  opts.Timeout,
		client:   opts.HTTPClient,
		cache:    opts.Cache,
		logger:   opts.Logger,
	}
	if w.endpoint == "" {
		w.endpoint = DefaultEndpoint
	}
	if w.api == "" {
		w.api = DefaultAPI
	}
	if w.timeout <= 0 {
		w.timeout = DefaultTimeout
	}
	if w.client == nil {
		w.client = http.DefaultClient
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	wait := opts.BatchWait
	if wait <= 0 {
		wait = DefaultBatchWait
	}
	w.labels = dataloader.NewBatchedLoader(w.batchLabels,
		dataloader.WithWait(wait),
		dataloader.WithBatchCapacity(maxBatch),
	)
	return w
}

// IsEntity reports whether id is an item id.
func (w *Wikidata) IsEntity(id string) bool {
	return IsEntity(id)
}

// PropertyValues returns the direct values of pid on qid. Entity values
// are returned as bare ids.
func (w *Wikidata) PropertyValues(ctx context.Context, qid, pid string) ([]string, error) {
	rows, err := w.query(ctx, fmt.Sprintf(`SELECT ?v WHERE { wd:%s wdt:%s ?v. }`, qid, pid))
	if err != nil {
		return nil, fmt.Errorf("values of %s %s: %w", qid, pid, err)
	}
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if v, ok := row["v"]; ok {
			values = append(values, strings.TrimPrefix(v.Value, sparql.EntityPrefix))
		}
	}
	return values, nil
}

// Domain returns the class qid is an instance of. With several classes
// the most populated one wins.
func (w *Wikidata) Domain(ctx context.Context, qid string) (string, bool, error) {
	classes, err := w.PropertyValues(ctx, qid, sparql.InstanceOf)
	if err != nil {
		return "", false, err
	}
	if domain, ok := pickDomain(classes); ok {
		return domain, domain != "", nil
	}

	rows, err := w.query(ctx, fmt.Sprintf(`SELECT ?v (COUNT(?s) AS ?count) WHERE {
		wd:%s wdt:P31 ?v.
		?s wdt:P31 ?v.
	} GROUP BY ?v ORDER BY DESC(?count)`, qid))
	if err != nil {
		return "", false, fmt.Errorf("domain of %s: %w", qid, err)
	}
	if len(rows) == 0 {
		return classes[0], true, nil
	}
	return strings.TrimPrefix(rows[0]["v"].Value, sparql.EntityPrefix), true, nil
}

// Label returns the English label of an item or property.
func (w *Wikidata) Label(ctx context.Context, id string) (string, bool, error) {
	if !isLabelled(id) {
		return "", false, nil
	}
	key := dataloader.StringKey(id)
	data, err := w.labels.Load(ctx, key)()
	if err != nil {
		w.labels.Clear(ctx, key)
		return "", false, fmt.Errorf("label of %s: %w", id, err)
	}
	label, _ := data.(*string)
	if label == nil {
		return "", false, nil
	}
	return *label, true, nil
}

// Labels returns the English labels of ids. Ids without a label, and
// strings that are not ids, are absent from the result.
func (w *Wikidata) Labels(ctx context.Context, ids []string) (map[string]string, error) {
	var keys []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if isLabelled(id) && !seen[id] {
			seen[id] = true
			keys = append(keys, id)
		}
	}

	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	values, errs := w.labels.LoadMany(ctx, dataloader.NewKeysFromStrings(keys))()
	for i, id := range keys {
		if i < len(errs) && errs[i] != nil {
			w.labels.Clear(ctx, dataloader.StringKey(id))
			return nil, fmt.Errorf("label of %s: %w", id, errs[i])
		}
		if label, _ := values[i].(*string); label != nil {
			out[id] = *label
		}
	}
	return out, nil
}

// AltLabels returns the English aliases of id.
func (w *Wikidata) AltLabels(ctx context.Context, id string) ([]string, error) {
	if !isLabelled(id) {
		return nil, nil
	}
	if w.cache != nil {
		cached, ok, err := w.cache.AltLabels(ctx, id)
		if err != nil {
			w.logger.Warn("kb cache read failed", "id", id, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	entities, err := w.entities(ctx, []string{id}, "aliases")
	if err != nil {
		return nil, fmt.Errorf("aliases of %s: %w", id, err)
	}
	var aliases []string
	for _, a := range entities[id].Aliases["en"] {
		aliases = append(aliases, a.Value)
	}

	if w.cache != nil {
		if err := w.cache.PutAltLabels(ctx, id, aliases); err != nil {
			w.logger.Warn("kb cache write failed", "id", id, "error", err)
		}
	}
	return aliases, nil
}

// EntityByName returns the best wbsearchentities match for name.
func (w *Wikidata) EntityByName(ctx context.Context, name string) (string, bool, error) {
	params := url.Values{
		"action":   {"wbsearchentities"},
		"format":   {"json"},
		"language": {"en"},
		"limit":    {"1"},
		"search":   {name},
	}
	body, err := w.request(ctx, w.api+"?"+params.Encode())
	if err != nil {
		return "", false, fmt.Errorf("search %q: %w", name, err)
	}
	var resp struct {
		Search []struct {
			ID string `json:"id"`
		} `json:"search"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false, fmt.Errorf("search %q: decode: %w", name, err)
	}
	if len(resp.Search) == 0 {
		return "", false, nil
	}
	return resp.Search[0].ID, true, nil
}

// batchLabels is the dataloader batch function: cached labels first, the
// rest from wbgetentities in chunks of maxBatch.
func (w *Wikidata) batchLabels(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
	ids := keys.Keys()
	found := make(map[string]*string, len(ids))

	var uncached []string
	if w.cache != nil {
		cached, err := w.cache.Labels(ctx, ids)
		if err != nil {
			w.logger.Warn("kb cache read failed", "error", err)
			cached = nil
		}
		for _, id := range ids {
			if label, ok := cached[id]; ok {
				found[id] = label
			} else {
				uncached = append(uncached, id)
			}
		}
		w.logger.Debug("kb label batch", "ids", len(ids), "cached", len(ids)-len(uncached))
	} else {
		uncached = ids
	}

	for start := 0; start < len(uncached); start += maxBatch {
		chunk := uncached[start:min(start+maxBatch, len(uncached))]
		entities, err := w.entities(ctx, chunk, "labels")
		if err != nil {
			results := make([]*dataloader.Result, len(ids))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		fetched := make(map[string]*string, len(chunk))
		for _, id := range chunk {
			e, ok := entities[id]
			// Redirects come back under the requested id with the target's id.
			if !ok || e.ID != id {
				fetched[id] = nil
				continue
			}
			if l, ok := e.Labels["en"]; ok {
				label := l.Value
				fetched[id] = &label
			} else {
				fetched[id] = nil
			}
		}
		for id, label := range fetched {
			found[id] = label
		}
		if w.cache != nil {
			if err := w.cache.PutLabels(ctx, fetched); err != nil {
				w.logger.Warn("kb cache write failed", "error", err)
			}
		}
	}

	results := make([]*dataloader.Result, len(ids))
	for i, id := range ids {
		results[i] = &dataloader.Result{Data: found[id]}
	}
	return results
}

type entity struct {
	ID     string `json:"id"`
	Labels map[string]struct {
		Value string `json:"value"`
	} `json:"labels"`
	Aliases map[string][]struct {
		Value string `json:"value"`
	} `json:"aliases"`
}

func (w *Wikidata) entities(ctx context.Context, ids []string, props string) (map[string]entity, error) {
	params := url.Values{
		"action":    {"wbgetentities"},
		"format":    {"json"},
		"ids":       {strings.Join(ids, "|")},
		"languages": {"en"},
		"props":     {props},
	}
	body, err := w.request(ctx, w.api+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	var resp struct {
		Entities map[string]entity `json:"entities"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode entities: %w", err)
	}
	return resp.Entities, nil
}

type binding struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (w *Wikidata) query(ctx context.Context, query string) ([]map[string]binding, error) {
	params := url.Values{
		"format": {"json"},
		"query":  {strings.Join(strings.Fields(query), " ")},
	}
	body, err := w.request(ctx, w.endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	var resp struct {
		Results struct {
			Bindings []map[string]binding `json:"bindings"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode sparql results: %w", err)
	}
	return resp.Results.Bindings, nil
}

// request returns the body of a GET, from the cache when possible.
// Concurrent requests for the same URL share one fetch.
func (w *Wikidata) request(ctx context.Context, u string) ([]byte, error) {
	if w.cache != nil {
		cached, ok, err := w.cache.Request(ctx, u)
		switch {
		case err != nil:
			w.logger.Warn("kb cache read failed", "url", u, "error", err)
		case ok:
			w.logger.Debug("kb cache hit", "url", u)
			return []byte(cached), nil
		default:
			w.logger.Debug("kb cache miss", "url", u)
		}
	}

	ch := w.group.DoChan(u, func() (any, error) {
		// The shared fetch must outlive the first caller's cancellation.
		body, err := w.fetchWithRetry(context.WithoutCancel(ctx), u)
		if err != nil {
			return nil, err
		}
		if w.cache != nil {
			if err := w.cache.PutRequest(context.WithoutCancel(ctx), u, string(body)); err != nil {
				w.logger.Warn("kb cache write failed", "url", u, "error", err)
			}
		}
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (w *Wikidata) fetchWithRetry(ctx context.Context, u string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := w.fetch(ctx, u)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if attempt < attempts {
			w.logger.Debug("kb request failed, retrying", "url", u, "error", err)
		}
	}
	w.logger.Warn("kb request failed", "url", u, "error", lastErr)
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

func (w *Wikidata) fetch(ctx context.Context, u string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sparqltt/0.1")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d", resp.Request.URL.Host, resp.StatusCode)
	}
	return body, nil
}
