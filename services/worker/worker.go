package worker

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sjsage522/aplusworker/helpers"
	"sjsage522/aplusworker/internal"
	"sjsage522/aplusworker/internal/dom"
	"sjsage522/aplusworker/internal/extractor"
	"sjsage522/aplusworker/pkg/errors"
	"sjsage522/aplusworker/services/cache"
	"sjsage522/aplusworker/services/storage"
)

// defaultRateLimitBackoff applies when a rate limit error carries no window.
const defaultRateLimitBackoff = 5 * time.Minute

// seenURLTTL keeps published-URL markers for thirty days.
const seenURLTTL = 30 * 24 * time.Hour

var titleSelectors = []string{"#productTitle", "#title"}

// Message is the payload published for one non-empty extraction result.
type Message struct {
	RunID       string    `json:"run_id"`
	ResultID    string    `json:"result_id"`
	ASIN        string    `json:"asin,omitempty"`
	URL         string    `json:"url"`
	Category    string    `json:"category"`
	FilePrefix  string    `json:"file_prefix"`
	ImageURLs   []string  `json:"image_urls"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// runSummary is recorded on the completed task row.
type runSummary struct {
	RunID      string              `json:"run_id"`
	Categories map[string][]string `json:"categories"`
	Saved      int                 `json:"saved"`
}

// Worker handles the extraction and publishing process
type Worker struct {
	ctx           context.Context
	extractors    []extractor.Extractor
	deps          internal.Dependencies
	logger        helpers.LoggerInterface
	productURLs   []string
	crawlInterval time.Duration
	open          SessionOpener
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	extractors []extractor.Extractor,
	deps internal.Dependencies,
	logger helpers.LoggerInterface,
	productURLs []string,
	crawlInterval time.Duration,
	open SessionOpener,
) *Worker {
	return &Worker{
		ctx:           ctx,
		extractors:    extractors,
		deps:          deps,
		logger:        logger,
		productURLs:   productURLs,
		crawlInterval: crawlInterval,
		open:          open,
	}
}

// Start runs extraction passes until the context is cancelled.
func (w *Worker) Start() {
	for {
		start := time.Now()
		w.runPass()
		elapsed := time.Since(start)
		if os.Getenv("APLUS_ENVIRONMENT") != "production" {
			w.logger.LogInfo("extraction pass took %s", elapsed)
		}

		select {
		case <-w.ctx.Done():
			return
		case <-time.After(w.crawlInterval):
		}
	}
}

// runPass processes every configured product page and then trims the
// streams.
func (w *Worker) runPass() {
	for _, productURL := range w.productURLs {
		select {
		case <-w.ctx.Done():
			return
		default:
		}
		w.processProduct(productURL)
	}

	if err := w.deps.Publisher.TrimStreams(); err != nil {
		w.logger.LogError("StreamTrimming", err)
	}
}

// processProduct runs one full extraction for a product page: task
// bookkeeping, one document handle per extractor, parallel extraction,
// then storage and publishing for each non-empty result.
func (w *Worker) processProduct(productURL string) {
	if len(w.extractors) == 0 {
		return
	}

	host := hostOf(productURL)
	if host != "" {
		if _, err := w.deps.Cache.Get(cache.RateLimitKey(host)); err == nil {
			w.logger.LogInfo("skipping %s: rate limit backoff active for %s", productURL, host)
			return
		}
	}

	taskID := w.createTask(productURL)

	session, err := w.open(productURL)
	if err != nil {
		w.handleFetchFailure(taskID, host, err)
		return
	}
	defer session.Close()

	docs, err := w.openDocuments(session)
	if err != nil {
		w.handleFetchFailure(taskID, host, err)
		return
	}
	defer closeDocuments(docs)

	if taskID > 0 {
		if err := w.deps.Tasks.MarkRunning(w.ctx, taskID); err != nil {
			w.logger.LogError("TaskStore", err)
		}
	}

	title := productTitle(docs[0])
	asin, _ := helpers.ExtractASIN(productURL)
	runID := uuid.New().String()

	results := w.runExtractors(docs)

	summary := runSummary{RunID: runID, Categories: make(map[string][]string)}
	var run storage.Run
	for i, res := range results {
		if res == nil || len(res.URLs) == 0 {
			continue
		}

		fresh := w.unseenURLs(res.URLs)
		if len(fresh) == 0 {
			continue
		}

		if run == nil {
			newRun, runErr := w.deps.Storage.NewRun(runLabel(title, asin, productURL))
			if runErr != nil {
				w.logger.LogError("Storage", runErr)
			} else {
				run = newRun
			}
		}
		if run != nil {
			saved, saveErr := run.SaveImages(res.FilePrefix, fresh)
			if saveErr != nil {
				w.logger.LogError("Storage", saveErr)
			}
			summary.Saved += len(saved)
		}

		if pubErr := w.publishResult(runID, asin, productURL, res, fresh); pubErr != nil {
			w.logger.LogError(w.extractors[i].GetName(), pubErr)
			continue
		}

		w.markSeen(fresh)
		summary.Categories[string(res.Category)] = fresh
	}

	w.completeTask(taskID, title, summary)
}

// runExtractors runs every extractor in parallel, each over its own
// document handle. Results keep extractor order.
func (w *Worker) runExtractors(docs []dom.Document) []*extractor.Result {
	results := make([]*extractor.Result, len(w.extractors))
	var wg sync.WaitGroup
	for i, ex := range w.extractors {
		wg.Add(1)
		go func(i int, ex extractor.Extractor) {
			defer wg.Done()
			res, err := ex.Extract(docs[i])
			if err != nil {
				w.logger.LogError(ex.GetName(), err)
				return
			}
			results[i] = res
		}(i, ex)
	}
	wg.Wait()
	return results
}

// openDocuments opens one handle per extractor.
func (w *Worker) openDocuments(session PageSession) ([]dom.Document, error) {
	docs := make([]dom.Document, 0, len(w.extractors))
	for range w.extractors {
		doc, err := session.Document()
		if err != nil {
			closeDocuments(docs)
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func closeDocuments(docs []dom.Document) {
	for _, doc := range docs {
		_ = doc.Close()
	}
}

func (w *Worker) publishResult(runID, asin, productURL string, res *extractor.Result, urls []string) error {
	msg := Message{
		RunID:       runID,
		ResultID:    uuid.New().String(),
		ASIN:        asin,
		URL:         productURL,
		Category:    string(res.Category),
		FilePrefix:  res.FilePrefix,
		ImageURLs:   urls,
		ExtractedAt: time.Now(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.NewPublisher("worker", "failed to marshal result", err)
	}

	key := asin
	if key == "" {
		key = runID
	}
	if err := w.deps.Publisher.Publish(key, payload); err != nil {
		return err
	}

	if os.Getenv("APLUS_ENVIRONMENT") != "production" {
		w.logger.LogInfo("published %s result for %s (%d images)", msg.Category, key, len(urls))
	}
	return nil
}

// unseenURLs filters out URLs already published in earlier runs. Cache
// trouble never blocks publishing.
func (w *Worker) unseenURLs(urls []string) []string {
	fresh := make([]string, 0, len(urls))
	for _, u := range urls {
		_, err := w.deps.Cache.Get(cache.SeenURLKey(u))
		switch {
		case err == nil:
			// already published
		case cache.IsMiss(err):
			fresh = append(fresh, u)
		default:
			w.logger.LogError("Cache", err)
			fresh = append(fresh, u)
		}
	}
	return fresh
}

func (w *Worker) markSeen(urls []string) {
	for _, u := range urls {
		if err := w.deps.Cache.Set(cache.SeenURLKey(u), []byte("1"), seenURLTTL); err != nil {
			w.logger.LogError("Cache", err)
		}
	}
}

func (w *Worker) handleFetchFailure(taskID int64, host string, err error) {
	w.logger.LogError("fetch", err)

	if errors.IsType(err, errors.ErrorTypeRateLimit) && host != "" {
		backoff := defaultRateLimitBackoff
		if d, ok := errors.BackoffDuration(err); ok {
			backoff = d
		}
		if cacheErr := w.deps.Cache.Set(cache.RateLimitKey(host), []byte("1"), backoff); cacheErr != nil {
			w.logger.LogError("Cache", cacheErr)
		}
	}

	w.failTask(taskID, err)
}

func (w *Worker) createTask(productURL string) int64 {
	names := make([]string, 0, len(w.extractors))
	for _, ex := range w.extractors {
		names = append(names, ex.GetName())
	}
	configJSON, err := json.Marshal(map[string][]string{"extractors": names})
	if err != nil {
		configJSON = nil
	}

	id, err := w.deps.Tasks.Create(w.ctx, productURL, string(configJSON))
	if err != nil {
		w.logger.LogError("TaskStore", err)
		return 0
	}
	return id
}

func (w *Worker) completeTask(taskID int64, title string, summary runSummary) {
	if taskID == 0 {
		return
	}
	resultsJSON, err := json.Marshal(summary)
	if err != nil {
		w.logger.LogError("TaskStore", err)
		resultsJSON = nil
	}
	if err := w.deps.Tasks.Complete(w.ctx, taskID, title, string(resultsJSON)); err != nil {
		w.logger.LogError("TaskStore", err)
	}
}

func (w *Worker) failTask(taskID int64, cause error) {
	if taskID == 0 {
		return
	}
	if err := w.deps.Tasks.Fail(w.ctx, taskID, cause.Error()); err != nil {
		w.logger.LogError("TaskStore", err)
	}
}

// productTitle reads the product name off the page for task records
// and output directory naming.
func productTitle(doc dom.Document) string {
	for _, sel := range titleSelectors {
		for _, el := range doc.Find(sel) {
			if t := strings.TrimSpace(el.Text()); t != "" {
				return t
			}
		}
	}
	return ""
}

func runLabel(title, asin, productURL string) string {
	if title != "" {
		return title
	}
	if asin != "" {
		return asin
	}
	return productURL
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
