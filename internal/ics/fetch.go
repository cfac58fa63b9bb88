package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	goerrors "github.com/TudorHulban/go-errors"

	appLog "timeful/internal/log"
)

const (
	defaultCacheDir = "./var/ics-cache"

	fileMeta = "meta.json"
	fileBody = "body.ics"
)

// Source is one subscribed calendar feed.
type Source struct {
	ID   string
	Name string
	URL  string
}

// FetchResult is the body of a feed, fresh or from the disk cache.
type FetchResult struct {
	Source    Source
	Body      []byte
	FromCache bool
}

type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher downloads ICS feeds, revalidating them with ETag and
// Last-Modified against a per-URL disk cache. The cached body is served when
// the feed cannot be reached.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

// NewFetcher builds a Fetcher. A nil client gets a 15 second timeout.
func NewFetcher(cacheDir string, client *http.Client) *Fetcher {
	if cacheDir == "" {
		cacheDir = defaultCacheDir
	}

	if client == nil {
		client = &http.Client{
			Timeout: 15 * time.Second,
		}
	}

	return &Fetcher{
		client:   client,
		cacheDir: cacheDir,
	}
}

// FetchAll fetches every source in order. Failed sources are logged and
// reported in the error slice; results only hold sources that produced a body.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]FetchResult, []error) {
	results := make([]FetchResult, 0, len(sources))

	var errs []error

	for _, src := range sources {
		res, err := f.Fetch(ctx, src)
		if err != nil {
			appLog.Error("ics fetch failed", err, "id", src.ID, "url", redactURL(src.URL))

			errs = append(errs, err)

			continue
		}

		results = append(results, res)
	}

	return results, errs
}

// Fetch downloads one source.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{},
			goerrors.ErrInvalidInput{
				Caller:     "Fetch",
				InputName:  "URL",
				InputValue: src.ID,
				Issue:      errors.New("source URL is empty"),
			}
	}

	dir := f.cacheDirFor(src.URL)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return FetchResult{}, fmt.Errorf("ics: create cache dir: %w", err)
	}

	meta, _ := loadMeta(dir)
	cached, _ := os.ReadFile(filepath.Join(dir, fileBody))

	fromCache := func(reason error) (FetchResult, error) {
		if len(cached) == 0 {
			return FetchResult{}, reason
		}

		appLog.Warn("ics fetch failed; serving cached body", "id", src.ID, "reason", reason.Error())

		return FetchResult{
				Source:    src,
				Body:      cached,
				FromCache: true,
			},
			nil
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if errReq != nil {
		return FetchResult{}, errReq
	}

	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}

	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	resp, errDo := f.client.Do(req)
	if errDo != nil {
		return fromCache(errDo)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, errRead := io.ReadAll(resp.Body)
		if errRead != nil {
			return fromCache(errRead)
		}

		errSave := saveCache(
			dir,
			cacheMeta{
				URL:          src.URL,
				ETag:         resp.Header.Get("ETag"),
				LastModified: resp.Header.Get("Last-Modified"),
			},
			body,
		)
		if errSave != nil {
			appLog.Error("ics cache save failed", errSave, "id", src.ID)
		}

		appLog.Info("ics fetched", "id", src.ID, "url", redactURL(src.URL), "bytes", len(body))

		return FetchResult{
				Source: src,
				Body:   body,
			},
			nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return FetchResult{}, errors.New("ics: 304 Not Modified without cached body")
		}

		appLog.Debug("ics not modified", "id", src.ID)

		return FetchResult{
				Source:    src,
				Body:      cached,
				FromCache: true,
			},
			nil
	}

	return fromCache(fmt.Errorf("ics: unexpected status %s", resp.Status))
}

func (f *Fetcher) cacheDirFor(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))

	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func loadMeta(dir string) (cacheMeta, error) {
	var meta cacheMeta

	data, err := os.ReadFile(filepath.Join(dir, fileMeta))
	if err != nil {
		return meta, err
	}

	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheMeta{}, err
	}

	return meta, nil
}

// saveCache writes the body before the metadata so metadata never refers to
// a missing body.
func saveCache(dir string, meta cacheMeta, body []byte) error {
	if err := os.WriteFile(filepath.Join(dir, fileBody), body, 0o600); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, fileMeta), data, 0o600)
}

// redactURL keeps only scheme and host of a feed URL for logging.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://(redacted)"
	}

	return u.Scheme + "://" + u.Host + "/(redacted)"
}
