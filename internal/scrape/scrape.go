// Package scrape downloads the CodeIgniter user guides into data/raw.
//
// Pages are crawled from the official guide roots, reduced to readable
// text, and written as one .txt file per page. Filenames carry a ci3_,
// ci4_ or upgrade_ prefix so the document classifier picks the right
// type when the corpus is prepared.
package scrape

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"
	"github.com/google/renameio/v2"

	"github.com/ciforge/migrag/internal/log"
)

// Guide roots published by the CodeIgniter project.
const (
	CI3BaseURL = "https://codeigniter.com/userguide3/"
	CI4BaseURL = "https://codeigniter.com/user_guide/"
)

const userAgent = "migrag/1.0 (+https://github.com/ciforge/migrag)"

// Source selects which user guide to crawl.
type Source string

const (
	SourceCI3 Source = "ci3"
	SourceCI4 Source = "ci4"
)

// Config tunes the crawler. Zero values fall back to polite defaults.
type Config struct {
	OutDir      string
	Parallelism int
	Delay       time.Duration
	Timeout     time.Duration
	MaxDepth    int

	// BaseURL overrides the guide root for the chosen source.
	// Used by tests; normally left empty.
	BaseURL string
}

// Result summarizes one crawl.
type Result struct {
	Saved   int
	Skipped int
	Failed  int
}

// Total returns the number of pages processed.
func (r Result) Total() int {
	return r.Saved + r.Skipped + r.Failed
}

// Fetcher crawls a user guide and writes page text into the raw
// documentation directory.
type Fetcher struct {
	cfg    Config
	logger log.Logger
}

// NewFetcher creates a Fetcher writing into cfg.OutDir.
func NewFetcher(cfg Config, logger log.Logger) *Fetcher {
	if cfg.OutDir == "" {
		cfg.OutDir = filepath.Join("data", "raw")
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 2
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Fetcher{cfg: cfg, logger: logger}
}

// Fetch crawls the guide for source and writes one text file per page.
// Pages whose file already exists are skipped, so re-running only picks
// up new pages.
func (f *Fetcher) Fetch(ctx context.Context, source Source) (*Result, error) {
	baseURL := f.cfg.BaseURL
	if baseURL == "" {
		switch source {
		case SourceCI3:
			baseURL = CI3BaseURL
		case SourceCI4:
			baseURL = CI4BaseURL
		default:
			return nil, fmt.Errorf("unknown source %q (want %q or %q)", source, SourceCI3, SourceCI4)
		}
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	if err := os.MkdirAll(f.cfg.OutDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(base.Hostname()),
		colly.MaxDepth(f.cfg.MaxDepth),
		colly.Async(true),
		colly.UserAgent(userAgent),
	)
	c.SetRequestTimeout(f.cfg.Timeout)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: f.cfg.Parallelism,
		Delay:       f.cfg.Delay,
	}); err != nil {
		return nil, fmt.Errorf("configuring crawl limits: %w", err)
	}

	var (
		mu     sync.Mutex
		result Result
	)

	c.OnRequest(func(r *colly.Request) {
		select {
		case <-ctx.Done():
			r.Abort()
		default:
		}
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if !strings.HasPrefix(link, baseURL) {
			return
		}
		// fragment-only navigation revisits the same page
		if u, err := url.Parse(link); err == nil {
			u.Fragment = ""
			link = u.String()
		}
		_ = e.Request.Visit(link)
	})

	c.OnResponse(func(r *colly.Response) {
		if ct := r.Headers.Get("Content-Type"); !strings.Contains(ct, "text/html") {
			return
		}

		name := pageFilename(source, base, r.Request.URL)
		dest := filepath.Join(f.cfg.OutDir, name)

		mu.Lock()
		defer mu.Unlock()

		if _, err := os.Stat(dest); err == nil {
			result.Skipped++
			return
		}

		article, err := readability.FromReader(strings.NewReader(string(r.Body)), r.Request.URL)
		if err != nil || strings.TrimSpace(article.TextContent) == "" {
			f.logger.Warn("page not readable", "url", r.Request.URL.String(), "error", err)
			result.Failed++
			return
		}

		text := article.Title + "\n\n" + strings.TrimSpace(article.TextContent) + "\n"
		if err := renameio.WriteFile(dest, []byte(text), 0o640); err != nil {
			f.logger.Warn("writing page", "file", dest, "error", err)
			result.Failed++
			return
		}

		f.logger.Debug("saved page", "file", name, "bytes", len(text))
		result.Saved++
	})

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		result.Failed++
		mu.Unlock()
		f.logger.Warn("fetching page", "url", r.Request.URL.String(), "error", err)
	})

	if err := c.Visit(baseURL); err != nil {
		return nil, fmt.Errorf("starting crawl at %s: %w", baseURL, err)
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return &result, err
	}

	f.logger.Info("crawl finished",
		"source", string(source),
		"saved", result.Saved,
		"skipped", result.Skipped,
		"failed", result.Failed)
	return &result, nil
}

// pageFilename maps a guide URL to a classifier-friendly filename, e.g.
// /user_guide/models/model.html becomes ci4_models_model.txt and an
// upgrade page becomes upgrade_<slug>.txt regardless of source.
func pageFilename(source Source, base, page *url.URL) string {
	rel := strings.TrimPrefix(page.Path, base.Path)
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	rel = strings.Trim(rel, "/")
	if rel == "" || rel == "index" {
		rel = "index"
	}

	slug := strings.NewReplacer("/", "_", ".", "_", "-", "_").Replace(rel)

	prefix := string(source)
	if strings.Contains(strings.ToLower(rel), "upgrad") {
		prefix = "upgrade"
	}
	return prefix + "_" + slug + ".txt"
}
