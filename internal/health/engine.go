// Package health implements the content reconciliation engine. The store
// enforces no referential integrity of its own, so every consistency
// guarantee is recomputed from live listings on each call; there is no
// incremental or cached health state.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/littlesmartgenius/sitekeeper/internal/content"
	"github.com/littlesmartgenius/sitekeeper/internal/github"
)

// Severity levels for issues.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Issue is one detected inconsistency. Issues are produced, never persisted.
type Issue struct {
	Severity string `json:"type"`
	Category string `json:"cat"`
	Message  string `json:"msg"`
}

// Report is the aggregate result of one reconciliation pass.
type Report struct {
	Score          int     `json:"score"`
	TotalArticles  int     `json:"totalArticles"`
	TotalPosts     int     `json:"totalPosts"`
	TotalImages    int     `json:"totalImages"`
	TotalInstagram int     `json:"totalInstagram"`
	Issues         []Issue `json:"issues"`
	IssueCount     int     `json:"issueCount"`
}

// Store is the read-only slice of the content store the engine needs.
type Store interface {
	GetFile(ctx context.Context, path string) (github.File, bool, error)
	ListDir(ctx context.Context, dir string) ([]github.Entry, error)
}

// Engine cross-references the content collections.
type Engine struct {
	store Store
}

// NewEngine creates a reconciliation engine over the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Snapshot is one consistent view of everything the checks consume. It is
// separated from Check so the check logic stays a pure function.
type Snapshot struct {
	Pages      []github.Entry
	Posts      []github.Entry
	Images     []github.Entry
	Instagram  []github.Entry
	Index      content.IndexDocument
	Sitemap    string
	HasSitemap bool
}

// Check gathers a snapshot (read-only listings fan out concurrently) and
// evaluates it.
func (e *Engine) Check(ctx context.Context) (*Report, error) {
	var snap Snapshot
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { snap.Pages, err = e.store.ListDir(gCtx, content.PagesDir); return })
	g.Go(func() (err error) { snap.Posts, err = e.store.ListDir(gCtx, content.PostsDir); return })
	g.Go(func() (err error) { snap.Images, err = e.store.ListDir(gCtx, content.ImagesDir); return })
	g.Go(func() (err error) { snap.Instagram, err = e.store.ListDir(gCtx, content.InstagramDir); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if file, ok, err := e.store.GetFile(ctx, content.ArticleIndexPath); err != nil {
		return nil, err
	} else if ok {
		if err := unmarshalIndex(file.Content, &snap.Index); err != nil {
			return nil, err
		}
	}
	if file, ok, err := e.store.GetFile(ctx, content.SitemapPath); err != nil {
		return nil, err
	} else if ok {
		snap.Sitemap = file.Content
		snap.HasSitemap = true
	}

	report := Evaluate(snap)
	return &report, nil
}

// Evaluate runs every check unconditionally (no short-circuit) and derives
// the aggregate score. Weights are fixed compatibility constants.
func Evaluate(snap Snapshot) Report {
	pageSlugs := map[string]bool{}
	for _, e := range snap.Pages {
		pageSlugs[content.PageSlug(e.Name)] = true
	}
	postSlugs := map[string]bool{}
	for _, e := range snap.Posts {
		postSlugs[content.PostSlug(e.Name)] = true
	}
	indexSlugs := map[string]bool{}
	for _, rec := range snap.Index.Articles {
		indexSlugs[rec.Slug] = true
	}

	score := 100
	issues := []Issue{}
	add := func(severity, category, message string, weight int) {
		issues = append(issues, Issue{Severity: severity, Category: category, Message: message})
		score -= weight
	}

	for _, slug := range sortedKeys(pageSlugs) {
		if !postSlugs[slug] {
			add(SeverityWarning, "orphan", fmt.Sprintf("page without post metadata: %s", slug), 2)
		}
	}
	for _, slug := range sortedKeys(postSlugs) {
		if !pageSlugs[slug] {
			add(SeverityError, "build", fmt.Sprintf("post metadata without page (build needed): %s", slug), 3)
		}
	}
	for _, slug := range sortedKeys(pageSlugs) {
		if !indexSlugs[slug] {
			add(SeverityWarning, "index", fmt.Sprintf("missing from %s: %s", content.ArticleIndexPath, slug), 2)
		}
	}
	for _, slug := range sortedKeys(indexSlugs) {
		if !pageSlugs[slug] {
			add(SeverityError, "index", fmt.Sprintf("in index but no page: %s", slug), 3)
		}
	}
	for _, slug := range sortedKeys(pageSlugs) {
		hasCover := false
		bodyImages := 0
		for _, e := range snap.Images {
			if !content.BelongsTo(e.Name, slug) {
				continue
			}
			// The engine accepts any "cover" spelling; listing demands "-cover".
			if strings.Contains(e.Name, "cover") {
				hasCover = true
			}
			if content.IsBodyImage(e.Name) {
				bodyImages++
			}
		}
		if !hasCover {
			add(SeverityError, "image", fmt.Sprintf("cover image missing: %s", slug), 5)
		}
		if bodyImages < 4 {
			add(SeverityWarning, "image", fmt.Sprintf("body images %d/4 for %s", bodyImages, slug), 1)
		}
	}
	if snap.HasSitemap {
		for _, slug := range sortedKeys(pageSlugs) {
			if !strings.Contains(snap.Sitemap, slug) {
				add(SeverityWarning, "sitemap", fmt.Sprintf("missing from sitemap: %s", slug), 1)
			}
		}
	}
	for _, slug := range sortedKeys(pageSlugs) {
		hasSocial := false
		for _, e := range snap.Instagram {
			if content.BelongsTo(e.Name, slug) {
				hasSocial = true
				break
			}
		}
		if !hasSocial {
			// Informational only; does not affect the score.
			add(SeverityInfo, "instagram", fmt.Sprintf("no instagram asset: %s", slug), 0)
		}
	}

	if score < 0 {
		score = 0
	}

	instagram := 0
	for _, e := range snap.Instagram {
		if strings.HasSuffix(e.Name, ".jpg") || strings.HasSuffix(e.Name, ".png") {
			instagram++
		}
	}

	return Report{
		Score:          score,
		TotalArticles:  len(pageSlugs),
		TotalPosts:     len(postSlugs),
		TotalImages:    len(snap.Images),
		TotalInstagram: instagram,
		Issues:         issues,
		IssueCount:     len(issues),
	}
}

func unmarshalIndex(text string, doc *content.IndexDocument) error {
	if err := json.Unmarshal([]byte(text), doc); err != nil {
		return fmt.Errorf("parse %s: %w", content.ArticleIndexPath, err)
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
