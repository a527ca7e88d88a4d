package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/littlesmartgenius/sitekeeper/internal/apperr"
	"github.com/littlesmartgenius/sitekeeper/internal/github"
)

// Service coordinates content operations against the remote store.
type Service struct {
	store      Store
	siteURL    string
	webhookURL string
	httpClient *http.Client
}

// NewService creates a content service. siteURL is used to build public view
// URLs; webhookURL (optional) receives social push payloads.
func NewService(store Store, siteURL, webhookURL string) *Service {
	return &Service{
		store:      store,
		siteURL:    siteURL,
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// collections is one consistent fan-out snapshot of the four asset dirs.
type collections struct {
	pages     []github.Entry
	posts     []github.Entry
	images    []github.Entry
	instagram []github.Entry
}

// listCollections fans out the four read-only directory listings and joins
// them. Listings commute, so they run concurrently; mutations never do.
func (s *Service) listCollections(ctx context.Context) (collections, error) {
	var c collections
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { c.pages, err = s.store.ListDir(gCtx, PagesDir); return })
	g.Go(func() (err error) { c.posts, err = s.store.ListDir(gCtx, PostsDir); return })
	g.Go(func() (err error) { c.images, err = s.store.ListDir(gCtx, ImagesDir); return })
	g.Go(func() (err error) { c.instagram, err = s.store.ListDir(gCtx, InstagramDir); return })
	if err := g.Wait(); err != nil {
		return collections{}, err
	}
	return c, nil
}

// loadIndex reads and parses one of the index documents. A missing document
// behaves as an empty one; ok distinguishes "absent" from "present".
func (s *Service) loadIndex(ctx context.Context, path string) (IndexDocument, string, bool, error) {
	file, ok, err := s.store.GetFile(ctx, path)
	if err != nil || !ok {
		return IndexDocument{}, "", false, err
	}
	var doc IndexDocument
	if err := json.Unmarshal([]byte(file.Content), &doc); err != nil {
		return IndexDocument{}, "", false, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, file.SHA, true, nil
}

// ListArticles returns every index record enriched with its live artifact
// state: page/post presence, image counts and a per-item health verdict.
func (s *Service) ListArticles(ctx context.Context) (*ArticleList, error) {
	doc, _, ok, err := s.loadIndex(ctx, ArticleIndexPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &ArticleList{Articles: []ArticleSummary{}}, nil
	}

	c, err := s.listCollections(ctx)
	if err != nil {
		return nil, err
	}

	pageNames := make(map[string]bool, len(c.pages))
	for _, e := range c.pages {
		pageNames[e.Name] = true
	}
	postSlugs := make(map[string]bool, len(c.posts))
	for _, e := range c.posts {
		postSlugs[PostSlug(e.Name)] = true
	}

	summaries := make([]ArticleSummary, 0, len(doc.Articles))
	for _, rec := range doc.Articles {
		slug := rec.Slug
		sum := ArticleSummary{
			IndexRecord: rec,
			HasPage:     pageNames[slug+".html"],
			HasPost:     postSlugs[slug],
			ViewURL:     fmt.Sprintf("%s/%s/%s.html", s.siteURL, PagesDir, slug),
		}
		for _, e := range c.images {
			if !BelongsTo(e.Name, slug) {
				continue
			}
			switch {
			case IsCover(e.Name):
				sum.CoverCount++
			case IsBodyImage(e.Name):
				sum.ContentImgCount++
			}
		}
		sum.ImageCount = sum.CoverCount + sum.ContentImgCount
		for _, e := range c.instagram {
			if BelongsTo(e.Name, slug) {
				sum.InstagramCount++
			}
		}
		sum.HasInstagram = sum.InstagramCount > 0

		switch {
		case !sum.HasPage:
			sum.Health = "error"
		case sum.CoverCount == 0:
			sum.Health = "error"
		case !sum.HasPost:
			sum.Health = "warning"
		default:
			sum.Health = "ok"
		}
		summaries = append(summaries, sum)
	}

	return &ArticleList{Articles: summaries, Total: len(summaries)}, nil
}

// CascadeDelete removes every artifact and index entry referencing slug.
// Sub-steps are independently fallible: a failed delete is recorded and the
// cascade continues, so the result always enumerates the exact outcome.
// Deletion is best-effort, not transactional.
func (s *Service) CascadeDelete(ctx context.Context, slug string) (*DeleteResult, error) {
	if slug == "" {
		return nil, fmt.Errorf("%w: missing slug", apperr.ErrInvalidRequest)
	}
	res := &DeleteResult{Slug: slug, Deleted: []string{}, Errors: []DeleteError{}}

	c, err := s.listCollections(ctx)
	if err != nil {
		return nil, err
	}

	type target struct{ path, sha string }
	var targets []target
	for _, e := range c.pages {
		if e.Name == slug+".html" {
			targets = append(targets, target{PagesDir + "/" + e.Name, e.SHA})
		}
	}
	for _, group := range []struct {
		dir     string
		entries []github.Entry
	}{
		{PostsDir, c.posts},
		{ImagesDir, c.images},
		{InstagramDir, c.instagram},
	} {
		for _, e := range group.entries {
			if BelongsTo(e.Name, slug) {
				targets = append(targets, target{group.dir + "/" + e.Name, e.SHA})
			}
		}
	}

	// File deletes run sequentially: the remote API rate-limits per-file
	// writes, and sequential execution keeps error attribution per path.
	msg := fmt.Sprintf("Dashboard: delete %s", slug)
	for _, t := range targets {
		if err := s.store.DeleteFile(ctx, t.path, t.sha, msg); err != nil {
			res.Errors = append(res.Errors, DeleteError{Path: t.path, Error: err.Error()})
			continue
		}
		res.Deleted = append(res.Deleted, t.path)
	}

	s.removeFromIndex(ctx, ArticleIndexPath, slug, res)
	s.removeFromIndex(ctx, SearchIndexPath, slug, res)
	s.removeFromSitemap(ctx, slug, res)

	res.TotalDeleted = len(res.Deleted)
	return res, nil
}

// removeFromIndex rewrites an index document without the given slug. An
// absent document is left alone.
func (s *Service) removeFromIndex(ctx context.Context, path, slug string, res *DeleteResult) {
	doc, sha, ok, err := s.loadIndex(ctx, path)
	if err != nil {
		res.Errors = append(res.Errors, DeleteError{Path: path, Error: err.Error()})
		return
	}
	if !ok {
		return
	}
	kept := doc.Articles[:0]
	for _, rec := range doc.Articles {
		if rec.Slug != slug {
			kept = append(kept, rec)
		}
	}
	doc.Articles = kept
	doc.TotalArticles = len(kept)

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		res.Errors = append(res.Errors, DeleteError{Path: path, Error: err.Error()})
		return
	}
	msg := fmt.Sprintf("Dashboard: remove %s from %s", slug, path)
	if err := s.store.PutFile(ctx, path, string(out), sha, msg); err != nil {
		res.Errors = append(res.Errors, DeleteError{Path: path, Error: err.Error()})
		return
	}
	res.Deleted = append(res.Deleted, path+" (entry removed)")
}

// removeFromSitemap strips the <url> block whose <loc> mentions slug,
// rewriting the sitemap only when something actually matched.
func (s *Service) removeFromSitemap(ctx context.Context, slug string, res *DeleteResult) {
	file, ok, err := s.store.GetFile(ctx, SitemapPath)
	if err != nil || !ok {
		if err != nil {
			res.Errors = append(res.Errors, DeleteError{Path: SitemapPath, Error: err.Error()})
		}
		return
	}
	pattern := regexp.MustCompile(`(?s)\s*<url>\s*<loc>[^<]*` + regexp.QuoteMeta(slug) + `[^<]*</loc>.*?</url>`)
	updated := pattern.ReplaceAllString(file.Content, "")
	if updated == file.Content {
		return
	}
	msg := fmt.Sprintf("Dashboard: remove %s from %s", slug, SitemapPath)
	if err := s.store.PutFile(ctx, SitemapPath, updated, file.SHA, msg); err != nil {
		res.Errors = append(res.Errors, DeleteError{Path: SitemapPath, Error: err.Error()})
		return
	}
	res.Deleted = append(res.Deleted, SitemapPath+" (URL removed)")
}
