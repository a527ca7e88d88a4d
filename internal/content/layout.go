// Package content implements the site's content operations over the remote
// store: article listing, cascade delete, stats, topic tracking and the
// social push. The store owns all durable state; every operation re-derives
// its view from live listings on each call.
package content

import (
	"context"
	"regexp"
	"strings"

	"github.com/littlesmartgenius/sitekeeper/internal/github"
)

// Repository layout. Index documents live at the root, generated artifacts
// in fixed directories.
const (
	ArticleIndexPath = "articles.json"
	SearchIndexPath  = "search_index.json"
	SitemapPath      = "sitemap.xml"
	UsedTopicsPath   = "data/used_topics.json"
	KeywordsPath     = "data/keywords.txt"
	ProductsPath     = "products_tpt.js"
	FreebieLinksPath = "download_links.js"

	PagesDir     = "articles"
	PostsDir     = "posts"
	ImagesDir    = "images"
	InstagramDir = "instagram"
)

// Store is the subset of the content store these operations need.
type Store interface {
	GetFile(ctx context.Context, path string) (github.File, bool, error)
	ListDir(ctx context.Context, dir string) ([]github.Entry, error)
	PutFile(ctx context.Context, path, content, sha, message string) error
	DeleteFile(ctx context.Context, path, sha, message string) error
	RawContentURL(path string) string
}

var postNamePattern = regexp.MustCompile(`^(.+)-\d+\.json$`)

// PageSlug derives the slug from a page filename (drop the .html extension).
func PageSlug(name string) string {
	return strings.TrimSuffix(name, ".html")
}

// PostSlug derives the slug from a post metadata filename. Post files are
// numbered ("<slug>-1.json"); unnumbered files fall back to the stem.
func PostSlug(name string) string {
	if m := postNamePattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return strings.TrimSuffix(name, ".json")
}

// BelongsTo reports whether an asset filename is associated with slug.
// Association is a plain prefix match, so a slug that prefixes another
// ("cat" vs "cat-2") also matches the longer slug's assets. That is the
// store's established grouping convention; callers must not tighten it.
func BelongsTo(name, slug string) bool {
	return strings.HasPrefix(name, slug)
}

// IsCover reports whether an image filename is a cover for its slug.
func IsCover(name string) bool {
	return strings.Contains(name, "-cover")
}

// IsBodyImage reports whether an image filename is an in-article image.
func IsBodyImage(name string) bool {
	return strings.Contains(name, "-img")
}
