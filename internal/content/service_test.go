package content

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/littlesmartgenius/sitekeeper/internal/github"
)

// fakeStore is an in-memory content store keyed by path. SHAs are synthetic
// but stable per write, which is enough for the conflict-handling paths.
type fakeStore struct {
	files   map[string]string
	writes  int
	deleted []string
	failOn  map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: map[string]string{}, failOn: map[string]error{}}
}

func (f *fakeStore) sha(path string) string {
	return fmt.Sprintf("sha-%s-%d", path, len(f.files[path]))
}

func (f *fakeStore) GetFile(_ context.Context, path string) (github.File, bool, error) {
	content, ok := f.files[path]
	if !ok {
		return github.File{}, false, nil
	}
	return github.File{Path: path, Content: content, SHA: f.sha(path), Size: int64(len(content))}, true, nil
}

func (f *fakeStore) ListDir(_ context.Context, dir string) ([]github.Entry, error) {
	prefix := dir + "/"
	if dir == "" {
		prefix = ""
	}
	var entries []github.Entry
	for path := range f.files {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		name := strings.TrimPrefix(path, prefix)
		if strings.Contains(name, "/") {
			continue
		}
		entries = append(entries, github.Entry{Name: name, Path: path, SHA: f.sha(path), Size: int64(len(f.files[path]))})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (f *fakeStore) PutFile(_ context.Context, path, content, _, _ string) error {
	if err := f.failOn[path]; err != nil {
		return err
	}
	f.files[path] = content
	f.writes++
	return nil
}

func (f *fakeStore) DeleteFile(_ context.Context, path, _, _ string) error {
	if err := f.failOn[path]; err != nil {
		return err
	}
	delete(f.files, path)
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeStore) RawContentURL(path string) string {
	return "https://raw.example.com/site/main/" + path
}

func indexJSON(t *testing.T, slugs ...string) string {
	t.Helper()
	doc := map[string]any{"total_articles": len(slugs)}
	var records []map[string]any
	for _, s := range slugs {
		records = append(records, map[string]any{"slug": s, "title": "The " + s + " printable", "category": "Printables"})
	}
	doc["articles"] = records
	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestListArticlesEnrichment(t *testing.T) {
	store := newFakeStore()
	store.files[ArticleIndexPath] = indexJSON(t, "unicorn-maze", "dino-dots", "ghost-town")
	// unicorn-maze is complete.
	store.files["articles/unicorn-maze.html"] = "<html></html>"
	store.files["posts/unicorn-maze-1.json"] = "{}"
	store.files["images/unicorn-maze-cover.jpg"] = "x"
	store.files["images/unicorn-maze-img1.png"] = "x"
	store.files["instagram/unicorn-maze.jpg"] = "x"
	// dino-dots has a page and cover but no post.
	store.files["articles/dino-dots.html"] = "<html></html>"
	store.files["images/dino-dots-cover.jpg"] = "x"
	// ghost-town has no page at all.

	svc := NewService(store, "https://example.com", "")
	list, err := svc.ListArticles(context.Background())
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if list.Total != 3 {
		t.Fatalf("total = %d, want 3", list.Total)
	}

	bySlug := map[string]ArticleSummary{}
	for _, a := range list.Articles {
		bySlug[a.Slug] = a
	}

	u := bySlug["unicorn-maze"]
	if u.Health != "ok" {
		t.Errorf("unicorn-maze health = %q, want ok", u.Health)
	}
	if !u.HasPage || !u.HasPost || !u.HasInstagram {
		t.Errorf("unicorn-maze presence flags = %v %v %v", u.HasPage, u.HasPost, u.HasInstagram)
	}
	if u.CoverCount != 1 || u.ContentImgCount != 1 || u.ImageCount != 2 {
		t.Errorf("unicorn-maze image counts = %d/%d/%d", u.CoverCount, u.ContentImgCount, u.ImageCount)
	}
	if u.ViewURL != "https://example.com/articles/unicorn-maze.html" {
		t.Errorf("viewUrl = %q", u.ViewURL)
	}

	if h := bySlug["dino-dots"].Health; h != "warning" {
		t.Errorf("dino-dots health = %q, want warning", h)
	}
	if h := bySlug["ghost-town"].Health; h != "error" {
		t.Errorf("ghost-town health = %q, want error", h)
	}
}

func TestListArticlesMissingCoverIsError(t *testing.T) {
	store := newFakeStore()
	store.files[ArticleIndexPath] = indexJSON(t, "maze")
	store.files["articles/maze.html"] = "<html></html>"
	store.files["posts/maze-1.json"] = "{}"
	store.files["images/maze-img1.png"] = "x"

	svc := NewService(store, "https://example.com", "")
	list, err := svc.ListArticles(context.Background())
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if list.Articles[0].Health != "error" {
		t.Errorf("health = %q, want error", list.Articles[0].Health)
	}
}

func TestListArticlesCoverNeedsDash(t *testing.T) {
	store := newFakeStore()
	store.files[ArticleIndexPath] = indexJSON(t, "maze")
	store.files["articles/maze.html"] = "<html></html>"
	store.files["posts/maze-1.json"] = "{}"
	// "discovery" contains "cover" but not "-cover"; it is not a cover image.
	store.files["images/maze-discovery.jpg"] = "x"

	svc := NewService(store, "https://example.com", "")
	list, err := svc.ListArticles(context.Background())
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if list.Articles[0].CoverCount != 0 {
		t.Errorf("coverCount = %d, want 0", list.Articles[0].CoverCount)
	}
	if list.Articles[0].Health != "error" {
		t.Errorf("health = %q, want error", list.Articles[0].Health)
	}
}

func TestListArticlesAbsentIndex(t *testing.T) {
	svc := NewService(newFakeStore(), "https://example.com", "")
	list, err := svc.ListArticles(context.Background())
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(list.Articles) != 0 || list.Total != 0 {
		t.Errorf("expected empty list, got %+v", list)
	}
}

func TestArticleSummaryJSONShape(t *testing.T) {
	sum := ArticleSummary{
		IndexRecord: IndexRecord{Slug: "maze", Title: "Maze"},
		HasPage:     true,
		Health:      "ok",
		ViewURL:     "https://example.com/articles/maze.html",
	}
	out, err := json.Marshal(sum)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"slug", "title", "hasHtml", "hasPost", "igCount", "health", "viewUrl"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("marshalled summary missing %q", key)
		}
	}
}

func TestCascadeDelete(t *testing.T) {
	store := newFakeStore()
	store.files[ArticleIndexPath] = indexJSON(t, "maze", "dots")
	store.files[SearchIndexPath] = indexJSON(t, "maze", "dots")
	store.files[SitemapPath] = `<?xml version="1.0"?>
<urlset>
  <url>
    <loc>https://example.com/articles/maze.html</loc>
    <lastmod>2026-03-01</lastmod>
  </url>
  <url>
    <loc>https://example.com/articles/dots.html</loc>
  </url>
</urlset>`
	store.files["articles/maze.html"] = "<html></html>"
	store.files["posts/maze-1.json"] = "{}"
	store.files["images/maze-cover.jpg"] = "x"
	store.files["instagram/maze.jpg"] = "x"
	store.files["articles/dots.html"] = "<html></html>"

	svc := NewService(store, "https://example.com", "")
	res, err := svc.CascadeDelete(context.Background(), "maze")
	if err != nil {
		t.Fatalf("CascadeDelete: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("errors = %+v", res.Errors)
	}
	if res.TotalDeleted != len(res.Deleted) {
		t.Errorf("totalDeleted = %d, deleted = %d", res.TotalDeleted, len(res.Deleted))
	}
	for _, path := range []string{"articles/maze.html", "posts/maze-1.json", "images/maze-cover.jpg", "instagram/maze.jpg"} {
		if _, ok := store.files[path]; ok {
			t.Errorf("%s still present", path)
		}
	}
	if _, ok := store.files["articles/dots.html"]; !ok {
		t.Error("dots.html removed, should survive")
	}

	var doc IndexDocument
	if err := json.Unmarshal([]byte(store.files[ArticleIndexPath]), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.TotalArticles != 1 || len(doc.Articles) != 1 || doc.Articles[0].Slug != "dots" {
		t.Errorf("index after delete = %+v", doc)
	}
	if strings.Contains(store.files[SitemapPath], "maze") {
		t.Error("sitemap still references maze")
	}
	if !strings.Contains(store.files[SitemapPath], "dots") {
		t.Error("sitemap lost the dots entry")
	}
}

// Asset grouping is prefix-based, so deleting a slug that prefixes another
// sweeps the longer slug's loose assets too. Only the exact page name is
// spared. This mirrors the store's grouping convention.
func TestCascadeDeletePrefixSweep(t *testing.T) {
	store := newFakeStore()
	store.files[ArticleIndexPath] = indexJSON(t, "cat", "cat-2")
	store.files["articles/cat.html"] = "<html></html>"
	store.files["articles/cat-2.html"] = "<html></html>"
	store.files["posts/cat-1.json"] = "{}"
	store.files["posts/cat-2-1.json"] = "{}"
	store.files["images/cat-cover.jpg"] = "x"
	store.files["images/cat-2-cover.jpg"] = "x"

	svc := NewService(store, "https://example.com", "")
	res, err := svc.CascadeDelete(context.Background(), "cat")
	if err != nil {
		t.Fatalf("CascadeDelete: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("errors = %+v", res.Errors)
	}

	if _, ok := store.files["articles/cat-2.html"]; !ok {
		t.Error("cat-2.html removed, pages match exactly")
	}
	if _, ok := store.files["posts/cat-2-1.json"]; ok {
		t.Error("cat-2 post survived, prefix sweep should take it")
	}
	if _, ok := store.files["images/cat-2-cover.jpg"]; ok {
		t.Error("cat-2 cover survived, prefix sweep should take it")
	}
}

func TestCascadeDeleteAccumulatesErrors(t *testing.T) {
	store := newFakeStore()
	store.files[ArticleIndexPath] = indexJSON(t, "maze")
	store.files["articles/maze.html"] = "<html></html>"
	store.files["images/maze-cover.jpg"] = "x"
	store.failOn["images/maze-cover.jpg"] = fmt.Errorf("boom")

	svc := NewService(store, "https://example.com", "")
	res, err := svc.CascadeDelete(context.Background(), "maze")
	if err != nil {
		t.Fatalf("CascadeDelete: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Path != "images/maze-cover.jpg" {
		t.Fatalf("errors = %+v", res.Errors)
	}
	// The page delete and index rewrites still happened.
	if _, ok := store.files["articles/maze.html"]; ok {
		t.Error("page survived despite unrelated failure")
	}
	var doc IndexDocument
	if err := json.Unmarshal([]byte(store.files[ArticleIndexPath]), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Articles) != 0 {
		t.Errorf("index still lists maze: %+v", doc.Articles)
	}
}

func TestCascadeDeleteEmptySlug(t *testing.T) {
	svc := NewService(newFakeStore(), "https://example.com", "")
	if _, err := svc.CascadeDelete(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty slug")
	}
}

func TestIndexRecordPreservesUnknownFields(t *testing.T) {
	in := `{"slug":"maze","title":"Maze","readingTime":4,"tags":["kids","fun"]}`
	var rec IndexRecord
	if err := json.Unmarshal([]byte(in), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Slug != "maze" || rec.Title != "Maze" {
		t.Fatalf("parsed record = %+v", rec)
	}
	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatal(err)
	}
	if fields["readingTime"] != float64(4) {
		t.Errorf("readingTime lost: %v", fields)
	}
	if _, ok := fields["tags"]; !ok {
		t.Errorf("tags lost: %v", fields)
	}
}
