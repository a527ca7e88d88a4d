package health

import (
	"context"
	"fmt"
	"testing"

	"github.com/littlesmartgenius/sitekeeper/internal/content"
	"github.com/littlesmartgenius/sitekeeper/internal/github"
)

// completeSite builds a snapshot with one fully consistent article.
func completeSite(slug string) Snapshot {
	return Snapshot{
		Pages: []github.Entry{{Name: slug + ".html"}},
		Posts: []github.Entry{{Name: slug + "-1.json"}},
		Images: []github.Entry{
			{Name: slug + "-cover.jpg"},
			{Name: slug + "-img1.png"},
			{Name: slug + "-img2.png"},
			{Name: slug + "-img3.png"},
			{Name: slug + "-img4.png"},
		},
		Instagram: []github.Entry{{Name: slug + ".jpg"}},
		Index: content.IndexDocument{
			Articles:      []content.IndexRecord{{Slug: slug}},
			TotalArticles: 1,
		},
		Sitemap:    fmt.Sprintf("<urlset><url><loc>https://example.com/articles/%s.html</loc></url></urlset>", slug),
		HasSitemap: true,
	}
}

func findIssues(report Report, category string) []Issue {
	var out []Issue
	for _, issue := range report.Issues {
		if issue.Category == category {
			out = append(out, issue)
		}
	}
	return out
}

func TestEvaluatePerfectSite(t *testing.T) {
	report := Evaluate(completeSite("maze"))
	if report.Score != 100 {
		t.Errorf("score = %d, want 100; issues = %+v", report.Score, report.Issues)
	}
	if len(report.Issues) != 0 {
		t.Errorf("issues = %+v, want none", report.Issues)
	}
	if report.TotalArticles != 1 || report.TotalPosts != 1 || report.TotalImages != 5 || report.TotalInstagram != 1 {
		t.Errorf("totals = %d/%d/%d/%d", report.TotalArticles, report.TotalPosts, report.TotalImages, report.TotalInstagram)
	}
}

func TestEvaluateMissingCover(t *testing.T) {
	snap := completeSite("maze")
	// Drop the cover, keep the four body images.
	snap.Images = snap.Images[1:]

	report := Evaluate(snap)
	if report.Score != 95 {
		t.Errorf("score = %d, want 95", report.Score)
	}
	img := findIssues(report, "image")
	if len(img) != 1 || img[0].Severity != SeverityError {
		t.Fatalf("image issues = %+v", img)
	}
}

func TestEvaluateAcceptsDashlessCover(t *testing.T) {
	snap := completeSite("maze")
	snap.Images[0].Name = "mazecover.jpg"

	report := Evaluate(snap)
	if report.Score != 100 {
		t.Errorf("score = %d, want 100", report.Score)
	}
	if img := findIssues(report, "image"); len(img) != 0 {
		t.Errorf("image issues = %+v", img)
	}
}

func TestEvaluateWeights(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Snapshot)
		weight int
		cat    string
	}{
		{"page without post", func(s *Snapshot) { s.Posts = nil }, 2, "orphan"},
		{"post without page", func(s *Snapshot) {
			s.Posts = append(s.Posts, github.Entry{Name: "ghost-1.json"})
		}, 3, "build"},
		{"page not indexed", func(s *Snapshot) { s.Index.Articles = nil }, 2, "index"},
		{"indexed without page", func(s *Snapshot) {
			s.Index.Articles = append(s.Index.Articles, content.IndexRecord{Slug: "ghost"})
		}, 3, "index"},
		{"missing from sitemap", func(s *Snapshot) { s.Sitemap = "<urlset></urlset>" }, 1, "sitemap"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := completeSite("maze")
			tc.mutate(&snap)
			report := Evaluate(snap)
			if report.Score != 100-tc.weight {
				t.Errorf("score = %d, want %d; issues = %+v", report.Score, 100-tc.weight, report.Issues)
			}
			if got := findIssues(report, tc.cat); len(got) == 0 {
				t.Errorf("no %s issue: %+v", tc.cat, report.Issues)
			}
		})
	}
}

func TestEvaluateBodyImageShortfall(t *testing.T) {
	snap := completeSite("maze")
	// Cover plus only two body images.
	snap.Images = snap.Images[:3]

	report := Evaluate(snap)
	if report.Score != 99 {
		t.Errorf("score = %d, want 99", report.Score)
	}
}

func TestEvaluateInstagramIsInformational(t *testing.T) {
	snap := completeSite("maze")
	snap.Instagram = nil

	report := Evaluate(snap)
	if report.Score != 100 {
		t.Errorf("score = %d, info issues must not cost points", report.Score)
	}
	ig := findIssues(report, "instagram")
	if len(ig) != 1 || ig[0].Severity != SeverityInfo {
		t.Fatalf("instagram issues = %+v", ig)
	}
	if report.IssueCount != 1 {
		t.Errorf("issueCount = %d, want 1", report.IssueCount)
	}
}

func TestEvaluateNoSitemapSkipsSitemapChecks(t *testing.T) {
	snap := completeSite("maze")
	snap.Sitemap = ""
	snap.HasSitemap = false

	report := Evaluate(snap)
	if got := findIssues(report, "sitemap"); len(got) != 0 {
		t.Errorf("sitemap issues without a sitemap: %+v", got)
	}
}

func TestEvaluateScoreFloor(t *testing.T) {
	snap := Snapshot{}
	for i := 0; i < 30; i++ {
		snap.Pages = append(snap.Pages, github.Entry{Name: fmt.Sprintf("page-%02d.html", i)})
	}
	report := Evaluate(snap)
	if report.Score != 0 {
		t.Errorf("score = %d, want floor at 0", report.Score)
	}
}

type fakeStore struct {
	files map[string]string
}

func (f *fakeStore) GetFile(_ context.Context, path string) (github.File, bool, error) {
	content, ok := f.files[path]
	if !ok {
		return github.File{}, false, nil
	}
	return github.File{Path: path, Content: content}, true, nil
}

func (f *fakeStore) ListDir(_ context.Context, dir string) ([]github.Entry, error) {
	// Directory entries are encoded as "<dir>/<name>" keys.
	var entries []github.Entry
	for path := range f.files {
		if len(path) > len(dir)+1 && path[:len(dir)+1] == dir+"/" {
			entries = append(entries, github.Entry{Name: path[len(dir)+1:], Path: path})
		}
	}
	return entries, nil
}

func TestCheckEndToEnd(t *testing.T) {
	store := &fakeStore{files: map[string]string{
		"articles/maze.html":    "x",
		"posts/maze-1.json":     "{}",
		"images/maze-cover.jpg": "x",
		"images/maze-img1.png":  "x",
		"images/maze-img2.png":  "x",
		"images/maze-img3.png":  "x",
		"images/maze-img4.png":  "x",
		"instagram/maze.jpg":    "x",
		content.ArticleIndexPath: `{"articles":[{"slug":"maze"}],"total_articles":1}`,
		content.SitemapPath:      "<urlset><url><loc>https://example.com/articles/maze.html</loc></url></urlset>",
	}}

	report, err := NewEngine(store).Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if report.Score != 100 || report.IssueCount != 0 {
		t.Errorf("report = %+v", report)
	}
}
