// Package seo implements the deep content scan and the automatic SEO fixer.
// Pages are self-generated and structurally uniform, so both work by pattern
// matching rather than full markup parsing; the patterns define the
// observable scoring behaviour and must not be "improved" silently.
package seo

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/littlesmartgenius/sitekeeper/internal/content"
	"github.com/littlesmartgenius/sitekeeper/internal/github"
)

// scanLimit caps how many pages one deep-scan call inspects. Inherited from
// the serverless request-time budget.
const scanLimit = 15

// Store is the read slice of the content store the scanner needs.
type Store interface {
	GetFile(ctx context.Context, path string) (github.File, bool, error)
	ListDir(ctx context.Context, dir string) ([]github.Entry, error)
	PutFile(ctx context.Context, path, content, sha, message string) error
}

// Scanner fetches pages and scores them.
type Scanner struct {
	store    Store
	siteURL  string
	siteName string
}

// NewScanner creates a scanner. siteName is the brand suffix the fixer
// maintains in page titles.
func NewScanner(store Store, siteURL, siteName string) *Scanner {
	return &Scanner{store: store, siteURL: siteURL, siteName: siteName}
}

// Scan runs a deep scan over one page (slug given) or over the first
// scanLimit pages. Pages fetch sequentially; each failure is recorded
// per-page and never aborts the batch.
func (s *Scanner) Scan(ctx context.Context, slug string) (*ScanReport, error) {
	var pages, images []github.Entry
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { pages, err = s.store.ListDir(gCtx, content.PagesDir); return })
	g.Go(func() (err error) { images, err = s.store.ListDir(gCtx, content.ImagesDir); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	imageNames := make(map[string]bool, len(images))
	for _, e := range images {
		imageNames[e.Name] = true
	}

	var selected []github.Entry
	for _, e := range pages {
		if slug != "" {
			if e.Name == slug+".html" {
				selected = append(selected, e)
			}
			continue
		}
		if strings.HasSuffix(e.Name, ".html") {
			selected = append(selected, e)
		}
	}
	if len(selected) > scanLimit {
		selected = selected[:scanLimit]
	}

	report := &ScanReport{
		Scanned:        len(selected),
		TotalAvailable: len(selected),
		Articles:       []PageScan{},
	}

	seoSum, scored := 0, 0
	for _, e := range selected {
		pageSlug := content.PageSlug(e.Name)
		file, ok, err := s.store.GetFile(ctx, content.PagesDir+"/"+e.Name)
		if err != nil || !ok {
			report.Articles = append(report.Articles, PageScan{Slug: pageSlug, Error: "could not fetch page content"})
			continue
		}

		scan := scanPage(pageSlug, file.Content, imageNames)
		scan.ViewURL = fmt.Sprintf("%s/%s/%s.html", s.siteURL, content.PagesDir, pageSlug)
		report.Articles = append(report.Articles, scan)

		seoSum += scan.SEO.Score
		scored++
		report.TotalMissingImages += scan.Images.MissingCount
		if scan.Images.Total == 0 {
			report.ArticlesWithNoImages++
		}
	}
	if scored > 0 {
		report.AvgSeoScore = (seoSum + scored/2) / scored
	}
	return report, nil
}

// scanPage assesses one page's markup. Pure function of the raw content and
// the known image names.
func scanPage(slug, html string, imageNames map[string]bool) PageScan {
	imgReport := inspectImages(html, imageNames)

	title, hasTitle := firstGroup(titlePattern, html)
	metaDesc, hasMetaDesc := firstGroup(metaDescPattern, html)
	_, hasOgTitle := firstGroup(ogTitlePattern, html)
	_, hasOgDesc := firstGroup(ogDescPattern, html)
	_, hasOgImage := firstGroup(ogImagePattern, html)
	_, hasCanonical := firstGroup(canonicalPattern, html)
	h1Count := len(h1Pattern.FindAllString(html, -1))
	h2Count := len(h2Pattern.FindAllString(html, -1))
	altMissing := countImagesWithoutAlt(html)
	wordCount := countWords(html)

	score := 100
	var issues []string
	deduct := func(weight int, issue string) {
		score -= weight
		issues = append(issues, issue)
	}

	if !hasTitle {
		deduct(15, "no <title> tag")
	} else {
		if len(title) < 30 {
			deduct(5, fmt.Sprintf("title too short (%d chars)", len(title)))
		}
		if len(title) > 65 {
			deduct(5, fmt.Sprintf("title too long (%d chars)", len(title)))
		}
	}
	if !hasMetaDesc {
		deduct(15, "no meta description")
	} else {
		if len(metaDesc) < 110 {
			deduct(5, fmt.Sprintf("meta description too short (%d chars)", len(metaDesc)))
		}
		if len(metaDesc) > 165 {
			deduct(5, fmt.Sprintf("meta description too long (%d chars)", len(metaDesc)))
		}
	}
	if h1Count == 0 {
		deduct(15, "no H1")
	}
	if h1Count > 1 {
		deduct(5, fmt.Sprintf("%d H1 tags (1 expected)", h1Count))
	}
	if h2Count == 0 {
		deduct(5, "no H2")
	}
	if !hasOgTitle {
		deduct(3, "no og:title")
	}
	if !hasOgDesc {
		deduct(3, "no og:description")
	}
	if !hasOgImage {
		deduct(3, "no og:image")
	}
	if !hasCanonical {
		deduct(3, "no canonical URL")
	}
	if imgReport.Total == 0 {
		deduct(10, "no images")
	}
	if altMissing > 0 {
		w := altMissing * 2
		if w > 10 {
			w = 10
		}
		deduct(w, fmt.Sprintf("%d images without alt text", altMissing))
	}
	if wordCount < 500 {
		deduct(10, fmt.Sprintf("thin content (%d words)", wordCount))
	}
	if wordCount < 300 {
		deduct(5, "very thin content")
	}
	if imgReport.MissingCount > 0 {
		deduct(imgReport.MissingCount*5, fmt.Sprintf("%d unresolved images", imgReport.MissingCount))
	}
	if score < 0 {
		score = 0
	}

	metrics := &Metrics{
		Score:          score,
		Title:          title,
		TitleLength:    len(title),
		MetaDescLength: len(metaDesc),
		H1Count:        h1Count,
		H2Count:        h2Count,
		HasOgTags:      hasOgTitle && hasOgDesc && hasOgImage,
		HasCanonical:   hasCanonical,
		ImgCount:       imgReport.Total,
		AltMissing:     altMissing,
		WordCount:      wordCount,
		Issues:         issues,
	}
	if len(metaDesc) > 160 {
		metrics.MetaDescription = metaDesc[:160]
	} else {
		metrics.MetaDescription = metaDesc
	}

	return PageScan{
		Slug:   slug,
		Images: &imgReport,
		SEO:    metrics,
		Links:  inspectLinks(html),
	}
}

// inspectImages resolves each <img src> against the known asset names.
// External and embedded URIs always pass.
func inspectImages(html string, imageNames map[string]bool) ImageReport {
	report := ImageReport{Missing: []ImageRef{}, Details: []ImageRef{}}
	for _, m := range imgSrcPattern.FindAllStringSubmatch(html, -1) {
		src := m[1]
		name := src
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		if i := strings.Index(name, "?"); i >= 0 {
			name = name[:i]
		}
		external := strings.HasPrefix(src, "http")
		dataURI := strings.HasPrefix(src, "data:")
		exists := external || dataURI || imageNames[name] ||
			(strings.HasPrefix(src, "/images/") && imageNames[strings.TrimPrefix(src, "/images/")])

		ref := ImageRef{Src: truncate(src, 120), Filename: name, Exists: exists, External: external}
		report.Details = append(report.Details, ref)
		report.Total++
		if !exists && !external {
			report.Missing = append(report.Missing, ref)
		}
	}
	report.MissingCount = len(report.Missing)
	return report
}

// inspectLinks collects internal link targets, detailing the first 20.
func inspectLinks(html string) *LinkReport {
	report := &LinkReport{Details: []string{}}
	for _, m := range linkHrefPattern.FindAllStringSubmatch(html, -1) {
		href := m[1]
		if strings.HasPrefix(href, "http") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
			continue
		}
		report.Internal++
		if len(report.Details) < 20 {
			report.Details = append(report.Details, href)
		}
	}
	return report
}

// countImagesWithoutAlt counts <img> tags carrying no alt attribute.
func countImagesWithoutAlt(html string) int {
	missing := 0
	for _, tag := range imgTagPattern.FindAllString(html, -1) {
		if !altAttrPattern.MatchString(tag) {
			missing++
		}
	}
	return missing
}

// countWords strips scripts, styles and tags, then counts words longer than
// one character.
func countWords(html string) int {
	text := scriptPattern.ReplaceAllString(html, "")
	text = stylePattern.ReplaceAllString(text, "")
	text = tagPattern.ReplaceAllString(text, " ")
	count := 0
	for _, w := range strings.Fields(text) {
		if len(w) > 1 {
			count++
		}
	}
	return count
}

func firstGroup(re *regexp.Regexp, s string) (string, bool) {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
