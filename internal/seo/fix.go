package seo

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/littlesmartgenius/sitekeeper/internal/apperr"
	"github.com/littlesmartgenius/sitekeeper/internal/content"
)

var (
	firstParaPattern = regexp.MustCompile(`(?i)<p[^>]*>([^<]{100,})</p>`)
	h1BlockPattern   = regexp.MustCompile(`(?is)<h1([^>]*)>(.*?)</h1>`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

// Fix applies the three mechanical SEO corrections to one page: shorten an
// oversized title (keeping the brand suffix), grow an undersized meta
// description from the first substantial paragraph, and demote surplus H1
// headings to H2. The page is rewritten only when something changed.
func (s *Scanner) Fix(ctx context.Context, slug string) (*FixResult, error) {
	if slug == "" {
		return nil, fmt.Errorf("%w: missing slug", apperr.ErrInvalidRequest)
	}
	path := content.PagesDir + "/" + slug + ".html"
	file, ok, err := s.store.GetFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("page not found: %s: %w", slug, apperr.ErrNotFound)
	}

	fixed := file.Content
	var fixes []string

	if m := titlePattern.FindStringSubmatch(fixed); m != nil && len(m[1]) > 65 {
		oldTitle := m[1]
		suffix := " | " + s.siteName
		newTitle := strings.TrimSuffix(oldTitle, suffix)
		newTitle = strings.TrimRight(newTitle, " ")
		if len(newTitle) > 60 {
			newTitle = newTitle[:57] + "..."
		}
		newTitle += suffix
		if len(newTitle) <= 65 {
			fixed = strings.Replace(fixed, "<title>"+oldTitle+"</title>", "<title>"+newTitle+"</title>", 1)
			fixes = append(fixes, fmt.Sprintf("title: %d to %d chars", len(oldTitle), len(newTitle)))
		}
	}

	if m := metaDescPattern.FindStringSubmatch(fixed); m != nil && len(m[1]) < 110 {
		if p := firstParaPattern.FindStringSubmatch(fixed); p != nil {
			newDesc := strings.TrimSpace(spacePattern.ReplaceAllString(p[1], " "))
			if len(newDesc) > 155 {
				newDesc = newDesc[:152] + "..."
			}
			escaped := strings.ReplaceAll(newDesc, `"`, "&quot;")
			fixed = strings.Replace(fixed, m[0], fmt.Sprintf(`<meta name="description" content="%s"`, escaped), 1)
			fixes = append(fixes, fmt.Sprintf("meta description: %d to %d chars", len(m[1]), len(newDesc)))
		}
	}

	h1Seen := 0
	fixed = h1BlockPattern.ReplaceAllStringFunc(fixed, func(match string) string {
		h1Seen++
		if h1Seen == 1 {
			return match
		}
		m := h1BlockPattern.FindStringSubmatch(match)
		fixes = append(fixes, fmt.Sprintf("H1 #%d demoted to H2: %s", h1Seen, truncate(m[2], 40)))
		return "<h2" + m[1] + ">" + m[2] + "</h2>"
	})

	if len(fixes) == 0 {
		return &FixResult{Slug: slug, Message: "no SEO issues to fix"}, nil
	}

	msg := fmt.Sprintf("SEO fix: %s (%d corrections)", slug, len(fixes))
	if err := s.store.PutFile(ctx, path, fixed, file.SHA, msg); err != nil {
		return nil, err
	}
	return &FixResult{
		Slug:    slug,
		Fixed:   len(fixes),
		Fixes:   fixes,
		Message: fmt.Sprintf("%d SEO issues fixed", len(fixes)),
	}, nil
}
