package content

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// siteLaunchDate anchors the publishing ramp computed by Stats.
const siteLaunchDate = "2026-02-22"

var blogPagePattern = regexp.MustCompile(`^blog(-\d+)?\.html$`)

// keywordLines returns the usable lines of keywords.txt (blank lines and
// comments skipped).
func keywordLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// loadUsedTopics parses data/used_topics.json (kind -> consumed values).
// A missing or malformed document behaves as empty.
func (s *Service) loadUsedTopics(ctx context.Context) map[string][]string {
	topics := map[string][]string{}
	if file, ok, _ := s.store.GetFile(ctx, UsedTopicsPath); ok {
		_ = json.Unmarshal([]byte(file.Content), &topics)
	}
	return topics
}

// Stats aggregates collection sizes, category spread, topic consumption and
// the current publishing schedule.
func (s *Service) Stats(ctx context.Context) (*StatsResult, error) {
	c, err := s.listCollections(ctx)
	if err != nil {
		return nil, err
	}

	doc, _, _, err := s.loadIndex(ctx, ArticleIndexPath)
	if err != nil {
		return nil, err
	}
	categories := map[string]int{}
	for _, rec := range doc.Articles {
		cat := rec.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		categories[cat]++
	}

	topics := s.loadUsedTopics(ctx)
	totalKeywords := 0
	if file, ok, _ := s.store.GetFile(ctx, KeywordsPath); ok {
		totalKeywords = len(keywordLines(file.Content))
	}

	rootEntries, err := s.store.ListDir(ctx, "")
	if err != nil {
		return nil, err
	}
	blogPages := []string{}
	for _, e := range rootEntries {
		if blogPagePattern.MatchString(e.Name) {
			blogPages = append(blogPages, e.Name)
		}
	}

	posts := 0
	for _, e := range c.posts {
		if strings.HasSuffix(e.Name, ".json") {
			posts++
		}
	}
	instagram := 0
	for _, e := range c.instagram {
		if strings.HasSuffix(e.Name, ".jpg") || strings.HasSuffix(e.Name, ".png") {
			instagram++
		}
	}

	return &StatsResult{
		Articles:   len(c.pages),
		Posts:      posts,
		Images:     len(c.images),
		Instagram:  instagram,
		Categories: categories,
		BlogPages:  blogPages,
		Topics: map[string]TopicUsage{
			"keyword": {Used: len(topics["keyword"]), Total: totalKeywords},
			"product": {Used: len(topics["product"])},
			"freebie": {Used: len(topics["freebie"])},
		},
		Schedule: currentSchedule(time.Now()),
	}, nil
}

// currentSchedule derives the week number and per-day article target from
// the launch date. The ramp steps at weeks 4, 7 and 10.
func currentSchedule(now time.Time) Schedule {
	launch, _ := time.Parse("2006-01-02", siteLaunchDate)
	week := int(now.Sub(launch)/(7*24*time.Hour)) + 1
	if week < 1 {
		week = 1
	}
	perDay := 3
	switch {
	case week >= 10:
		perDay = 6
	case week >= 7:
		perDay = 5
	case week >= 4:
		perDay = 4
	}
	return Schedule{Week: week, ArticlesPerDay: perDay, LaunchDate: siteLaunchDate}
}

var (
	tptProductsPattern = regexp.MustCompile(`(?s)window\.tptProducts\s*=\s*(\[.+?\]);`)
	freebieKeyPattern  = regexp.MustCompile(`"([^"]+)"\s*:`)
)

// Topics reports consumed versus remaining generation topics across the
// three sources: the keyword list, the product catalog script and the
// freebie link script. Parse failures in the scripts degrade to empty lists.
func (s *Service) Topics(ctx context.Context) (*TopicsResult, error) {
	topics := s.loadUsedTopics(ctx)

	keywordsRaw := ""
	var allKeywords []string
	if file, ok, _ := s.store.GetFile(ctx, KeywordsPath); ok {
		keywordsRaw = file.Content
		allKeywords = keywordLines(file.Content)
	}

	var allProducts []string
	if file, ok, _ := s.store.GetFile(ctx, ProductsPath); ok {
		if m := tptProductsPattern.FindStringSubmatch(file.Content); m != nil {
			var rows [][]any
			if err := json.Unmarshal([]byte(m[1]), &rows); err == nil {
				for _, row := range rows {
					if len(row) > 0 {
						if name, ok := row[0].(string); ok {
							allProducts = append(allProducts, name)
						}
					}
				}
			}
		}
	}

	var allFreebies []string
	if file, ok, _ := s.store.GetFile(ctx, FreebieLinksPath); ok {
		for _, m := range freebieKeyPattern.FindAllStringSubmatch(file.Content, -1) {
			allFreebies = append(allFreebies, strings.TrimSpace(m[1]))
		}
	}

	remaining := func(all []string, used []string) []string {
		usedSet := make(map[string]bool, len(used))
		for _, u := range used {
			usedSet[u] = true
		}
		out := []string{}
		for _, v := range all {
			if !usedSet[v] {
				out = append(out, v)
			}
		}
		return out
	}

	return &TopicsResult{
		Used:              topics,
		AllKeywords:       allKeywords,
		KeywordsRaw:       keywordsRaw,
		RemainingKeywords: remaining(allKeywords, topics["keyword"]),
		AllProducts:       allProducts,
		RemainingProducts: remaining(allProducts, topics["product"]),
		AllFreebies:       allFreebies,
		RemainingFreebies: remaining(allFreebies, topics["freebie"]),
	}, nil
}

// SaveKeywords replaces data/keywords.txt, re-fetching the current sha first
// so a concurrent writer surfaces as a conflict instead of a lost update.
func (s *Service) SaveKeywords(ctx context.Context, text string) (*SaveKeywordsResult, error) {
	sha := ""
	if file, ok, _ := s.store.GetFile(ctx, KeywordsPath); ok {
		sha = file.SHA
	}
	if err := s.store.PutFile(ctx, KeywordsPath, text, sha, "Update keywords from admin dashboard"); err != nil {
		return nil, err
	}
	n := len(keywordLines(text))
	return &SaveKeywordsResult{Saved: n, Message: fmt.Sprintf("%d keywords saved", n)}, nil
}
