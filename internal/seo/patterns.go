package seo

import "regexp"

// The markup patterns. RE2 has no lookahead, so images without alt are
// found by matching whole <img> tags and testing for the attribute.
var (
	imgSrcPattern    = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)
	imgTagPattern    = regexp.MustCompile(`(?i)<img[^>]*>`)
	altAttrPattern   = regexp.MustCompile(`(?i)\balt=`)
	titlePattern     = regexp.MustCompile(`(?i)<title>([^<]*)</title>`)
	metaDescPattern  = regexp.MustCompile(`(?i)<meta\s+name=["']description["']\s+content=["']([^"']*)["']`)
	ogTitlePattern   = regexp.MustCompile(`(?i)<meta\s+property=["']og:title["']\s+content=["']([^"']*)["']`)
	ogDescPattern    = regexp.MustCompile(`(?i)<meta\s+property=["']og:description["']\s+content=["']([^"']*)["']`)
	ogImagePattern   = regexp.MustCompile(`(?i)<meta\s+property=["']og:image["']\s+content=["']([^"']*)["']`)
	canonicalPattern = regexp.MustCompile(`(?i)<link\s+rel=["']canonical["']\s+href=["']([^"']*)["']`)
	h1Pattern        = regexp.MustCompile(`(?is)<h1[^>]*>.*?</h1>`)
	h2Pattern        = regexp.MustCompile(`(?i)<h2[^>]*>`)
	linkHrefPattern  = regexp.MustCompile(`(?i)<a[^>]+href=["']([^"'#][^"']*)["']`)
	scriptPattern    = regexp.MustCompile(`(?is)<script.*?</script>`)
	stylePattern     = regexp.MustCompile(`(?is)<style.*?</style>`)
	tagPattern       = regexp.MustCompile(`<[^>]*>`)
)
