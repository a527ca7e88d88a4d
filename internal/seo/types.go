package seo

// ImageRef is one image reference found in a page.
type ImageRef struct {
	Src      string `json:"src"`
	Filename string `json:"filename"`
	Exists   bool   `json:"exists"`
	External bool   `json:"external"`
}

// ImageReport summarises a page's image references.
type ImageReport struct {
	Total        int        `json:"total"`
	Missing      []ImageRef `json:"missing"`
	MissingCount int        `json:"missingCount"`
	Details      []ImageRef `json:"details"`
}

// Metrics is a page's SEO assessment.
type Metrics struct {
	Score           int      `json:"score"`
	Title           string   `json:"title,omitempty"`
	TitleLength     int      `json:"titleLength"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	MetaDescLength  int      `json:"metaDescLength"`
	H1Count         int      `json:"h1Count"`
	H2Count         int      `json:"h2Count"`
	HasOgTags       bool     `json:"hasOgTags"`
	HasCanonical    bool     `json:"hasCanonical"`
	ImgCount        int      `json:"imgCount"`
	AltMissing      int      `json:"altMissing"`
	WordCount       int      `json:"wordCount"`
	Issues          []string `json:"issues"`
}

// LinkReport summarises a page's internal links.
type LinkReport struct {
	Internal int      `json:"internal"`
	Details  []string `json:"details"`
}

// PageScan is the per-page deep scan result. Error is set when the page
// content could not be fetched; the batch continues regardless.
type PageScan struct {
	Slug    string       `json:"slug"`
	Error   string       `json:"error,omitempty"`
	Images  *ImageReport `json:"images,omitempty"`
	SEO     *Metrics     `json:"seo,omitempty"`
	Links   *LinkReport  `json:"links,omitempty"`
	ViewURL string       `json:"viewUrl,omitempty"`
}

// ScanReport aggregates a batch of page scans.
type ScanReport struct {
	Scanned              int        `json:"scanned"`
	TotalAvailable       int        `json:"totalAvailable"`
	AvgSeoScore          int        `json:"avgSeoScore"`
	TotalMissingImages   int        `json:"totalMissingImages"`
	ArticlesWithNoImages int        `json:"articlesWithNoImages"`
	Articles             []PageScan `json:"articles"`
}

// FixResult reports the corrections applied by Fix.
type FixResult struct {
	Slug    string   `json:"slug"`
	Fixed   int      `json:"fixed"`
	Fixes   []string `json:"fixes,omitempty"`
	Message string   `json:"message"`
}
