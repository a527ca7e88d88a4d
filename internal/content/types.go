package content

import "encoding/json"

// IndexRecord is one entry of the article index and search index documents,
// keyed by slug with denormalized display fields. Unknown fields are kept
// verbatim so rewrites never lose data other tooling put there.
type IndexRecord struct {
	Slug     string `json:"slug"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
	Date     string `json:"date,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps unrecognized index fields in Extra.
func (r *IndexRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	take := func(key string, dst *string) {
		if raw, ok := fields[key]; ok {
			_ = json.Unmarshal(raw, dst)
			delete(fields, key)
		}
	}
	take("slug", &r.Slug)
	take("title", &r.Title)
	take("category", &r.Category)
	take("date", &r.Date)
	if len(fields) > 0 {
		r.Extra = fields
	}
	return nil
}

// MarshalJSON re-emits known fields plus everything preserved in Extra.
func (r IndexRecord) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(r.Extra)+4)
	for k, v := range r.Extra {
		fields[k] = v
	}
	put := func(key, val string) {
		if val != "" {
			b, _ := json.Marshal(val)
			fields[key] = b
		}
	}
	b, _ := json.Marshal(r.Slug)
	fields["slug"] = b
	put("title", r.Title)
	put("category", r.Category)
	put("date", r.Date)
	return json.Marshal(fields)
}

// IndexDocument is the shape shared by articles.json and search_index.json.
type IndexDocument struct {
	Articles      []IndexRecord `json:"articles"`
	TotalArticles int           `json:"total_articles"`
}

// ArticleSummary is an index record enriched with live artifact state.
type ArticleSummary struct {
	IndexRecord
	HasPage         bool   `json:"hasHtml"`
	HasPost         bool   `json:"hasPost"`
	CoverCount      int    `json:"coverCount"`
	ContentImgCount int    `json:"contentImgCount"`
	ImageCount      int    `json:"imageCount"`
	HasInstagram    bool   `json:"hasInstagram"`
	InstagramCount  int    `json:"igCount"`
	Health          string `json:"health"`
	ViewURL         string `json:"viewUrl"`
}

// MarshalJSON flattens the embedded index record and the enrichment fields
// into one object, matching the dashboard's expected shape.
func (a ArticleSummary) MarshalJSON() ([]byte, error) {
	base, err := a.IndexRecord.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	add := func(key string, v any) {
		b, _ := json.Marshal(v)
		fields[key] = b
	}
	add("hasHtml", a.HasPage)
	add("hasPost", a.HasPost)
	add("coverCount", a.CoverCount)
	add("contentImgCount", a.ContentImgCount)
	add("imageCount", a.ImageCount)
	add("hasInstagram", a.HasInstagram)
	add("igCount", a.InstagramCount)
	add("health", a.Health)
	add("viewUrl", a.ViewURL)
	return json.Marshal(fields)
}

// ArticleList is the articles action response.
type ArticleList struct {
	Articles []ArticleSummary `json:"articles"`
	Total    int              `json:"total"`
}

// DeleteError records one failed sub-step of a cascade delete.
type DeleteError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// DeleteResult enumerates exactly what a cascade delete removed and what
// failed, so the operator can retry the leftovers by hand.
type DeleteResult struct {
	Slug         string        `json:"slug"`
	Deleted      []string      `json:"deleted"`
	Errors       []DeleteError `json:"errors"`
	TotalDeleted int           `json:"totalDeleted"`
}

// TopicUsage counts consumed topics of one kind.
type TopicUsage struct {
	Used  int `json:"used"`
	Total int `json:"total,omitempty"`
}

// Schedule describes the publishing ramp derived from the launch date.
type Schedule struct {
	Week           int    `json:"week"`
	ArticlesPerDay int    `json:"articlesPerDay"`
	LaunchDate     string `json:"launchDate"`
}

// StatsResult is the stats action response.
type StatsResult struct {
	Articles   int                   `json:"articles"`
	Posts      int                   `json:"posts"`
	Images     int                   `json:"images"`
	Instagram  int                   `json:"instagram"`
	Categories map[string]int        `json:"categories"`
	BlogPages  []string              `json:"blogPages"`
	Topics     map[string]TopicUsage `json:"topics"`
	Schedule   Schedule              `json:"schedule"`
}

// TopicsResult is the topics action response.
type TopicsResult struct {
	Used              map[string][]string `json:"used"`
	AllKeywords       []string            `json:"allKeywords"`
	KeywordsRaw       string              `json:"keywordsRaw"`
	RemainingKeywords []string            `json:"remainingKeywords"`
	AllProducts       []string            `json:"allProducts"`
	RemainingProducts []string            `json:"remainingProducts"`
	AllFreebies       []string            `json:"allFreebies"`
	RemainingFreebies []string            `json:"remainingFreebies"`
}

// SaveKeywordsResult reports how many keyword lines were written.
type SaveKeywordsResult struct {
	Saved   int    `json:"saved"`
	Message string `json:"message"`
}

// InstagramPush is the push-instagram action response.
type InstagramPush struct {
	Slug          string `json:"slug"`
	ImageURL      string `json:"imageUrl"`
	Caption       string `json:"caption"`
	Sent          bool   `json:"sent"`
	WebhookStatus int    `json:"webhookStatus,omitempty"`
	Message       string `json:"message"`
}
