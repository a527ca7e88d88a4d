package github

import "time"

// File is a single file fetched from the content store, with its blob sha
// acting as the optimistic-concurrency token for later writes.
type File struct {
	Path    string
	Content string
	SHA     string
	Size    int64
}

// Entry is one child of a directory listing.
type Entry struct {
	Name string
	Path string
	SHA  string
	Size int64
}

// Release mirrors the provider's release object. The snapshot manager stores
// its metadata blob in Body.
type Release struct {
	ID         int64     `json:"id"`
	TagName    string    `json:"tag_name"`
	Name       string    `json:"name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	ZipballURL string    `json:"zipball_url"`
}

// WorkflowRun mirrors the provider's run object; status and conclusion are
// passed through verbatim, no extra state machine on top.
type WorkflowRun struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	HTMLURL    string    `json:"html_url"`
	RunNumber  int       `json:"run_number"`
}
