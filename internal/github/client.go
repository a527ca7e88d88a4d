// Package github implements the content store client over the GitHub REST
// API. All durable site state (pages, index documents, assets, snapshots)
// lives in a single repository; this client scopes every call to one
// owner/repo and one branch.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/littlesmartgenius/sitekeeper/internal/apperr"
)

// StatusError reports a non-2xx response from the GitHub API.
type StatusError struct {
	Code   int
	Method string
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GitHub API %d on %s %s", e.Code, e.Method, e.Path)
}

// Unwrap maps every API failure onto the shared upstream sentinel.
func (e *StatusError) Unwrap() error { return apperr.ErrUpstream }

const defaultAPIURL = "https://api.github.com"

// Client talks to the GitHub API for a fixed repository and branch.
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
	repo       string // "owner/name"
	branch     string
}

// NewClient creates a content store client. repo is "owner/name"; apiURL may
// be empty for the public API (tests point it at a local server).
func NewClient(apiURL, token, repo, branch string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("github: token is required")
	}
	if !strings.Contains(repo, "/") {
		return nil, fmt.Errorf("github: repo must be owner/name, got %q", repo)
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if branch == "" {
		branch = "main"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		token:      token,
		repo:       repo,
		branch:     branch,
	}, nil
}

// Branch returns the branch all operations are scoped to.
func (c *Client) Branch() string { return c.branch }

// Repo returns the "owner/name" repository identifier.
func (c *Client) Repo() string { return c.repo }

// RawContentURL returns the public raw URL for a file on the fixed branch.
func (c *Client) RawContentURL(path string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s", c.repo, c.branch, path)
}

// ghContent is the contents-API representation of a single file.
type ghContent struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Size    int64  `json:"size"`
	Content string `json:"content"`
}

// GetFile fetches one file from the fixed branch. A missing file (or any
// upstream failure on the read path) is reported as absent rather than an
// error, so callers can treat missing documents as empty ones.
func (c *Client) GetFile(ctx context.Context, path string) (File, bool, error) {
	endpoint := fmt.Sprintf("/repos/%s/contents/%s?ref=%s", c.repo, path, c.branch)
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return File{}, false, err
	}

	var content ghContent
	if err := c.doRequest(req, &content); err != nil {
		return File{}, false, nil
	}
	if content.Content == "" && content.SHA == "" {
		return File{}, false, nil
	}

	// The API wraps base64 payloads at 60 columns.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content.Content, "\n", ""))
	if err != nil {
		return File{}, false, fmt.Errorf("github: decode %s: %w", path, err)
	}
	return File{Path: content.Path, Content: string(raw), SHA: content.SHA, Size: content.Size}, true, nil
}

// ListDir lists the direct children of dir on the fixed branch. A missing
// directory (or any upstream failure) yields an empty listing.
func (c *Client) ListDir(ctx context.Context, dir string) ([]Entry, error) {
	endpoint := fmt.Sprintf("/repos/%s/contents/%s?ref=%s", c.repo, dir, c.branch)
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var items []ghContent
	if err := c.doRequest(req, &items); err != nil {
		return []Entry{}, nil
	}
	entries := make([]Entry, 0, len(items))
	for _, it := range items {
		entries = append(entries, Entry{Name: it.Name, Path: it.Path, SHA: it.SHA, Size: it.Size})
	}
	return entries, nil
}

// PutFile creates or updates a file on the fixed branch. sha must be the
// current blob sha when updating and empty when creating; a stale sha is a
// conflict the caller must surface, not retry.
func (c *Client) PutFile(ctx context.Context, path, content, sha, message string) error {
	body := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
		"branch":  c.branch,
	}
	if sha != "" {
		body["sha"] = sha
	}
	endpoint := fmt.Sprintf("/repos/%s/contents/%s", c.repo, path)
	req, err := c.newRequest(ctx, http.MethodPut, endpoint, body)
	if err != nil {
		return err
	}
	return c.doRequest(req, nil)
}

// DeleteFile removes a file from the fixed branch. sha is required.
func (c *Client) DeleteFile(ctx context.Context, path, sha, message string) error {
	body := map[string]any{
		"message": message,
		"sha":     sha,
		"branch":  c.branch,
	}
	endpoint := fmt.Sprintf("/repos/%s/contents/%s", c.repo, path)
	req, err := c.newRequest(ctx, http.MethodDelete, endpoint, body)
	if err != nil {
		return err
	}
	return c.doRequest(req, nil)
}

type ghRef struct {
	Ref    string `json:"ref"`
	Object struct {
		SHA string `json:"sha"`
	} `json:"object"`
}

// BranchHead returns the commit sha the fixed branch currently points at.
func (c *Client) BranchHead(ctx context.Context) (string, error) {
	return c.refSHA(ctx, "heads/"+c.branch)
}

// TagCommit resolves a tag name to its commit sha. An unknown tag maps to
// apperr.ErrNotFound.
func (c *Client) TagCommit(ctx context.Context, tag string) (string, error) {
	sha, err := c.refSHA(ctx, "tags/"+tag)
	if err != nil {
		return "", fmt.Errorf("tag %s: %w", tag, apperr.ErrNotFound)
	}
	return sha, nil
}

func (c *Client) refSHA(ctx context.Context, ref string) (string, error) {
	endpoint := fmt.Sprintf("/repos/%s/git/ref/%s", c.repo, ref)
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	var data ghRef
	if err := c.doRequest(req, &data); err != nil {
		return "", err
	}
	if data.Object.SHA == "" {
		return "", fmt.Errorf("github: ref %s has no object sha", ref)
	}
	return data.Object.SHA, nil
}

// CreateTag creates a lightweight tag at sha. An already-existing tag (422)
// is treated as success so snapshot creation stays idempotent on the tag.
func (c *Client) CreateTag(ctx context.Context, tag, sha string) error {
	body := map[string]any{"ref": "refs/tags/" + tag, "sha": sha}
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/git/refs", c.repo), body)
	if err != nil {
		return err
	}
	err = c.doRequest(req, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusUnprocessableEntity {
		// Tag already exists; snapshot creation treats that as success.
		return nil
	}
	return err
}

// DeleteTag removes a tag reference.
func (c *Client) DeleteTag(ctx context.Context, tag string) error {
	endpoint := fmt.Sprintf("/repos/%s/git/refs/tags/%s", c.repo, tag)
	req, err := c.newRequest(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	return c.doRequest(req, nil)
}

// ForceUpdateBranch moves the fixed branch to sha, discarding history after
// it. Destructive; snapshot restore tags the old head first.
func (c *Client) ForceUpdateBranch(ctx context.Context, sha string) error {
	body := map[string]any{"sha": sha, "force": true}
	endpoint := fmt.Sprintf("/repos/%s/git/refs/heads/%s", c.repo, c.branch)
	req, err := c.newRequest(ctx, http.MethodPatch, endpoint, body)
	if err != nil {
		return err
	}
	return c.doRequest(req, nil)
}

// ListReleases returns all releases in provider order.
func (c *Client) ListReleases(ctx context.Context) ([]Release, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/releases", c.repo), nil)
	if err != nil {
		return nil, err
	}
	var releases []Release
	if err := c.doRequest(req, &releases); err != nil {
		return nil, err
	}
	return releases, nil
}

// CreateRelease publishes a release on an existing tag. Unlike tags,
// duplicate releases are an error.
func (c *Client) CreateRelease(ctx context.Context, tag, name, body string) error {
	payload := map[string]any{
		"tag_name":   tag,
		"name":       name,
		"body":       body,
		"draft":      false,
		"prerelease": false,
	}
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/releases", c.repo), payload)
	if err != nil {
		return err
	}
	return c.doRequest(req, nil)
}

// ReleaseByTag fetches the release published on tag, reporting absence
// instead of an error when there is none.
func (c *Client) ReleaseByTag(ctx context.Context, tag string) (Release, bool, error) {
	endpoint := fmt.Sprintf("/repos/%s/releases/tags/%s", c.repo, tag)
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Release{}, false, err
	}
	var rel Release
	if err := c.doRequest(req, &rel); err != nil {
		return Release{}, false, nil
	}
	return rel, true, nil
}

// DeleteRelease removes a release by its numeric id.
func (c *Client) DeleteRelease(ctx context.Context, id int64) error {
	endpoint := fmt.Sprintf("/repos/%s/releases/%d", c.repo, id)
	req, err := c.newRequest(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	return c.doRequest(req, nil)
}

// DispatchWorkflow fires a workflow_dispatch event for the given workflow
// file on the fixed branch. Fire and forget; progress is observed separately
// through ListWorkflowRuns.
func (c *Client) DispatchWorkflow(ctx context.Context, workflowFile string, inputs map[string]string) error {
	body := map[string]any{"ref": c.branch}
	if len(inputs) > 0 {
		body["inputs"] = inputs
	}
	endpoint := fmt.Sprintf("/repos/%s/actions/workflows/%s/dispatches", c.repo, workflowFile)
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	return c.doRequest(req, nil)
}

type ghRunList struct {
	WorkflowRuns []WorkflowRun `json:"workflow_runs"`
}

// ListWorkflowRuns returns the most recent runs on the fixed branch,
// status/conclusion verbatim as the provider reports them.
func (c *Client) ListWorkflowRuns(ctx context.Context, perPage int) ([]WorkflowRun, error) {
	endpoint := fmt.Sprintf("/repos/%s/actions/runs?per_page=%d&branch=%s", c.repo, perPage, c.branch)
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var list ghRunList
	if err := c.doRequest(req, &list); err != nil {
		return nil, err
	}
	return list.WorkflowRuns, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	u := c.apiURL + endpoint

	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		req, err = http.NewRequestWithContext(ctx, method, u, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
	} else {
		var err error
		req, err = http.NewRequestWithContext(ctx, method, u, nil)
		if err != nil {
			return nil, err
		}
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "sitekeeper/1.0")

	return req, nil
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &StatusError{Code: resp.StatusCode, Method: req.Method, Path: req.URL.Path}
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}
