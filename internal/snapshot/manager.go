// Package snapshot manages named point-in-time markers over the content
// store, realized as a lightweight tag plus a release carrying a JSON
// metadata blob. Restore is destructive; the safety tag created beforehand
// is the only undo mechanism and is never cleaned up automatically.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/littlesmartgenius/sitekeeper/internal/apperr"
	"github.com/littlesmartgenius/sitekeeper/internal/content"
	"github.com/littlesmartgenius/sitekeeper/internal/github"
)

// TagPrefix namespaces snapshot tags among the repository's other tags.
const TagPrefix = "snapshot-"

// safetyTagPrefix namespaces the pre-restore backup tags.
const safetyTagPrefix = "pre-restore-"

var tagCharPattern = regexp.MustCompile(`[^a-z0-9-]`)

// Store is the slice of the content store the manager needs.
type Store interface {
	ListDir(ctx context.Context, dir string) ([]github.Entry, error)
	BranchHead(ctx context.Context) (string, error)
	TagCommit(ctx context.Context, tag string) (string, error)
	CreateTag(ctx context.Context, tag, sha string) error
	DeleteTag(ctx context.Context, tag string) error
	ForceUpdateBranch(ctx context.Context, sha string) error
	ListReleases(ctx context.Context) ([]github.Release, error)
	CreateRelease(ctx context.Context, tag, name, body string) error
	ReleaseByTag(ctx context.Context, tag string) (github.Release, bool, error)
	DeleteRelease(ctx context.Context, id int64) error
}

// Manager creates, lists, restores and deletes snapshots.
type Manager struct {
	store Store
	now   func() time.Time
}

// NewManager creates a snapshot manager.
func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// metadata is the JSON blob stored in the release body.
type metadata struct {
	Commit    string `json:"commit"`
	Articles  int    `json:"articles"`
	Images    int    `json:"images"`
	Posts     int    `json:"posts"`
	CreatedAt string `json:"createdAt"`
}

// Snapshot is one named marker as reported to callers.
type Snapshot struct {
	ID          int64  `json:"id"`
	Tag         string `json:"tag"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Commit      string `json:"commit"`
	Articles    int    `json:"articles"`
	Images      int    `json:"images"`
	Posts       int    `json:"posts"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// List is the snapshots action response.
type List struct {
	Snapshots []Snapshot `json:"snapshots"`
	Total     int        `json:"total"`
}

// CreateResult reports a created snapshot.
type CreateResult struct {
	Tag      string `json:"tag"`
	Name     string `json:"name"`
	Commit   string `json:"commit"`
	Articles int    `json:"articles"`
	Images   int    `json:"images"`
	Message  string `json:"message"`
}

// RestoreResult reports a completed restore.
type RestoreResult struct {
	Restored  bool   `json:"restored"`
	Tag       string `json:"tag"`
	Commit    string `json:"commit"`
	SafetyTag string `json:"safetyTag"`
	Message   string `json:"message"`
}

// DeleteResult reports a deleted snapshot.
type DeleteResult struct {
	Deleted bool   `json:"deleted"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// TagForName derives the slug-safe snapshot tag from a display name.
func TagForName(name string) string {
	tag := tagCharPattern.ReplaceAllString(strings.ToLower(name), "-")
	if len(tag) > 40 {
		tag = tag[:40]
	}
	return TagPrefix + tag
}

// Create marks the current branch head as a snapshot. The name defaults to
// a timestamp. Creation is idempotent on the tag (an existing tag is fine)
// but not on the release; duplicate names therefore error, and callers
// should pick unique ones.
func (m *Manager) Create(ctx context.Context, name string) (*CreateResult, error) {
	if name == "" {
		name = strings.NewReplacer(":", "-", ".", "-").Replace(m.now().UTC().Format("2006-01-02T15:04:05"))
	}
	tag := TagForName(name)

	head, err := m.store.BranchHead(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve branch head: %w", err)
	}

	// Summary counts are informational; listing failures degrade to zeros.
	var pages, images, posts []github.Entry
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { pages, err = m.store.ListDir(gCtx, content.PagesDir); return })
	g.Go(func() (err error) { images, err = m.store.ListDir(gCtx, content.ImagesDir); return })
	g.Go(func() (err error) { posts, err = m.store.ListDir(gCtx, content.PostsDir); return })
	_ = g.Wait()

	meta := metadata{
		Commit:    shortSHA(head),
		Articles:  countSuffix(pages, ".html"),
		Images:    len(images),
		Posts:     countSuffix(posts, ".json"),
		CreatedAt: m.now().UTC().Format(time.RFC3339),
	}

	if err := m.store.CreateTag(ctx, tag, head); err != nil {
		return nil, fmt.Errorf("create tag %s: %w", tag, err)
	}
	body, _ := json.Marshal(meta)
	if err := m.store.CreateRelease(ctx, tag, name, string(body)); err != nil {
		return nil, fmt.Errorf("create release for %s: %w", tag, err)
	}

	return &CreateResult{
		Tag:      tag,
		Name:     name,
		Commit:   meta.Commit,
		Articles: meta.Articles,
		Images:   meta.Images,
		Message:  fmt.Sprintf("Snapshot %q created (%d articles, %d images)", name, meta.Articles, meta.Images),
	}, nil
}

// List returns every snapshot release in the order the provider reports
// them. A release body that fails to parse yields empty metadata rather
// than an error.
func (m *Manager) List(ctx context.Context) (*List, error) {
	releases, err := m.store.ListReleases(ctx)
	if err != nil {
		return nil, err
	}
	snapshots := []Snapshot{}
	for _, rel := range releases {
		if !strings.HasPrefix(rel.TagName, TagPrefix) {
			continue
		}
		var meta metadata
		_ = json.Unmarshal([]byte(rel.Body), &meta)
		if meta.Commit == "" {
			meta.Commit = "unknown"
		}
		name := rel.Name
		if name == "" {
			name = rel.TagName
		}
		snapshots = append(snapshots, Snapshot{
			ID:          rel.ID,
			Tag:         rel.TagName,
			Name:        name,
			Date:        rel.CreatedAt.Format(time.RFC3339),
			Commit:      meta.Commit,
			Articles:    meta.Articles,
			Images:      meta.Images,
			Posts:       meta.Posts,
			DownloadURL: rel.ZipballURL,
		})
	}
	return &List{Snapshots: snapshots, Total: len(snapshots)}, nil
}

// Restore force-moves the branch to the snapshot's commit. The current head
// is tagged first; that safety tag is the only way back.
func (m *Manager) Restore(ctx context.Context, tag string) (*RestoreResult, error) {
	if tag == "" {
		return nil, fmt.Errorf("%w: missing tag", apperr.ErrInvalidRequest)
	}
	target, err := m.store.TagCommit(ctx, tag)
	if err != nil {
		return nil, err
	}

	safetyTag := fmt.Sprintf("%s%d", safetyTagPrefix, m.now().UnixMilli())
	if head, err := m.store.BranchHead(ctx); err == nil {
		if err := m.store.CreateTag(ctx, safetyTag, head); err != nil {
			return nil, fmt.Errorf("create safety tag: %w", err)
		}
	}

	if err := m.store.ForceUpdateBranch(ctx, target); err != nil {
		return nil, fmt.Errorf("restore %s: %w", tag, err)
	}
	return &RestoreResult{
		Restored:  true,
		Tag:       tag,
		Commit:    shortSHA(target),
		SafetyTag: safetyTag,
		Message:   fmt.Sprintf("Restored to %q. Safety backup: %s", tag, safetyTag),
	}, nil
}

// Delete removes the release (when present) and then the tag. The two steps
// are not atomic; a failure in between leaves an orphaned tag for the
// operator to clean up.
func (m *Manager) Delete(ctx context.Context, tag string) (*DeleteResult, error) {
	if tag == "" {
		return nil, fmt.Errorf("%w: missing tag", apperr.ErrInvalidRequest)
	}
	if rel, ok, err := m.store.ReleaseByTag(ctx, tag); err == nil && ok {
		if err := m.store.DeleteRelease(ctx, rel.ID); err != nil {
			return nil, fmt.Errorf("delete release for %s: %w", tag, err)
		}
	}
	if err := m.store.DeleteTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("delete tag %s: %w", tag, err)
	}
	return &DeleteResult{Deleted: true, Tag: tag, Message: fmt.Sprintf("Snapshot %q deleted", tag)}, nil
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

func countSuffix(entries []github.Entry, suffix string) int {
	n := 0
	for _, e := range entries {
		if strings.HasSuffix(e.Name, suffix) {
			n++
		}
	}
	return n
}
