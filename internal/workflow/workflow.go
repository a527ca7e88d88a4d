// Package workflow wraps the hosting provider's CI dispatch and run-listing
// APIs. Triggers are fire-and-forget; run progress is observed separately
// and reported exactly as the provider states it.
package workflow

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/littlesmartgenius/sitekeeper/internal/apperr"
	"github.com/littlesmartgenius/sitekeeper/internal/github"
)

// Actions the generation pipeline understands.
const (
	ActionGenerateBatch     = "generate-batch"
	ActionGenerateKeyword   = "generate-keyword"
	ActionGenerateProduct   = "generate-product"
	ActionGenerateFreebie   = "generate-freebie"
	ActionBuildSite         = "build-site"
	ActionFullRebuild       = "full-rebuild"
	ActionFixImages         = "fix-images"
	ActionMaintenanceScan   = "maintenance-scan"
	ActionRegenerateArticle = "regenerate-article"
)

// runsPageSize is the fixed page size for run listings.
const runsPageSize = 10

var validActions = []any{
	ActionGenerateBatch, ActionGenerateKeyword, ActionGenerateProduct,
	ActionGenerateFreebie, ActionBuildSite, ActionFullRebuild,
	ActionFixImages, ActionMaintenanceScan, ActionRegenerateArticle,
}

// Dispatcher is the slice of the content store the trigger needs.
type Dispatcher interface {
	DispatchWorkflow(ctx context.Context, workflowFile string, inputs map[string]string) error
	ListWorkflowRuns(ctx context.Context, perPage int) ([]github.WorkflowRun, error)
}

// Trigger fires pipeline workflows.
type Trigger struct {
	store        Dispatcher
	workflowFile string
	scanFile     string
}

// NewTrigger creates a workflow trigger. workflowFile is the generation
// pipeline definition, scanFile the product catalog scan.
func NewTrigger(store Dispatcher, workflowFile, scanFile string) *Trigger {
	return &Trigger{store: store, workflowFile: workflowFile, scanFile: scanFile}
}

// TriggerResult reports a dispatched workflow.
type TriggerResult struct {
	Triggered bool   `json:"triggered"`
	Action    string `json:"action"`
	Slug      string `json:"slug,omitempty"`
	Message   string `json:"message"`
}

// RunList is the runs action response.
type RunList struct {
	Runs []github.WorkflowRun `json:"runs"`
}

// Fire validates action against the whitelist and dispatches the generation
// workflow with {action, slug?} inputs. No polling or waiting happens here.
func (t *Trigger) Fire(ctx context.Context, action, slug string) (*TriggerResult, error) {
	if err := validation.Validate(action, validation.Required, validation.In(validActions...)); err != nil {
		return nil, fmt.Errorf("%w: invalid action %q", apperr.ErrInvalidRequest, action)
	}
	inputs := map[string]string{"action": action}
	if slug != "" {
		inputs["slug"] = slug
	}
	if err := t.store.DispatchWorkflow(ctx, t.workflowFile, inputs); err != nil {
		return nil, err
	}
	msg := "Workflow triggered: " + action
	if slug != "" {
		msg += " for " + slug
	}
	return &TriggerResult{Triggered: true, Action: action, Slug: slug, Message: msg}, nil
}

// FireScan dispatches the product catalog scan workflow.
func (t *Trigger) FireScan(ctx context.Context) (*TriggerResult, error) {
	if err := t.store.DispatchWorkflow(ctx, t.scanFile, nil); err != nil {
		return nil, err
	}
	return &TriggerResult{Triggered: true, Message: "Catalog scan workflow triggered. Check CI for progress."}, nil
}

// Runs lists the most recent pipeline runs. An upstream failure degrades to
// an empty list, matching the read-path policy elsewhere.
func (t *Trigger) Runs(ctx context.Context) (*RunList, error) {
	runs, err := t.store.ListWorkflowRuns(ctx, runsPageSize)
	if err != nil || runs == nil {
		return &RunList{Runs: []github.WorkflowRun{}}, nil
	}
	return &RunList{Runs: runs}, nil
}
