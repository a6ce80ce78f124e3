package v1

import (
	"context"
	"fmt"

	"github.com/4thel00z/carve/internal"
)

// Client provides programmatic access to commit splitting.
type Client struct {
	uc   *internal.UseCases
	repo string
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	resolver := internal.NewScopeResolver()
	if _, err := resolver.Resolve(cfg.repoPath); err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Client{
		uc:   internal.NewUseCases(resolver, internal.OpenRepository, cfg.logger),
		repo: cfg.repoPath,
	}, nil
}

// Extract moves the selected changes of a commit into a new commit right
// after it and replays the branch on top.
func (c *Client) Extract(ctx context.Context, req ExtractRequest) (*Result, error) {
	out, err := c.uc.Extract.Execute(ctx, internal.ExtractInput{
		Revision: req.Revision,
		Paths:    req.Paths,
		Patterns: req.Patterns,
		Patch:    req.Patch,
		Message:  req.Message,
		DryRun:   req.DryRun,
		NoUpdate: req.NoUpdate,
		Scope:    c.repo,
	})
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	return &Result{
		Remaining: out.Remaining,
		Extracted: out.Extracted,
		NewHead:   out.NewHead,
		Ref:       out.Ref,
		Updated:   out.Updated,
		Changes:   toChanges(out.Changes),
		Preview:   toDiffs(out.Preview),
	}, nil
}

// Changes lists the file changes of a commit. An empty revision means HEAD.
func (c *Client) Changes(ctx context.Context, revision string) ([]Change, error) {
	out, err := c.uc.Changes.Execute(ctx, internal.ChangesInput{
		Revision: revision, Scope: c.repo,
	})
	if err != nil {
		return nil, fmt.Errorf("changes: %w", err)
	}
	return toChanges(out.Changes), nil
}

// Log returns up to limit commits of the current branch, newest first.
func (c *Client) Log(ctx context.Context, limit int) ([]Commit, error) {
	out, err := c.uc.Log.Execute(ctx, internal.LogInput{
		Limit: limit, Scope: c.repo,
	})
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}

	commits := make([]Commit, 0, len(out.Commits))
	for _, cm := range out.Commits {
		commits = append(commits, Commit{
			Hash:      cm.Hash,
			Message:   cm.Message,
			Author:    cm.Author,
			Timestamp: cm.Timestamp,
		})
	}
	return commits, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}

func toChanges(in []internal.ChangeOutput) []Change {
	out := make([]Change, 0, len(in))
	for _, c := range in {
		out = append(out, Change{Status: c.Status, Path: c.Path, From: c.From})
	}
	return out
}

func toDiffs(in []internal.FilePreview) []Diff {
	if len(in) == 0 {
		return nil
	}
	out := make([]Diff, 0, len(in))
	for _, p := range in {
		out = append(out, Diff{Path: p.Path, Status: string(p.Status), Binary: p.Binary, Diff: p.Diff})
	}
	return out
}
