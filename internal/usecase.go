package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Repository is everything the use cases need from a git store.
type Repository interface {
	ObjectRepository
	HistoryRepository
}

// Use case input/output DTOs

type ExtractInput struct {
	Revision string
	Paths    []string
	Patterns []string
	Patch    io.Reader
	Message  string
	DryRun   bool
	NoUpdate bool
	Scope    string
}

type ExtractOutput struct {
	Target    string
	Remaining string
	Extracted string
	NewHead   string
	Ref       string
	Updated   bool
	Changes   []ChangeOutput
	Preview   []FilePreview
}

type ChangesInput struct {
	Revision string
	Scope    string
}

type ChangeOutput struct {
	Status string
	Path   string
	From   string
}

type ChangesOutput struct {
	Commit  string
	Changes []ChangeOutput
}

type LogInput struct {
	Limit int
	Scope string
}

type CommitOutput struct {
	Hash      string
	Message   string
	Author    string
	Timestamp time.Time
	Parents   []string
}

type LogOutput struct {
	Commits []CommitOutput
}

type InitConfigInput struct {
	Force bool
	Scope string
}

type InitConfigOutput struct {
	Path string
}

// Use cases

type ExtractUseCase struct {
	resolver *ScopeResolver
	repoFor  func(Scope) (Repository, error)
	logger   *logrus.Logger
}

// NewExtractUseCase builds the extract use case. A nil logger is replaced by
// one configured from the repository's config file.
func NewExtractUseCase(
	resolver *ScopeResolver,
	repoFor func(Scope) (Repository, error),
	logger *logrus.Logger,
) *ExtractUseCase {
	return &ExtractUseCase{
		resolver: resolver,
		repoFor:  repoFor,
		logger:   logger,
	}
}

func (uc *ExtractUseCase) Execute(ctx context.Context, input ExtractInput) (*ExtractOutput, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, fmt.Errorf("commit message required")
	}
	message := input.Message
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}

	scope, err := uc.resolver.Resolve(input.Scope)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(scope)
	if err != nil {
		return nil, err
	}
	log, err := uc.loggerFor(cfg)
	if err != nil {
		return nil, err
	}

	repo, err := uc.repoFor(scope)
	if err != nil {
		return nil, fmt.Errorf("get repository: %w", err)
	}

	head, err := repo.Head(ctx)
	if err != nil {
		return nil, err
	}
	targetOid, err := repo.Resolve(ctx, input.Revision)
	if err != nil {
		return nil, err
	}

	chain, err := ResolveChain(ctx, repo, head.Oid, targetOid, cfg.MaxChainDepth)
	if err != nil {
		return nil, err
	}

	target, err := repo.FindCommit(ctx, targetOid)
	if err != nil {
		return nil, err
	}
	if len(target.ParentOids) > 1 {
		return nil, fmt.Errorf("split %s: %w", target.Oid, ErrMergeCommit)
	}

	changes, err := uc.selectChanges(ctx, repo, target, input)
	if err != nil {
		return nil, err
	}

	op := &ExtractChangesOperation{
		Repo:    repo,
		Commits: chain,
		Changes: changes,
		Message: message,
		Logger:  log,
	}
	result, err := op.EditCommits(ctx)
	if err != nil {
		return nil, err
	}

	extracted, err := repo.FindCommit(ctx, result.CommitToFocus)
	if err != nil {
		return nil, err
	}
	remaining, err := repo.FindCommit(ctx, extracted.ParentOids[0])
	if err != nil {
		return nil, err
	}

	out := &ExtractOutput{
		Target:    target.Oid.String(),
		Remaining: remaining.Oid.String(),
		Extracted: extracted.Oid.String(),
		NewHead:   result.NewHead.String(),
		Ref:       head.Short(),
		Changes:   toChangeOutputs(changes),
	}

	if input.DryRun {
		out.Preview, err = BuildPreview(ctx, repo, remaining.TreeOid, extracted.TreeOid, changes, cfg.PreviewContext)
		if err != nil {
			return nil, fmt.Errorf("build preview: %w", err)
		}
		return out, nil
	}

	if !cfg.UpdateRef || input.NoUpdate {
		return out, nil
	}

	if err := repo.UpdateRef(ctx, head.Name, head.Oid, result.NewHead); err != nil {
		return nil, err
	}
	out.Updated = true

	log.WithFields(logrus.Fields{
		"ref":  head.Name,
		"from": head.Oid.String(),
		"to":   result.NewHead.String(),
	}).Debug("moved ref")

	return out, nil
}

func (uc *ExtractUseCase) selectChanges(ctx context.Context, repo Repository, target *Commit, input ExtractInput) ([]Change, error) {
	all, err := repo.ChangesOf(ctx, target)
	if err != nil {
		return nil, err
	}

	if input.Patch == nil {
		return SelectChanges(all, input.Paths, NewPathMatcher(input.Patterns))
	}

	fromPatch, err := ChangesFromPatch(input.Patch)
	if err != nil {
		return nil, err
	}
	if len(fromPatch) == 0 {
		return nil, ErrEmptySelection
	}

	known := make(map[string]bool, len(all))
	for _, c := range all {
		if c.Before != nil {
			known[c.Before.String()] = true
		}
		if c.After != nil {
			known[c.After.String()] = true
		}
	}
	for _, c := range fromPatch {
		p, err := c.Path()
		if err != nil {
			return nil, err
		}
		if !known[p.String()] {
			return nil, fmt.Errorf("%s: %w", p, ErrNoChangesMatched)
		}
	}
	return fromPatch, nil
}

func (uc *ExtractUseCase) loggerFor(cfg *Config) (*logrus.Logger, error) {
	if uc.logger != nil {
		return uc.logger, nil
	}
	return NewLogger(cfg.Log, os.Stderr)
}

type ChangesUseCase struct {
	resolver *ScopeResolver
	repoFor  func(Scope) (Repository, error)
}

func NewChangesUseCase(resolver *ScopeResolver, repoFor func(Scope) (Repository, error)) *ChangesUseCase {
	return &ChangesUseCase{resolver: resolver, repoFor: repoFor}
}

func (uc *ChangesUseCase) Execute(ctx context.Context, input ChangesInput) (*ChangesOutput, error) {
	scope, err := uc.resolver.Resolve(input.Scope)
	if err != nil {
		return nil, err
	}
	repo, err := uc.repoFor(scope)
	if err != nil {
		return nil, fmt.Errorf("get repository: %w", err)
	}

	rev := input.Revision
	if rev == "" {
		rev = "HEAD"
	}
	oid, err := repo.Resolve(ctx, rev)
	if err != nil {
		return nil, err
	}
	commit, err := repo.FindCommit(ctx, oid)
	if err != nil {
		return nil, err
	}

	changes, err := repo.ChangesOf(ctx, commit)
	if err != nil {
		return nil, err
	}

	return &ChangesOutput{
		Commit:  commit.Oid.String(),
		Changes: toChangeOutputs(changes),
	}, nil
}

type LogUseCase struct {
	resolver *ScopeResolver
	repoFor  func(Scope) (Repository, error)
}

func NewLogUseCase(resolver *ScopeResolver, repoFor func(Scope) (Repository, error)) *LogUseCase {
	return &LogUseCase{resolver: resolver, repoFor: repoFor}
}

func (uc *LogUseCase) Execute(ctx context.Context, input LogInput) (*LogOutput, error) {
	scope, err := uc.resolver.Resolve(input.Scope)
	if err != nil {
		return nil, err
	}
	repo, err := uc.repoFor(scope)
	if err != nil {
		return nil, fmt.Errorf("get repository: %w", err)
	}

	head, err := repo.Head(ctx)
	if err != nil {
		return nil, err
	}

	commits, err := repo.Log(ctx, head.Oid, input.Limit)
	if err != nil {
		return nil, err
	}

	out := &LogOutput{Commits: make([]CommitOutput, 0, len(commits))}
	for _, c := range commits {
		parents := make([]string, 0, len(c.ParentOids))
		for _, p := range c.ParentOids {
			parents = append(parents, p.String())
		}
		out.Commits = append(out.Commits, CommitOutput{
			Hash:      c.Oid.String(),
			Message:   strings.TrimSpace(c.Message),
			Author:    c.Author.Name,
			Timestamp: c.Author.When,
			Parents:   parents,
		})
	}
	return out, nil
}

type InitConfigUseCase struct {
	resolver *ScopeResolver
}

func NewInitConfigUseCase(resolver *ScopeResolver) *InitConfigUseCase {
	return &InitConfigUseCase{resolver: resolver}
}

func (uc *InitConfigUseCase) Execute(ctx context.Context, input InitConfigInput) (*InitConfigOutput, error) {
	scope, err := uc.resolver.Resolve(input.Scope)
	if err != nil {
		return nil, err
	}

	path := scope.ConfigPath()
	if _, err := os.Stat(path); err == nil && !input.Force {
		return nil, fmt.Errorf("config already exists: %s", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	if err := SaveConfig(scope, DefaultConfig()); err != nil {
		return nil, err
	}
	return &InitConfigOutput{Path: path}, nil
}

// UseCases bundles every use case a front end needs.
type UseCases struct {
	Extract    *ExtractUseCase
	Changes    *ChangesUseCase
	Log        *LogUseCase
	InitConfig *InitConfigUseCase
}

// NewUseCases wires the use cases against repositories opened by repoFor.
func NewUseCases(resolver *ScopeResolver, repoFor func(Scope) (Repository, error), logger *logrus.Logger) *UseCases {
	return &UseCases{
		Extract:    NewExtractUseCase(resolver, repoFor, logger),
		Changes:    NewChangesUseCase(resolver, repoFor),
		Log:        NewLogUseCase(resolver, repoFor),
		InitConfig: NewInitConfigUseCase(resolver),
	}
}

// OpenRepository opens the on-disk repository of a scope.
func OpenRepository(scope Scope) (Repository, error) {
	repo, err := NewGitRepository(scope)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func toChangeOutputs(changes []Change) []ChangeOutput {
	out := make([]ChangeOutput, 0, len(changes))
	for _, c := range changes {
		co := ChangeOutput{Status: string(c.Status())}
		if p, err := c.Path(); err == nil {
			co.Path = p.String()
		}
		if c.Status() == StatusRenamed {
			co.From = c.Before.String()
		}
		out = append(out, co)
	}
	return out
}
