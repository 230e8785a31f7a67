package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Caia-Tech/bilingual-corpus/pkg/logging"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog"
)

// Commit author for dataset snapshots
const (
	CommitAuthorName  = "Bilingual Corpus"
	CommitAuthorEmail = "corpus@caiatech.com"
)

// GitVersioner commits snapshot directories to a git repository rooted in
// the directory itself, keeping the history of every export.
type GitVersioner struct {
	metricsCollector MetricsCollector
	logger           zerolog.Logger
}

// NewGitVersioner creates a versioner
func NewGitVersioner(metrics MetricsCollector) *GitVersioner {
	return &GitVersioner{
		metricsCollector: metrics,
		logger:           logging.GetStorageLogger("commit", "git"),
	}
}

// Commit stages every change under dir and commits it. The repository is
// initialized on first use. When nothing changed, the current HEAD is returned.
func (g *GitVersioner) Commit(ctx context.Context, dir, message string, when time.Time) (string, error) {
	start := time.Now()
	hash, err := g.commit(ctx, dir, message, when)
	recordMetric(g.metricsCollector, "commit", "git", start, err)
	return hash, err
}

func (g *GitVersioner) commit(ctx context.Context, dir, message string, when time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := openOrInit(dir)
	if err != nil {
		return "", err
	}

	w, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := w.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("failed to add files: %w", err)
	}

	status, err := w.Status()
	if err != nil {
		return "", fmt.Errorf("failed to read status: %w", err)
	}
	if status.IsClean() {
		head, err := repo.Head()
		if err != nil {
			return "", fmt.Errorf("nothing to commit and no HEAD: %w", err)
		}
		g.logger.Debug().Str("dir", dir).Msg("Snapshot unchanged, skipping commit")
		return head.Hash().String(), nil
	}

	commit, err := w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  CommitAuthorName,
			Email: CommitAuthorEmail,
			When:  when,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	g.logger.Debug().Str("dir", dir).Str("commit", commit.String()).Msg("Committed snapshot")
	return commit.String(), nil
}

func openOrInit(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
		if err != nil {
			return nil, fmt.Errorf("failed to init git repository: %w", err)
		}
		return repo, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	return repo, nil
}
