package mirroring

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/serum-errors/go-serum"

	"github.com/hydrotools/cistern/csapi"
)

// gitPusher maintains a mirror that is a git repository on local disk.
// Every vessel lands as one commit adding the content-addressed object
// file; history doubles as a push log. Publishing the repository is
// somebody else's job (a cron'd push, a CI checkout, a shared drive).
type gitPusher struct {
	cfg  csapi.GitPushConfig
	repo *git.Repository
}

// newGitPusher opens the repository, initializing one in place when the
// directory is not a repository yet. A mirror springs into being on
// first use, same as a vessel file does.
func newGitPusher(ctx context.Context, cfg csapi.GitPushConfig) (gitPusher, error) {
	repo, err := git.PlainOpen(cfg.Repo)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if err := os.MkdirAll(cfg.Repo, 0755); err != nil {
			return gitPusher{}, csapi.ErrorIo("creating git mirror directory", cfg.Repo, err)
		}
		repo, err = git.PlainInit(cfg.Repo, false)
		if err != nil {
			return gitPusher{}, serum.Errorf(csapi.ECodeMirror, "initializing git mirror at %q: %w", cfg.Repo, err)
		}
		return gitPusher{cfg: cfg, repo: repo}, nil
	}
	if err != nil {
		return gitPusher{}, serum.Errorf(csapi.ECodeMirror, "opening git mirror at %q: %w", cfg.Repo, err)
	}
	return gitPusher{cfg: cfg, repo: repo}, nil
}

func (p *gitPusher) key(id csapi.VesselCID) string {
	key := vesselKey(id)
	if p.cfg.Prefix != nil {
		key = path.Join(*p.cfg.Prefix, key)
	}
	return key
}

// hasVessel consults the committed tree, not the worktree: an object
// that was copied in but never committed has not been mirrored.
func (p *gitPusher) hasVessel(id csapi.VesselCID) (bool, error) {
	head, err := p.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// Empty repository. Nothing has been mirrored yet.
		return false, nil
	}
	if err != nil {
		return false, serum.Errorf(csapi.ECodeMirror, "resolving head of git mirror at %q: %w", p.cfg.Repo, err)
	}
	commit, err := p.repo.CommitObject(head.Hash())
	if err != nil {
		return false, serum.Errorf(csapi.ECodeMirror, "reading head commit of git mirror at %q: %w", p.cfg.Repo, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return false, serum.Errorf(csapi.ECodeMirror, "reading head tree of git mirror at %q: %w", p.cfg.Repo, err)
	}
	_, err = tree.File(p.key(id))
	if errors.Is(err, object.ErrFileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, serum.Errorf(csapi.ECodeMirror, "checking git mirror at %q for %s: %w", p.cfg.Repo, id, err)
	}
	return true, nil
}

func (p *gitPusher) pushVessel(id csapi.VesselCID, localPath string) error {
	raw, err := os.ReadFile(localPath)
	if err != nil {
		return csapi.ErrorIo("opening vessel for mirror commit", localPath, err)
	}
	key := p.key(id)
	dst := filepath.Join(p.cfg.Repo, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return csapi.ErrorIo("creating git mirror object directory", filepath.Dir(dst), err)
	}
	if err := os.WriteFile(dst, raw, 0644); err != nil {
		return csapi.ErrorIo("writing vessel into git mirror worktree", dst, err)
	}

	wt, err := p.repo.Worktree()
	if err != nil {
		return serum.Errorf(csapi.ECodeMirror, "opening worktree of git mirror at %q: %w", p.cfg.Repo, err)
	}
	if _, err := wt.Add(key); err != nil {
		return serum.Errorf(csapi.ECodeMirror, "staging %s in git mirror at %q: %w", id, p.cfg.Repo, err)
	}
	_, err = wt.Commit("mirror "+string(id), &git.CommitOptions{
		Author: &object.Signature{
			Name:  "cistern",
			Email: "cistern@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return serum.Errorf(csapi.ECodeMirror, "committing %s to git mirror at %q: %w", id, p.cfg.Repo, err)
	}
	return nil
}
