package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/alnah/docsite/internal/fileutil"
	"github.com/alnah/docsite/internal/logfields"
)

// Sentinel errors for publishing.
var (
	ErrPublish          = errors.New("publish failed")
	ErrNothingToPublish = errors.New("nothing to publish")
)

const (
	cnameFile          = "CNAME"
	urlRemoteName      = "origin"
	defaultAuthorName  = "docsite"
	defaultAuthorEmail = "docsite@localhost"
)

// PublishOptions configures Publish.
type PublishOptions struct {
	Dir         string // build output directory, becomes the work tree
	Remote      string // remote name in Dir's repository, or a repository URL
	Branch      string // hosting branch, e.g. "gh-pages"
	CNAME       string // custom domain written to Dir/CNAME when set
	Message     string
	AuthorName  string
	AuthorEmail string
	Token       string // HTTPS push token; empty uses the transport default
	Logger      *slog.Logger
	Now         func() time.Time
}

// PublishResult describes the pushed commit.
type PublishResult struct {
	Commit string
	Branch string
	Remote string
}

// Publish commits the content of a build directory to the hosting branch and
// pushes it. The directory is turned into a repository when needed and its
// index follows the remote branch, so only real changes are committed.
// ErrNothingToPublish is returned when the build matches the branch.
func Publish(ctx context.Context, opts PublishOptions) (*PublishResult, error) {
	if opts.Logger == nil {
		opts.Logger = logfields.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if !fileutil.DirExists(opts.Dir) {
		return nil, fmt.Errorf("%w: build directory not found: %s", ErrPublish, opts.Dir)
	}

	if opts.CNAME != "" {
		if err := fileutil.WriteFileAtomic(filepath.Join(opts.Dir, cnameFile), []byte(opts.CNAME+"\n")); err != nil {
			return nil, fmt.Errorf("%w: writing CNAME: %v", ErrPublish, err)
		}
	}

	repo, err := openOrInit(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPublish, err)
	}

	remote, err := ensureRemote(repo, opts.Remote)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPublish, err)
	}

	auth := authFor(opts.Token)
	branch := plumbing.NewBranchReferenceName(opts.Branch)

	if err := trackBranch(ctx, repo, remote, branch, auth); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPublish, err)
	}

	hash, err := commitAll(repo, opts)
	if err != nil {
		return nil, err
	}

	refSpec := gitconfig.RefSpec(branch.String() + ":" + branch.String())
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("%w: push: %v", ErrPublish, err)
	}

	opts.Logger.Info("published",
		logfields.Branch(opts.Branch),
		slog.String("remote", remote),
		slog.String("commit", hash.String()))

	return &PublishResult{Commit: hash.String(), Branch: opts.Branch, Remote: remote}, nil
}

func openOrInit(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpen(dir)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	repo, err = git.PlainInit(dir, false)
	if err != nil {
		return nil, fmt.Errorf("initializing repository: %w", err)
	}
	return repo, nil
}

// ensureRemote returns the remote name to push to. A URL is registered as
// "origin"; a name must already exist.
func ensureRemote(repo *git.Repository, remote string) (string, error) {
	if !isRemoteURL(remote) {
		if _, err := repo.Remote(remote); err != nil {
			return "", fmt.Errorf("remote %q not configured: %w", remote, err)
		}
		return remote, nil
	}

	existing, err := repo.Remote(urlRemoteName)
	if err == nil {
		urls := existing.Config().URLs
		if len(urls) > 0 && urls[0] == remote {
			return urlRemoteName, nil
		}
		if err := repo.DeleteRemote(urlRemoteName); err != nil {
			return "", fmt.Errorf("replacing remote: %w", err)
		}
	}

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: urlRemoteName, URLs: []string{remote}})
	if err != nil {
		return "", fmt.Errorf("adding remote: %w", err)
	}
	return urlRemoteName, nil
}

func isRemoteURL(remote string) bool {
	return strings.ContainsAny(remote, ":/\\")
}

// trackBranch points HEAD at branch. When the remote already has the branch,
// the local branch and index follow it without touching the work tree.
func trackBranch(ctx context.Context, repo *git.Repository, remote string, branch plumbing.ReferenceName, auth transport.AuthMethod) error {
	remoteRef := plumbing.NewRemoteReferenceName(remote, branch.Short())
	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remote,
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec("+" + branch.String() + ":" + remoteRef.String())},
		Auth:       auth,
	})

	var noMatch git.NoMatchingRefSpecError
	switch {
	case err == nil, errors.Is(err, git.NoErrAlreadyUpToDate):
	case errors.Is(err, transport.ErrEmptyRemoteRepository), errors.As(err, &noMatch):
		return repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branch))
	default:
		return fmt.Errorf("fetch: %w", err)
	}

	ref, err := repo.Reference(remoteRef, true)
	if err != nil {
		return repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branch))
	}

	if _, err := repo.Reference(branch, false); err != nil {
		if err := repo.Storer.SetReference(plumbing.NewHashReference(branch, ref.Hash())); err != nil {
			return err
		}
	}
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branch)); err != nil {
		return err
	}

	w, err := repo.Worktree()
	if err != nil {
		return err
	}
	return w.Reset(&git.ResetOptions{Commit: ref.Hash(), Mode: git.MixedReset})
}

func commitAll(repo *git.Repository, opts PublishOptions) (plumbing.Hash, error) {
	w, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: %v", ErrPublish, err)
	}
	if err := w.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: staging: %v", ErrPublish, err)
	}

	status, err := w.Status()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: status: %v", ErrPublish, err)
	}
	if status.IsClean() {
		return plumbing.ZeroHash, ErrNothingToPublish
	}

	name, email := opts.AuthorName, opts.AuthorEmail
	if name == "" {
		name = defaultAuthorName
	}
	if email == "" {
		email = defaultAuthorEmail
	}

	hash, err := w.Commit(opts.Message, &git.CommitOptions{
		Author: &object.Signature{Name: name, Email: email, When: opts.Now()},
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: commit: %v", ErrPublish, err)
	}
	return hash, nil
}

func authFor(token string) transport.AuthMethod {
	if token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: "token", Password: token}
}
