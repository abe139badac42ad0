package scm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"golang.org/x/mod/semver"
)

// Repository defines the source-control queries needed to derive a version.
type Repository interface {
	// Describe returns "tag" or "tag-N-gHASH" for the nearest annotated tag,
	// or "" when there is none.
	Describe(ctx context.Context) (string, error)
	// CurrentBranch returns the checked-out branch, or DetachedHead.
	CurrentBranch(ctx context.Context) (string, error)
}

const (
	// DetachedHead is reported as the branch name when HEAD is not on a branch.
	DetachedHead = "HEAD"

	// abbrevLength is the number of hex digits of the abbreviated commit hash.
	abbrevLength = 7
)

// ErrRepositoryNotFound is returned by Open when no repository contains the path.
var ErrRepositoryNotFound = errors.New("git repository not found")

// GitRepository implements Repository on top of go-git.
type GitRepository struct {
	repo *git.Repository
}

// Open opens the repository containing path, searching parent directories.
func Open(path string) (*GitRepository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrRepositoryNotFound, path)
		}

		return nil, fmt.Errorf("open git repository: %w", err)
	}

	return &GitRepository{repo: repo}, nil
}

// OpenRepository is Open returning the Repository interface.
func OpenRepository(path string) (Repository, error) {
	repo, err := Open(path)
	if err != nil {
		return nil, err
	}

	return repo, nil
}

// CurrentBranch returns the short name of the branch HEAD points to.
// An unborn branch is reported too.
func (r *GitRepository) CurrentBranch(_ context.Context) (string, error) {
	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}

	if head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short(), nil
	}

	return DetachedHead, nil
}

// Describe mirrors git describe restricted to annotated tags.
// See nearestTag for how the tag is chosen on merged history.
func (r *GitRepository) Describe(ctx context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		// No commits yet.
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}

		return "", fmt.Errorf("resolve HEAD: %w", err)
	}

	tags, err := r.annotatedTags()
	if err != nil {
		return "", err
	}

	if len(tags) == 0 {
		return "", nil
	}

	headCommit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("read HEAD commit: %w", err)
	}

	tagCommit, name, err := r.nearestTag(ctx, headCommit, tags)
	if err != nil || tagCommit == nil {
		return "", err
	}

	if tagCommit.Hash == headCommit.Hash {
		return name, nil
	}

	distance, err := commitsSince(ctx, headCommit, tagCommit)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%d-g%s", name, distance, head.Hash().String()[:abbrevLength]), nil
}

// annotatedTags maps tagged commit hashes to their annotated tag names.
// Lightweight tags and tags of non-commit objects are skipped.
func (r *GitRepository) annotatedTags() (map[plumbing.Hash][]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	defer iter.Close()

	tags := make(map[plumbing.Hash][]string)

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tag, err := r.repo.TagObject(ref.Hash())
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read tag %s: %w", ref.Name().Short(), err)
		}

		commit, err := tag.Commit()
		if errors.Is(err, object.ErrUnsupportedObject) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("resolve tag %s: %w", ref.Name().Short(), err)
		}

		tags[commit.Hash] = append(tags[commit.Hash], ref.Name().Short())

		return nil
	})
	if err != nil {
		return nil, err
	}

	return tags, nil
}

// nearestTag walks ancestors breadth-first and returns the first tagged commit,
// i.e. the tag with the fewest parent hops from head. It returns a nil commit
// when no ancestor is tagged.
//
// git describe instead picks the candidate with the fewest commits not
// reachable from it. On linear history both agree; across merges a tag on a
// short side branch can win here where git would prefer one on the mainline.
func (r *GitRepository) nearestTag(
	ctx context.Context,
	head *object.Commit,
	tags map[plumbing.Hash][]string,
) (*object.Commit, string, error) {
	queue := []*object.Commit{head}
	seen := map[plumbing.Hash]struct{}{head.Hash: {}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		current := queue[0]
		queue = queue[1:]

		if names, ok := tags[current.Hash]; ok {
			return current, pickTag(names), nil
		}

		for _, parentHash := range current.ParentHashes {
			if _, ok := seen[parentHash]; ok {
				continue
			}

			seen[parentHash] = struct{}{}

			parent, err := r.repo.CommitObject(parentHash)
			// Shallow clones miss the history beyond their depth.
			if errors.Is(err, plumbing.ErrObjectNotFound) {
				continue
			}

			if err != nil {
				return nil, "", fmt.Errorf("read commit %s: %w", parentHash, err)
			}

			queue = append(queue, parent)
		}
	}

	return nil, "", nil
}

// commitsSince counts commits reachable from head but not from tagged.
func commitsSince(ctx context.Context, head, tagged *object.Commit) (int, error) {
	excluded := make(map[plumbing.Hash]bool)

	err := object.NewCommitPreorderIter(tagged, nil, nil).ForEach(func(c *object.Commit) error {
		excluded[c.Hash] = true

		return ctx.Err()
	})
	if err != nil {
		return 0, fmt.Errorf("walk tagged history: %w", err)
	}

	count := 0

	err = object.NewCommitPreorderIter(head, excluded, nil).ForEach(func(*object.Commit) error {
		count++

		return ctx.Err()
	})
	if err != nil {
		return 0, fmt.Errorf("walk history: %w", err)
	}

	return count, nil
}

// pickTag returns the highest of several tags on one commit:
// valid semantic versions first, then the lexically greatest name.
func pickTag(names []string) string {
	return slices.MaxFunc(names, compareTags)
}

func compareTags(a, b string) int {
	validA, validB := semver.IsValid(a), semver.IsValid(b)

	switch {
	case validA && validB:
		if c := semver.Compare(a, b); c != 0 {
			return c
		}
	case validA:
		return 1
	case validB:
		return -1
	}

	return strings.Compare(a, b)
}
