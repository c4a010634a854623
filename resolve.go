package gitstream

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hairyhenderson/go-gitstream/locator"
	"github.com/hairyhenderson/go-gitstream/store"
)

// maxPeelDepth bounds the number of annotated tags followed from a branch tip
const maxPeelDepth = 8

// resolveNode walks from the tip of loc.Branch to the object at loc.Path. The
// result is always a store.Tree or a store.Blob. Errors wrap one of the kind
// errors.
func resolveNode(ctx context.Context, repo store.Repository, loc locator.Locator) (store.Object, error) {
	tip, err := repo.ResolveBranchTip(ctx, loc.Branch)
	if err != nil {
		if errors.Is(err, store.ErrRefNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrBranchNotFound, err)
		}

		return nil, fmt.Errorf("%w: %w", ErrObjectLoad, err)
	}

	root, err := rootTree(ctx, repo, tip)
	if err != nil {
		return nil, err
	}

	p := strings.Trim(loc.Path, "/")
	if p == "" {
		return root, nil
	}

	id, err := root.Find(p)
	if err != nil {
		if errors.Is(err, store.ErrEntryNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrPathNotFound, err)
		}

		return nil, fmt.Errorf("%w: %w", ErrObjectLoad, err)
	}

	node, err := load(ctx, repo, id)
	if err != nil {
		return nil, err
	}

	switch node.(type) {
	case store.Tree, store.Blob:
		return node, nil
	default:
		return nil, fmt.Errorf("%w: %s is a %s", ErrObjectLoad, p, node.Kind())
	}
}

// rootTree peels the object at id down to a tree. Commits yield their root
// tree and annotated tags are followed to their targets.
func rootTree(ctx context.Context, repo store.Repository, id store.ObjectID) (store.Tree, error) {
	for range maxPeelDepth + 2 {
		obj, err := load(ctx, repo, id)
		if err != nil {
			return nil, err
		}

		switch o := obj.(type) {
		case store.Tree:
			return o, nil
		case store.Commit:
			id = o.TreeID()
		case store.Tag:
			id = o.TargetID()
		default:
			return nil, fmt.Errorf("%w: %s is a %s, not a commit", ErrObjectLoad, obj.ID(), obj.Kind())
		}
	}

	return nil, fmt.Errorf("%w: too many levels of tags at %s", ErrObjectLoad, id)
}

func load(ctx context.Context, repo store.Repository, id store.ObjectID) (store.Object, error) {
	obj, err := repo.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrObjectLoad, err)
	}

	return obj, nil
}
