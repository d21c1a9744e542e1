// Package service implements the application's business logic on top of the repositories.
package service

import (
	"context"
)

// LikeTarget is an item that can carry a viewer's liked flag.
type LikeTarget interface {
	LikeTargetID() uint
	SetLiked(bool)
}

// LikedLookup returns the subset of ids the user has liked.
type LikedLookup func(ctx context.Context, userID uint, ids []uint) ([]uint, error)

// DecorateLiked sets liked on every item for the viewer using one lookup.
// Anonymous viewers and empty collections cause no lookup and leave liked unset.
func DecorateLiked[T any, P interface {
	*T
	LikeTarget
}](ctx context.Context, items []T, viewer *uint, lookup LikedLookup) error {
	if viewer == nil || len(items) == 0 {
		return nil
	}

	ids := make([]uint, len(items))
	for i := range items {
		ids[i] = P(&items[i]).LikeTargetID()
	}

	liked, err := lookup(ctx, *viewer, ids)
	if err != nil {
		return err
	}
	set := make(map[uint]struct{}, len(liked))
	for _, id := range liked {
		set[id] = struct{}{}
	}

	for i := range items {
		p := P(&items[i])
		_, ok := set[p.LikeTargetID()]
		p.SetLiked(ok)
	}
	return nil
}
