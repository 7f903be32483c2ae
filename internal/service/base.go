package service

import (
	"context"

	"socialhub/internal/database"
	"socialhub/internal/models"
	"socialhub/internal/repository"
)

// withinTx runs fn in a transaction when tx is set, directly otherwise.
func withinTx(ctx context.Context, tx database.Transactor, fn func(ctx context.Context) error) error {
	if tx == nil {
		return fn(ctx)
	}
	return tx.WithinTransaction(ctx, fn)
}

// ensurePostReadable loads a post and rejects viewers outside its private group.
func ensurePostReadable(ctx context.Context, posts repository.PostRepository, groups repository.GroupRepository, postID, viewerID uint) (*models.Post, error) {
	post, err := posts.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if post.GroupID != nil {
		if err := ensureGroupReadable(ctx, groups, *post.GroupID, viewerID); err != nil {
			return nil, err
		}
	}
	return post, nil
}

func ensureGroupReadable(ctx context.Context, groups repository.GroupRepository, groupID, userID uint) error {
	group, err := groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.IsPrivate {
		return nil
	}
	member, err := groups.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return models.NewUnauthorizedError("This group is private")
	}
	return nil
}
