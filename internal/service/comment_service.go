package service

import (
	"context"
	"fmt"
	"strings"

	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/repository"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	userRepo    repository.UserRepository
	notifier    NotificationSender
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	notifier NotificationSender,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		isAdmin:     isAdmin,
	}
}

func validateCommentContent(content string) error {
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return models.NewValidationError("Comment too long (max 10000 characters)")
	}
	return nil
}

// CreateComment requires the commenter to be able to read the post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	post, err := ensurePostReadable(ctx, s.postRepo, s.groupRepo, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	notify(ctx, s.notifier, NotifyInput{
		UserID:  post.UserID,
		ActorID: actor(in.UserID),
		Type:    models.NotificationPostCommented,
		Message: fmt.Sprintf("%s commented on your post", created.User.Username),
		RefType: "post",
		RefID:   post.ID,
	})
	observability.RecordEvent("comment_created")
	return created, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID, viewerID uint, limit, offset int) ([]models.Comment, error) {
	if _, err := ensurePostReadable(ctx, s.postRepo, s.groupRepo, postID, viewerID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID, limit, offset)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own comments")
	}
	content := strings.TrimSpace(in.Content)
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment is allowed for the comment author, the post author and site admins.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != in.UserID {
		allowed, err := s.canModerate(ctx, comment, in.UserID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, models.NewUnauthorizedError("You can only delete your own comments")
		}
	}

	if err := s.commentRepo.Delete(ctx, in.CommentID); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) canModerate(ctx context.Context, comment *models.Comment, userID uint) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, comment.PostID, 0)
	if err == nil && post.UserID == userID {
		return true, nil
	}
	if s.isAdmin == nil {
		return false, nil
	}
	return s.isAdmin(ctx, userID)
}
