package service

import (
	"context"
	"fmt"
	"strings"

	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/repository"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000
	maxQuoteLen   = 1000
)

type PostService struct {
	postRepo   repository.PostRepository
	groupRepo  repository.GroupRepository
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	notifier   NotificationSender
	isAdmin    func(ctx context.Context, userID uint) (bool, error)
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	ImageURL string
	GroupID  *uint
}

type ListPostsInput struct {
	Limit         int
	Offset        int
	CurrentUserID uint
}

// UpdatePostInput carries a partial post update; nil fields are left unchanged.
type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Title    *string
	Content  *string
	ImageURL *string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	friendRepo repository.FriendRepository,
	userRepo repository.UserRepository,
	notifier NotificationSender,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		groupRepo:  groupRepo,
		friendRepo: friendRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		isAdmin:    isAdmin,
	}
}

func validatePostText(title, content string) error {
	if title == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 300 characters)")
	}
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if err := validatePostText(title, content); err != nil {
		return nil, err
	}

	if in.GroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *in.GroupID); err != nil {
			return nil, err
		}
		member, err := s.groupRepo.GetMember(ctx, *in.GroupID, in.UserID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, models.NewUnauthorizedError("Only group members can post in this group")
		}
	}

	post := &models.Post{
		Title:    title,
		Content:  content,
		ImageURL: strings.TrimSpace(in.ImageURL),
		UserID:   in.UserID,
		GroupID:  in.GroupID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.RecordEvent("post_created")
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// GetPost returns a post. Posts in private groups are visible to members only.
func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return ensurePostReadable(ctx, s.postRepo, s.groupRepo, id, currentUserID)
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, in ListPostsInput) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.postRepo.ListByUser(ctx, userID, in.CurrentUserID, in.Limit, in.Offset)
}

// GetGroupPosts lists a group's posts. Private groups require membership.
func (s *PostService) GetGroupPosts(ctx context.Context, groupID uint, in ListPostsInput) ([]*models.Post, error) {
	if err := ensureGroupReadable(ctx, s.groupRepo, groupID, in.CurrentUserID); err != nil {
		return nil, err
	}
	return s.postRepo.ListByGroup(ctx, groupID, in.CurrentUserID, in.Limit, in.Offset)
}

// Feed returns the current user's posts together with those of accepted friends.
// Friends' posts in private groups the current user has not joined are left out.
func (s *PostService) Feed(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	ids, err := s.friendRepo.FriendIDs(ctx, in.CurrentUserID)
	if err != nil {
		return nil, err
	}
	authors := append([]uint{in.CurrentUserID}, ids...)
	return s.postRepo.ListByAuthors(ctx, authors, in.CurrentUserID, in.Limit, in.Offset)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own posts")
	}

	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		post.Content = strings.TrimSpace(*in.Content)
	}
	if in.ImageURL != nil {
		post.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if err := validatePostText(post.Title, post.Content); err != nil {
		return nil, err
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post with its comments, likes and reposts. Owner or site admin only.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}

	if post.UserID != in.UserID {
		if s.isAdmin == nil {
			return models.NewUnauthorizedError("You can only delete your own posts")
		}
		admin, err := s.isAdmin(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewUnauthorizedError("You can only delete your own posts")
		}
	}

	return s.postRepo.Delete(ctx, in.PostID)
}

// LikePost is idempotent; the owner is notified only for a new like.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	post, err := s.GetPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	created, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if created {
		s.notifyOwner(ctx, post, userID, models.NotificationPostLiked, "liked your post")
		observability.RecordEvent("post_liked")
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

// Repost shares postID on behalf of userID. Reposting your own post is rejected.
func (s *PostService) Repost(ctx context.Context, userID, postID uint, quote string) (*models.Repost, error) {
	post, err := s.GetPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.UserID == userID {
		return nil, models.NewValidationError("You cannot repost your own post")
	}
	quote = strings.TrimSpace(quote)
	if len(quote) > maxQuoteLen {
		return nil, models.NewValidationError(fmt.Sprintf("Quote too long (max %d characters)", maxQuoteLen))
	}

	repost := &models.Repost{UserID: userID, PostID: postID, Quote: quote}
	if err := s.postRepo.CreateRepost(ctx, repost); err != nil {
		return nil, err
	}
	s.notifyOwner(ctx, post, userID, models.NotificationPostReposted, "reposted your post")
	observability.RecordEvent("post_reposted")
	return repost, nil
}

func (s *PostService) Unrepost(ctx context.Context, userID, postID uint) error {
	return s.postRepo.DeleteRepost(ctx, userID, postID)
}

func (s *PostService) ListReposts(ctx context.Context, postID, currentUserID uint, limit, offset int) ([]models.Repost, error) {
	if _, err := s.GetPost(ctx, postID, currentUserID); err != nil {
		return nil, err
	}
	return s.postRepo.ListReposts(ctx, postID, limit, offset)
}

func (s *PostService) notifyOwner(ctx context.Context, post *models.Post, actorID uint, kind models.NotificationType, verb string) {
	name := "Someone"
	if u, err := s.userRepo.GetByID(ctx, actorID); err == nil {
		name = u.Username
	}
	notify(ctx, s.notifier, NotifyInput{
		UserID:  post.UserID,
		ActorID: actor(actorID),
		Type:    kind,
		Message: fmt.Sprintf("%s %s", name, verb),
		RefType: "post",
		RefID:   post.ID,
	})
}
