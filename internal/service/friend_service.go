package service

import (
	"context"
	"fmt"
	"time"

	"socialhub/internal/database"
	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/repository"
)

// Relationship states reported by GetStatus, from the first user's point of view.
const (
	RelationNone            = "none"
	RelationFriends         = "friends"
	RelationPendingSent     = "pending_sent"
	RelationPendingReceived = "pending_received"
)

// FriendshipStatus describes how two users are connected.
type FriendshipStatus struct {
	Status string         `json:"status"`
	Edge   *models.Friend `json:"edge,omitempty"`
}

// FriendService provides friend-request and friendship business logic.
type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	tx         database.Transactor
	notifier   NotificationSender
	publisher  EventPublisher
	now        func() time.Time
}

// NewFriendService returns a new FriendService. tx, notifier and publisher may be nil.
func NewFriendService(
	friendRepo repository.FriendRepository,
	userRepo repository.UserRepository,
	tx database.Transactor,
	notifier NotificationSender,
	publisher EventPublisher,
) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		tx:         tx,
		notifier:   notifier,
		publisher:  publisher,
		now:        time.Now,
	}
}

// AddFriendRequest creates a PENDING edge userID -> friendID.
func (s *FriendService) AddFriendRequest(ctx context.Context, userID, friendID uint) (_ *models.Friend, err error) {
	ctx, end := observability.StartServiceSpan(ctx, "FriendService", "AddFriendRequest")
	defer func() { end(err) }()

	if userID == friendID {
		return nil, models.NewValidationError("Cannot send friend request to yourself")
	}

	requester, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, friendID); err != nil {
		return nil, err
	}

	existing, err := s.friendRepo.GetEdge(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == models.FriendStatusAccepted {
			return nil, models.NewValidationError("You are already friends")
		}
		return nil, models.NewValidationError("Friend request already sent")
	}

	edge := &models.Friend{
		UserID:   userID,
		FriendID: friendID,
		Status:   models.FriendStatusPending,
	}
	// a concurrent duplicate loses on the unique index and surfaces as a validation error
	if err := s.friendRepo.Create(ctx, edge); err != nil {
		return nil, err
	}

	notify(ctx, s.notifier, NotifyInput{
		UserID:  friendID,
		ActorID: actor(userID),
		Type:    models.NotificationFriendRequest,
		Message: fmt.Sprintf("%s sent you a friend request", requester.Username),
		RefType: "user",
		RefID:   userID,
	})
	publishEvent(ctx, s.publisher, friendID, EventFriendRequestReceived, edgeEvent(edge, requester))
	return edge, nil
}

// RespondToFriendRequest resolves the PENDING edge userID -> friendID.
// ACCEPTED marks it accepted; DECLINED deletes it so a new request may be sent later.
func (s *FriendService) RespondToFriendRequest(ctx context.Context, userID, friendID uint, status models.FriendStatus) (_ *models.Friend, err error) {
	ctx, end := observability.StartServiceSpan(ctx, "FriendService", "RespondToFriendRequest")
	defer func() { end(err) }()

	if status != models.FriendStatusAccepted && status != models.FriendStatusDeclined {
		return nil, models.NewValidationError("Status must be ACCEPTED or DECLINED")
	}

	edge, err := s.friendRepo.GetEdge(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	if edge == nil {
		return nil, models.NewNotFoundError("Friend request", fmt.Sprintf("%d->%d", userID, friendID))
	}
	if edge.Status != models.FriendStatusPending {
		return nil, models.NewValidationError("Friend request is not pending")
	}

	if status == models.FriendStatusDeclined {
		if err := s.friendRepo.Delete(ctx, edge.ID); err != nil {
			return nil, err
		}
		edge.Status = models.FriendStatusDeclined
		publishEvent(ctx, s.publisher, userID, EventFriendRequestDeclined, edgeEvent(edge, nil))
		return edge, nil
	}

	at := s.now().UTC()
	if err := s.friendRepo.Accept(ctx, edge.ID, at); err != nil {
		return nil, err
	}
	edge.Status = models.FriendStatusAccepted
	edge.AcceptedAt = &at

	addressee, err := s.userRepo.GetByID(ctx, friendID)
	if err != nil {
		// the edge is already accepted; fall back to an anonymous notification
		addressee = &models.User{ID: friendID, Username: "Someone"}
	}
	notify(ctx, s.notifier, NotifyInput{
		UserID:  userID,
		ActorID: actor(friendID),
		Type:    models.NotificationFriendAccepted,
		Message: fmt.Sprintf("%s accepted your friend request", addressee.Username),
		RefType: "user",
		RefID:   friendID,
	})
	publishEvent(ctx, s.publisher, userID, EventFriendRequestAccepted, edgeEvent(edge, addressee))
	return edge, nil
}

// DeleteFriend removes the edge userID -> friendID. The reverse edge is left untouched.
func (s *FriendService) DeleteFriend(ctx context.Context, userID, friendID uint) error {
	edge, err := s.friendRepo.GetEdge(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if edge == nil {
		return models.NewNotFoundError("Friend", fmt.Sprintf("%d->%d", userID, friendID))
	}
	if err := s.friendRepo.Delete(ctx, edge.ID); err != nil {
		return err
	}
	publishEvent(ctx, s.publisher, friendID, EventFriendRemoved, edgeEvent(edge, nil))
	return nil
}

// RemoveConnection deletes every edge between the two users, in either direction.
// It is NotFound when no edge exists.
func (s *FriendService) RemoveConnection(ctx context.Context, userID, otherID uint) error {
	var removed []*models.Friend
	err := withinTx(ctx, s.tx, func(ctx context.Context) error {
		removed = removed[:0]
		for _, pair := range [][2]uint{{userID, otherID}, {otherID, userID}} {
			edge, err := s.friendRepo.GetEdge(ctx, pair[0], pair[1])
			if err != nil {
				return err
			}
			if edge == nil {
				continue
			}
			if err := s.friendRepo.Delete(ctx, edge.ID); err != nil {
				return err
			}
			removed = append(removed, edge)
		}
		if len(removed) == 0 {
			return models.NewNotFoundError("Friend", otherID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	publishEvent(ctx, s.publisher, otherID, EventFriendRemoved, edgeEvent(removed[0], nil))
	return nil
}

// IsFriend reports whether an ACCEPTED edge exists between a and b in either direction.
func (s *FriendService) IsFriend(ctx context.Context, a, b uint) (bool, error) {
	if a == b {
		return false, nil
	}
	return s.friendRepo.ExistsAccepted(ctx, a, b)
}

// ListFriends returns the users connected to userID by an accepted edge.
func (s *FriendService) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.friendRepo.ListFriends(ctx, userID)
}

// ListIncomingRequests returns pending requests addressed to userID.
func (s *FriendService) ListIncomingRequests(ctx context.Context, userID uint) ([]models.Friend, error) {
	return s.friendRepo.ListIncoming(ctx, userID)
}

// ListOutgoingRequests returns pending requests sent by userID.
func (s *FriendService) ListOutgoingRequests(ctx context.Context, userID uint) ([]models.Friend, error) {
	return s.friendRepo.ListOutgoing(ctx, userID)
}

// GetStatus describes the relation between userID and otherID from userID's side.
// An accepted edge wins over a pending one in the other direction.
func (s *FriendService) GetStatus(ctx context.Context, userID, otherID uint) (*FriendshipStatus, error) {
	if _, err := s.userRepo.GetByID(ctx, otherID); err != nil {
		return nil, err
	}

	out, err := s.friendRepo.GetEdge(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	in, err := s.friendRepo.GetEdge(ctx, otherID, userID)
	if err != nil {
		return nil, err
	}

	switch {
	case out != nil && out.Status == models.FriendStatusAccepted:
		return &FriendshipStatus{Status: RelationFriends, Edge: out}, nil
	case in != nil && in.Status == models.FriendStatusAccepted:
		return &FriendshipStatus{Status: RelationFriends, Edge: in}, nil
	case out != nil:
		return &FriendshipStatus{Status: RelationPendingSent, Edge: out}, nil
	case in != nil:
		return &FriendshipStatus{Status: RelationPendingReceived, Edge: in}, nil
	}
	return &FriendshipStatus{Status: RelationNone}, nil
}

type friendEvent struct {
	EdgeID   uint                `json:"edge_id"`
	UserID   uint                `json:"user_id"`
	FriendID uint                `json:"friend_id"`
	Status   models.FriendStatus `json:"status"`
	Actor    *models.UserSummary `json:"actor,omitempty"`
}

func edgeEvent(edge *models.Friend, by *models.User) friendEvent {
	ev := friendEvent{EdgeID: edge.ID, UserID: edge.UserID, FriendID: edge.FriendID, Status: edge.Status}
	if by != nil {
		summary := by.Summary()
		ev.Actor = &summary
	}
	return ev
}
