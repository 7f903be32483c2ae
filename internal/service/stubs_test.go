package service

import (
	"context"
	"sync"
	"time"

	"socialhub/internal/models"
)

type friendRepoStub struct {
	createFn         func(context.Context, *models.Friend) error
	getEdgeFn        func(context.Context, uint, uint) (*models.Friend, error)
	acceptFn         func(context.Context, uint, time.Time) error
	deleteFn         func(context.Context, uint) error
	existsAcceptedFn func(context.Context, uint, uint) (bool, error)
	listFriendsFn    func(context.Context, uint) ([]models.User, error)
	listIncomingFn   func(context.Context, uint) ([]models.Friend, error)
	listOutgoingFn   func(context.Context, uint) ([]models.Friend, error)
	friendIDsFn      func(context.Context, uint) ([]uint, error)
}

func (s *friendRepoStub) Create(ctx context.Context, edge *models.Friend) error {
	return s.createFn(ctx, edge)
}
func (s *friendRepoStub) GetEdge(ctx context.Context, userID, friendID uint) (*models.Friend, error) {
	return s.getEdgeFn(ctx, userID, friendID)
}
func (s *friendRepoStub) Accept(ctx context.Context, edgeID uint, at time.Time) error {
	return s.acceptFn(ctx, edgeID, at)
}
func (s *friendRepoStub) Delete(ctx context.Context, edgeID uint) error {
	return s.deleteFn(ctx, edgeID)
}
func (s *friendRepoStub) ExistsAccepted(ctx context.Context, a, b uint) (bool, error) {
	return s.existsAcceptedFn(ctx, a, b)
}
func (s *friendRepoStub) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.listFriendsFn(ctx, userID)
}
func (s *friendRepoStub) ListIncoming(ctx context.Context, userID uint) ([]models.Friend, error) {
	return s.listIncomingFn(ctx, userID)
}
func (s *friendRepoStub) ListOutgoing(ctx context.Context, userID uint) ([]models.Friend, error) {
	return s.listOutgoingFn(ctx, userID)
}
func (s *friendRepoStub) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.friendIDsFn(ctx, userID)
}

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	existsFn        func(context.Context, uint) (bool, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, string, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, q string, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, q, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user"}, nil
		},
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		existsFn:        func(context.Context, uint) (bool, error) { return true, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
		updateFn:        func(context.Context, *models.User) error { return nil },
		deleteFn:        func(context.Context, uint) error { return nil },
		listFn:          func(context.Context, string, int, int) ([]models.User, error) { return nil, nil },
	}
}

func noopFriendRepo() *friendRepoStub {
	return &friendRepoStub{
		createFn:         func(context.Context, *models.Friend) error { return nil },
		getEdgeFn:        func(context.Context, uint, uint) (*models.Friend, error) { return nil, nil },
		acceptFn:         func(context.Context, uint, time.Time) error { return nil },
		deleteFn:         func(context.Context, uint) error { return nil },
		existsAcceptedFn: func(context.Context, uint, uint) (bool, error) { return false, nil },
		listFriendsFn:    func(context.Context, uint) ([]models.User, error) { return nil, nil },
		listIncomingFn:   func(context.Context, uint) ([]models.Friend, error) { return nil, nil },
		listOutgoingFn:   func(context.Context, uint) ([]models.Friend, error) { return nil, nil },
		friendIDsFn:      func(context.Context, uint) ([]uint, error) { return nil, nil },
	}
}

// notifierStub records every notification it receives.
type notifierStub struct {
	mu   sync.Mutex
	sent []NotifyInput
	err  error
}

func (n *notifierStub) Notify(_ context.Context, in NotifyInput) (*models.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return nil, n.err
	}
	n.sent = append(n.sent, in)
	return &models.Notification{UserID: in.UserID, Type: in.Type, Message: in.Message}, nil
}

func (n *notifierStub) types() []models.NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.NotificationType, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.Type
	}
	return out
}

type published struct {
	userID  uint
	payload string
}

// publisherStub records every published event.
type publisherStub struct {
	mu     sync.Mutex
	events []published
}

func (p *publisherStub) PublishUser(_ context.Context, userID uint, payload string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{userID: userID, payload: payload})
	return nil
}

func (p *publisherStub) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}
