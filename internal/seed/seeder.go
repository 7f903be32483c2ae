package seed

import (
	"fmt"
	"log/slog"
	"slices"

	"socialhub/internal/models"

	"gorm.io/gorm"
)

// Summary counts what a seeding run created.
type Summary struct {
	Users       int
	Friendships int
	Groups      int
	Posts       int
	Comments    int
	Likes       int
	Messages    int
}

// Seeder composes Factory calls into a populated social graph.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	// members tracks group memberships so group posts are only authored by members.
	members map[uint][]*models.User
	summary Summary
}

// NewSeeder creates a Seeder writing through a new Factory.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	f, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, factory: f, members: make(map[uint][]*models.User)}, nil
}

// Summary returns the running totals.
func (s *Seeder) Summary() Summary {
	return s.summary
}

// ClearAll deletes every row of every model, children first.
func (s *Seeder) ClearAll() error {
	all := models.AllModels()
	slices.Reverse(all)
	for _, m := range all {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	slog.Info("database cleared")
	return nil
}

// SeedSocialMesh creates numUsers users and links each to a few neighbours.
// Most edges are accepted; every fourth is left pending.
func (s *Seeder) SeedSocialMesh(numUsers int) ([]*models.User, error) {
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	s.summary.Users += len(users)

	// each user requests the next 1..3 users around the ring; a pair never gets two edges
	linked := make(map[[2]uint]bool)
	edge := 0
	for i, u := range users {
		span := 1 + i%3
		for step := 1; step <= span && step < len(users); step++ {
			other := users[(i+step)%len(users)]
			key := [2]uint{min(u.ID, other.ID), max(u.ID, other.ID)}
			if linked[key] {
				continue
			}
			linked[key] = true
			status := models.FriendStatusAccepted
			if edge%4 == 3 {
				status = models.FriendStatusPending
			}
			edge++
			if _, err := s.factory.CreateFriendship(u, other, status); err != nil {
				return nil, err
			}
			s.summary.Friendships++
		}
	}
	slog.Info("seeded social mesh", slog.Int("users", len(users)), slog.Int("friendships", s.summary.Friendships))
	return users, nil
}

// SeedGroups creates numGroups groups with owners and members drawn from users.
// Every third group is private.
func (s *Seeder) SeedGroups(users []*models.User, numGroups int) ([]*models.Group, error) {
	if len(users) == 0 {
		return nil, nil
	}
	groups := make([]*models.Group, 0, numGroups)
	for i := 0; i < numGroups; i++ {
		owner := users[i%len(users)]
		g, err := s.factory.CreateGroup(owner, i%3 == 2)
		if err != nil {
			return nil, err
		}
		s.members[g.ID] = []*models.User{owner}
		for k := 1; k <= len(users)/3; k++ {
			member := users[(i+k*2)%len(users)]
			if slices.Contains(s.members[g.ID], member) {
				continue
			}
			if _, err := s.factory.AddMember(g, member, models.GroupRoleMember); err != nil {
				return nil, err
			}
			s.members[g.ID] = append(s.members[g.ID], member)
		}
		groups = append(groups, g)
	}
	s.summary.Groups += len(groups)
	slog.Info("seeded groups", slog.Int("groups", len(groups)))
	return groups, nil
}

// SeedEngagement creates numPosts posts, some inside groups, plus comments,
// likes and direct messages between neighbouring users.
func (s *Seeder) SeedEngagement(users []*models.User, groups []*models.Group, numPosts int) error {
	if len(users) == 0 {
		return nil
	}
	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[i%len(users)]
		var groupID *uint
		if len(groups) > 0 && i%4 == 0 {
			g := groups[i%len(groups)]
			if slices.Contains(s.members[g.ID], author) {
				id := g.ID
				groupID = &id
			}
		}
		posts = append(posts, s.factory.BuildPost(author, groupID))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return err
	}
	s.summary.Posts += len(posts)

	for i, post := range posts {
		for k := 1; k <= i%3; k++ {
			commenter := users[(i+k)%len(users)]
			if _, err := s.factory.CreateComment(commenter, post); err != nil {
				return err
			}
			s.summary.Comments++
		}
		for k := 1; k <= (i+1)%4 && k < len(users); k++ {
			liker := users[(i+k)%len(users)]
			if err := s.factory.CreateLike(liker, post); err != nil {
				return err
			}
			s.summary.Likes++
		}
	}

	if len(users) > 1 {
		for i, u := range users {
			if _, err := s.factory.CreateMessage(u, users[(i+1)%len(users)]); err != nil {
				return err
			}
			s.summary.Messages++
		}
	}

	slog.Info("seeded engagement",
		slog.Int("posts", s.summary.Posts),
		slog.Int("comments", s.summary.Comments),
		slog.Int("likes", s.summary.Likes),
		slog.Int("messages", s.summary.Messages))
	return nil
}
