// Package seed creates demo data for development databases and tests.
package seed

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"socialhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "Seeded-Passw0rd!"

// Options tunes what the factory generates.
type Options struct {
	// DryRun assigns synthetic IDs instead of writing to the database.
	DryRun bool
	// FastHash hashes passwords with the minimum bcrypt cost.
	FastHash bool
	// MaxDays spreads post timestamps over the last MaxDays days.
	MaxDays int
	// Seed makes the generated data reproducible; zero picks a random seed.
	Seed int64
}

var nonUsernameChars = regexp.MustCompile(`[^a-z0-9]`)

// Factory builds domain entities and persists them.
type Factory struct {
	db     *gorm.DB
	opts   Options
	faker  *gofakeit.Faker
	hash   string
	nextID uint
}

// NewFactory creates a Factory bound to db. db may be nil in DryRun mode.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	cost := bcrypt.DefaultCost
	if opts.FastHash {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(opts.Seed),
		hash:   string(hash),
		nextID: 1000,
	}, nil
}

func (f *Factory) save(value any, setID func(uint)) error {
	if f.opts.DryRun {
		f.nextID++
		setID(f.nextID)
		return nil
	}
	return f.db.Create(value).Error
}

// pastTime returns a random moment within the last MaxDays days.
func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

// BuildUser returns an unsaved user with a valid, probably unique username.
func (f *Factory) BuildUser() *models.User {
	first := f.faker.FirstName()
	last := f.faker.LastName()
	base := nonUsernameChars.ReplaceAllString(strings.ToLower(first+last), "")
	if len(base) < 2 {
		base = "user"
	}
	if len(base) > 20 {
		base = base[:20]
	}
	username := fmt.Sprintf("%s%d", base, f.faker.Number(1000, 99999))
	return &models.User{
		Username:      username,
		Email:         username + "@example.com",
		Password:      f.hash,
		FirstName:     first,
		LastName:      last,
		City:          f.faker.City(),
		Bio:           f.faker.Sentence(10),
		Avatar:        fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		EmailVerified: true,
	}
}

// CreateUser persists a generated user. Overrides run before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser()
	for _, override := range overrides {
		override(user)
	}
	if err := f.save(user, func(id uint) { user.ID = id }); err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return user, nil
}

// CreateFriendship persists a directed edge from requester to addressee.
func (f *Factory) CreateFriendship(requester, addressee *models.User, status models.FriendStatus) (*models.Friend, error) {
	edge := &models.Friend{UserID: requester.ID, FriendID: addressee.ID, Status: status}
	if status == models.FriendStatusAccepted {
		at := f.pastTime()
		edge.AcceptedAt = &at
	}
	if err := f.save(edge, func(id uint) { edge.ID = id }); err != nil {
		return nil, fmt.Errorf("create friendship %d->%d: %w", requester.ID, addressee.ID, err)
	}
	return edge, nil
}

// CreateGroup persists a group owned by owner, with owner as its first admin.
func (f *Factory) CreateGroup(owner *models.User, private bool) (*models.Group, error) {
	group := &models.Group{
		Name:        strings.TrimSpace(f.faker.HipsterWord() + " " + f.faker.Noun() + " club"),
		Description: f.faker.Paragraph(1, 2, 12, " "),
		Color:       fmt.Sprintf("#%06x", f.faker.Number(0, 0xFFFFFF)),
		IsPrivate:   private,
		OwnerID:     owner.ID,
	}
	if err := f.save(group, func(id uint) { group.ID = id }); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	if _, err := f.AddMember(group, owner, models.GroupRoleAdmin); err != nil {
		return nil, err
	}
	return group, nil
}

// AddMember persists a membership.
func (f *Factory) AddMember(group *models.Group, user *models.User, role models.GroupRole) (*models.GroupMember, error) {
	member := &models.GroupMember{GroupID: group.ID, UserID: user.ID, Role: role}
	if err := f.save(member, func(id uint) { member.ID = id }); err != nil {
		return nil, fmt.Errorf("add member %d to group %d: %w", user.ID, group.ID, err)
	}
	return member, nil
}

// BuildPost returns an unsaved post by user with a CreatedAt in the past.
func (f *Factory) BuildPost(user *models.User, groupID *uint) *models.Post {
	return &models.Post{
		Title:     f.faker.Sentence(5),
		Content:   f.faker.Paragraph(1, 3, 12, "\n"),
		ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID()),
		UserID:    user.ID,
		GroupID:   groupID,
		CreatedAt: f.pastTime(),
	}
}

// CreatePostsBatch persists posts in a single statement.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		slog.Debug("dry-run: skipped post batch", slog.Int("count", len(posts)))
		return nil
	}
	if err := f.db.Omit("User").Create(&posts).Error; err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	return nil
}

// CreateComment persists a comment by user on post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{Content: f.faker.Sentence(8), UserID: user.ID, PostID: post.ID}
	if err := f.save(comment, func(id uint) { comment.ID = id }); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// CreateLike persists a like by user on post.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	if err := f.save(like, func(id uint) { like.ID = id }); err != nil {
		return fmt.Errorf("create like: %w", err)
	}
	return nil
}

// CreateMessage persists a direct message from sender to receiver.
func (f *Factory) CreateMessage(sender, receiver *models.User) (*models.Message, error) {
	msg := &models.Message{SenderID: sender.ID, ReceiverID: receiver.ID, Content: f.faker.Sentence(10)}
	if err := f.save(msg, func(id uint) { msg.ID = id }); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}
