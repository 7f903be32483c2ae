package models

import "time"

// GroupRole defines a member's role in a group.
type GroupRole string

const (
	// GroupRoleAdmin can manage the group and its members.
	GroupRoleAdmin GroupRole = "ADMIN"
	// GroupRoleMember is the default role.
	GroupRoleMember GroupRole = "MEMBER"
)

// JoinRequestStatus defines lifecycle states of a group join request.
type JoinRequestStatus string

const (
	// JoinRequestStatusPending indicates the request awaits a decision.
	JoinRequestStatusPending JoinRequestStatus = "PENDING"
	// JoinRequestStatusApproved is the response value that grants membership.
	JoinRequestStatusApproved JoinRequestStatus = "APPROVED"
	// JoinRequestStatusRejected is the response value that denies membership.
	JoinRequestStatusRejected JoinRequestStatus = "REJECTED"
)

// Group is a user-owned community.
type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `json:"image_url"`
	Color       string    `gorm:"size:7" json:"color"`
	IsPrivate   bool      `gorm:"not null;default:false" json:"is_private"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	Owner       *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	MemberCount int       `gorm:"->;-:migration" json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GroupMember grants a user a role in a group.
type GroupMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"not null;uniqueIndex:idx_group_member" json:"group_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_group_member;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      GroupRole `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupJoinRequest is a pending request (or invitation) to join a private group.
// InitiatorID equals UserID for a request and the inviting admin for an invitation.
type GroupJoinRequest struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	GroupID     uint              `gorm:"not null;uniqueIndex:idx_group_join_request" json:"group_id"`
	UserID      uint              `gorm:"not null;uniqueIndex:idx_group_join_request;index" json:"user_id"`
	User        *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	InitiatorID uint              `gorm:"not null" json:"initiator_id"`
	Status      JoinRequestStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// IsInvitation reports whether the request was initiated by someone other than the joining user.
func (r GroupJoinRequest) IsInvitation() bool {
	return r.InitiatorID != r.UserID
}
