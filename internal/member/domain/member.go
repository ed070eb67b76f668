package domain

import "community_chat_service/pkg/encrypt"

// Role member role
type Role string

const (
	// RoleAdmin may moderate any thread
	RoleAdmin Role = "admin"
	// RoleUser regular member
	RoleUser Role = "user"
)

const (
	// SystemUsername username of the seeded system member
	SystemUsername = "System"
	// SystemEmail email of the seeded system member
	SystemEmail = "system@tgsu.com"
)

// Member 用來表示使用者
type Member struct {
	ID        int64  `json:"-"`
	MemberID  string `json:"memberId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"-"`
	NameColor string `json:"nameColor,omitempty"`
	Role      Role   `json:"role"`
	// AvatarKey object key of the profile picture in the avatar bucket
	AvatarKey string `json:"avatarKey,omitempty"`
	// ProfilePicture presigned url, filled on resolve, never persisted
	ProfilePicture string `json:"-"`
}

// IsAdmin member has the admin role
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// IsPasswordMatch 密碼驗證
func (m *Member) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(m.Password, inputPwd)
}

// MemberQuery join conditions are used to query members
type MemberQuery struct {
	ID       *int64  `db:"id"`
	MemberID *string `db:"member_id"`
	Email    *string `db:"email"`
	Role     *Role   `db:"role"`
}
