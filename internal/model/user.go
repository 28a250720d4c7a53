package model

// Role - роль пользователя.
type Role string

const (
	RoleUser    Role = "user"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

// Valid сообщает, является ли роль одной из известных.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePremium, RoleAdmin:
		return true
	}
	return false
}

// AdminID - идентификатор канонического администратора, создаваемого при первом запуске.
const AdminID = "admin_001"

// User - учётная запись в том виде, в котором она лежит в документе (вместе с хешем пароля).
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Role         Role   `json:"role"`
	IsBlocked    bool   `json:"isBlocked,omitempty"`
	Avatar       string `json:"avatar"`
	Bio          string `json:"bio"`
}

// PublicUser - пользователь без секретов, отдаётся наружу из сервиса.
type PublicUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	IsBlocked bool   `json:"isBlocked,omitempty"`
	Avatar    string `json:"avatar"`
	Bio       string `json:"bio"`
}

// Public возвращает копию пользователя без хеша пароля.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsBlocked: u.IsBlocked,
		Avatar:    u.Avatar,
		Bio:       u.Bio,
	}
}
