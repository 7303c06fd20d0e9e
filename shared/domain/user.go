package domain

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	Id       UserId
	Email    Email
	Name     string
	PassHash string
	Role     Role
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Credentials struct {
	Email    Email
	Password Password
}

// Session is what a client keeps after a successful login or registration.
// Both fields must be present for the holder to count as logged in.
type Session struct {
	Token string `json:"token"`
	Email Email  `json:"email"`
}

func (s Session) Valid() bool {
	return s.Token != "" && s.Email != ""
}
