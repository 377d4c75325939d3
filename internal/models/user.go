package models

import "time"

// Role distinguishes customers from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the account document. Cart and order history live inside the row and are always
// persisted together with it.
type User struct {
	ID           string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string         `json:"username" gorm:"uniqueIndex;type:varchar(20);not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password     string         `json:"-" gorm:"type:varchar(255);not null"`
	Role         Role           `json:"role" gorm:"type:varchar(10);not null;default:user"`
	Cart         []CartLineItem `json:"cart" gorm:"serializer:json;type:text"`
	OrderHistory []Order        `json:"orderHistory" gorm:"serializer:json;type:text"`
	// Version guards whole-document writes against concurrent modification.
	Version   int64     `json:"-" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublicUser is the projection returned to clients.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// Clone returns a deep copy so callers never share cart or history slices.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Cart = CloneItems(u.Cart)
	if u.OrderHistory != nil {
		out.OrderHistory = make([]Order, len(u.OrderHistory))
		for i, order := range u.OrderHistory {
			out.OrderHistory[i] = order.Clone()
		}
	}
	return &out
}
