package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FullName is the user's first/last name pair.
type FullName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Address is the user's postal address.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Order is a line-item owned by a user. Orders have no identity of their
// own: they are appended to a user and never updated or removed individually.
type Order struct {
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// User is the domain model for a stored user record. Password always holds
// the bcrypt hash, never a plaintext value.
type User struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	FullName  FullName  `json:"fullName"`
	Age       int       `json:"age"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Address   Address   `json:"address"`
	IsDeleted bool      `json:"isDeleted"`
	Orders    []Order   `json:"orders,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummary is the listing projection: a fixed field whitelist that never
// carries password, orders, identifiers or audit fields.
type UserSummary struct {
	Username string   `json:"username"`
	FullName FullName `json:"fullName"`
	Age      int      `json:"age"`
	Email    string   `json:"email"`
	Address  Address  `json:"address"`
}

// UserDetail is the single-record projection returned by lookups.
type UserDetail struct {
	UserID   int64    `json:"userId"`
	Username string   `json:"username"`
	FullName FullName `json:"fullName"`
	Age      int      `json:"age"`
	Email    string   `json:"email"`
	Address  Address  `json:"address"`
}

// UserPatch carries a partial update: one optional field per mutable
// attribute. Absent fields leave the stored value untouched.
type UserPatch struct {
	UserID   *int64
	Username *string
	FullName *FullName
	Age      *int
	Email    *string
	Password *string
	Address  *Address
}

// Empty reports whether the patch carries no fields at all.
func (p UserPatch) Empty() bool {
	return p.UserID == nil && p.Username == nil && p.FullName == nil &&
		p.Age == nil && p.Email == nil && p.Password == nil && p.Address == nil
}

// OrderAppendResult reports the outcome of an order append.
type OrderAppendResult struct {
	Acknowledged  bool
	MatchedCount  int64
	ModifiedCount int64
}
