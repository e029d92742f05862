package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/user-orders-service/internal/domain"
	"github.com/spec-kit/user-orders-service/internal/service"
)

// FullNamePayload mirrors the fullName subdocument.
type FullNamePayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AddressPayload mirrors the address subdocument.
type AddressPayload struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// OrderPayload is the order-append request body. Numeric fields are pointers
// so validation can tell absent from zero.
type OrderPayload struct {
	ProductName string           `json:"productName"`
	Quantity    *int             `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`
}

// ToOrder converts a validated payload into the domain order.
func (p OrderPayload) ToOrder() domain.Order {
	order := domain.Order{ProductName: p.ProductName}
	if p.Quantity != nil {
		order.Quantity = *p.Quantity
	}
	if p.Price != nil {
		order.Price = *p.Price
	}
	return order
}

// CreateUserRequest is the user-creation request body.
type CreateUserRequest struct {
	UserID   *int64          `json:"userId"`
	Username string          `json:"username"`
	FullName FullNamePayload `json:"fullName"`
	Age      *int            `json:"age"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Address  AddressPayload  `json:"address"`
}

// ToInput converts a validated request into the service registration input.
func (r CreateUserRequest) ToInput() service.RegisterInput {
	input := service.RegisterInput{
		Username: r.Username,
		FullName: domain.FullName{FirstName: r.FullName.FirstName, LastName: r.FullName.LastName},
		Email:    r.Email,
		Password: r.Password,
		Address:  domain.Address{Street: r.Address.Street, City: r.Address.City, Country: r.Address.Country},
	}
	if r.UserID != nil {
		input.UserID = *r.UserID
	}
	if r.Age != nil {
		input.Age = *r.Age
	}
	return input
}

// UpdateUserRequest is the partial-update request body: one optional field
// per mutable attribute.
type UpdateUserRequest struct {
	UserID   *int64           `json:"userId"`
	Username *string          `json:"username"`
	FullName *FullNamePayload `json:"fullName"`
	Age      *int             `json:"age"`
	Email    *string          `json:"email"`
	Password *string          `json:"password"`
	Address  *AddressPayload  `json:"address"`
}

// ToPatch converts a validated request into the domain patch.
func (r UpdateUserRequest) ToPatch() domain.UserPatch {
	patch := domain.UserPatch{
		UserID:   r.UserID,
		Username: r.Username,
		Age:      r.Age,
		Email:    r.Email,
		Password: r.Password,
	}
	if r.FullName != nil {
		patch.FullName = &domain.FullName{FirstName: r.FullName.FirstName, LastName: r.FullName.LastName}
	}
	if r.Address != nil {
		patch.Address = &domain.Address{Street: r.Address.Street, City: r.Address.City, Country: r.Address.Country}
	}
	return patch
}

// UserResponse is the stored user shaped for responses. Password and orders
// are stripped here even though the store already projects them away, so a
// bypassed projection can never leak them.
type UserResponse struct {
	UserID    int64           `json:"userId"`
	Username  string          `json:"username"`
	FullName  FullNamePayload `json:"fullName"`
	Age       int             `json:"age"`
	Email     string          `json:"email"`
	Address   AddressPayload  `json:"address"`
	IsDeleted bool            `json:"isDeleted"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewUserResponse shapes a stored user for the envelope.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Username:  u.Username,
		FullName:  FullNamePayload{FirstName: u.FullName.FirstName, LastName: u.FullName.LastName},
		Age:       u.Age,
		Email:     u.Email,
		Address:   AddressPayload{Street: u.Address.Street, City: u.Address.City, Country: u.Address.Country},
		IsDeleted: u.IsDeleted,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// OrdersResponse wraps a user's order list.
type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// OrderTotalResponse wraps the computed total. A null totalPrice means the
// user has no orders.
type OrderTotalResponse struct {
	TotalPrice *decimal.Decimal `json:"totalPrice"`
}
