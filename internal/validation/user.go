// Package validation checks inbound payloads against their schemas. Every
// violated field is collected before failing, so one response reports them all.
package validation

import (
	"regexp"
	"strings"

	"github.com/spec-kit/user-orders-service/internal/api/dto"
	apperrors "github.com/spec-kit/user-orders-service/pkg/util/errorutil"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

// CreateUser validates a user-creation payload.
func CreateUser(req dto.CreateUserRequest) error {
	violations := map[string]any{}

	if req.UserID == nil {
		violations["userId"] = "userId is required"
	} else if *req.UserID < 0 {
		violations["userId"] = "userId must not be negative"
	}
	if strings.TrimSpace(req.Username) == "" {
		violations["username"] = "username is required"
	}
	if strings.TrimSpace(req.FullName.FirstName) == "" {
		violations["fullName.firstName"] = "firstName is required"
	}
	if strings.TrimSpace(req.FullName.LastName) == "" {
		violations["fullName.lastName"] = "lastName is required"
	}
	if req.Age == nil {
		violations["age"] = "age is required"
	} else if *req.Age < 0 {
		violations["age"] = "age must not be negative"
	}
	checkEmail(violations, req.Email)
	if len(req.Password) < minPasswordLength {
		violations["password"] = "password must be at least 6 characters"
	}
	checkAddress(violations, req.Address)

	return fail(violations)
}

// UserPatch validates a partial-update payload. Only present fields are
// checked; an empty patch is allowed and leaves the record unchanged.
func UserPatch(req dto.UpdateUserRequest) error {
	violations := map[string]any{}

	if req.UserID != nil && *req.UserID < 0 {
		violations["userId"] = "userId must not be negative"
	}
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		violations["username"] = "username must not be empty"
	}
	if req.FullName != nil {
		if strings.TrimSpace(req.FullName.FirstName) == "" {
			violations["fullName.firstName"] = "firstName is required"
		}
		if strings.TrimSpace(req.FullName.LastName) == "" {
			violations["fullName.lastName"] = "lastName is required"
		}
	}
	if req.Age != nil && *req.Age < 0 {
		violations["age"] = "age must not be negative"
	}
	if req.Email != nil {
		checkEmail(violations, *req.Email)
	}
	if req.Password != nil && len(*req.Password) < minPasswordLength {
		violations["password"] = "password must be at least 6 characters"
	}
	if req.Address != nil {
		checkAddress(violations, *req.Address)
	}

	return fail(violations)
}

// Order validates an order-append payload.
func Order(req dto.OrderPayload) error {
	violations := map[string]any{}

	if strings.TrimSpace(req.ProductName) == "" {
		violations["productName"] = "productName is required"
	}
	if req.Quantity == nil {
		violations["quantity"] = "quantity is required"
	} else if *req.Quantity < 0 {
		violations["quantity"] = "quantity must not be negative"
	}
	if req.Price == nil {
		violations["price"] = "price is required"
	} else if req.Price.IsNegative() {
		violations["price"] = "price must not be negative"
	}

	return fail(violations)
}

func checkEmail(violations map[string]any, email string) {
	if strings.TrimSpace(email) == "" {
		violations["email"] = "email is required"
		return
	}
	if !emailPattern.MatchString(email) {
		violations["email"] = "email must be a valid address"
	}
}

func checkAddress(violations map[string]any, addr dto.AddressPayload) {
	if strings.TrimSpace(addr.Street) == "" {
		violations["address.street"] = "street is required"
	}
	if strings.TrimSpace(addr.City) == "" {
		violations["address.city"] = "city is required"
	}
	if strings.TrimSpace(addr.Country) == "" {
		violations["address.country"] = "country is required"
	}
}

func fail(violations map[string]any) error {
	if len(violations) == 0 {
		return nil
	}
	return apperrors.NewValidationError("Validation Error", violations)
}
