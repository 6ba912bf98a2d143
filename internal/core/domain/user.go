package domain

import (
	"strings"
	"time"
)

const RoleCustomer = "customer"

// WishlistEntry is a product reference saved by a user.
type WishlistEntry struct {
	ProductID string    `json:"product"`
	AddedAt   time.Time `json:"addedAt"`
}

// User is a registered shopper. Credentials and reset state never leave the
// process: they are excluded from every JSON encoding.
type User struct {
	ID             string          `json:"id"`
	FullName       string          `json:"fullName"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone,omitempty"`
	PasswordHash   string          `json:"-"`
	Roles          []string        `json:"roles"`
	EmailVerified  bool            `json:"isEmailVerified"`
	Wishlist       []WishlistEntry `json:"wishlist"`
	ResetTokenHash string          `json:"-"`
	ResetExpiresAt time.Time       `json:"-"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Identity is the set of claims carried by a verified session token.
type Identity struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// NormalizeEmail lower-cases and trims an address; emails are unique
// case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasWishlisted reports whether productID is already on the user's wishlist.
func (u *User) HasWishlisted(productID string) bool {
	return WishlistIndex(u.Wishlist, productID) >= 0
}

// WishlistIndex returns the position of productID in entries or -1.
// References are compared in normalised string form.
func WishlistIndex(entries []WishlistEntry, productID string) int {
	want := NormalizeRef(productID)
	if want == "" {
		return -1
	}
	for i, e := range entries {
		if NormalizeRef(e.ProductID) == want {
			return i
		}
	}
	return -1
}

// NormalizeRef canonicalises a product reference for comparison.
func NormalizeRef(ref string) string {
	return strings.ToLower(strings.TrimSpace(ref))
}
