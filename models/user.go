package models

// User is an application user as stored in the `users` table.
// CognitoSub links the row to its identity provider account; rows without it
// were never registered through Cognito.
type User struct {
	ID         int64  `db:"id" json:"id"`
	Email      string `db:"email" json:"email"`
	Role       string `db:"role" json:"role"`
	CognitoSub string `db:"cognito_sub" json:"cognito_sub,omitempty"`
}

// Roles known to the delivery backend.
const (
	RoleCustomer        = "CUSTOMER"
	RoleRestaurantOwner = "RESTAURANT_OWNER"
	RoleDriver          = "DRIVER"
)

// ShortSub returns the first eight characters of the Cognito subject for display.
func (u User) ShortSub() string {
	if len(u.CognitoSub) <= 8 {
		return u.CognitoSub
	}
	return u.CognitoSub[:8]
}
