package model

import "time"

type Contact struct {
	ID        int64
	TenantID  int64
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns the display name used in outbound messages.
func (c *Contact) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// HasEmail reports whether the contact can be reached over email.
func (c *Contact) HasEmail() bool {
	return c.Email != nil && *c.Email != ""
}

// HasPhone reports whether the contact can be reached over SMS.
func (c *Contact) HasPhone() bool {
	return c.Phone != nil && *c.Phone != ""
}
