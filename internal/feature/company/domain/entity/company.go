// Package entity defines the domain entities for the company feature.
package entity

// MaxUserLinks is the number of user slots a company carries (user1..user3).
const MaxUserLinks = 3

// Company represents a client company record.
// User references are weak: they point at records owned by the user directory
// and are cleared, never cascaded, when that user is removed.
type Company struct {
	// ID is the caller-assigned primary identifier (e.g. "COMP001").
	ID string

	// Name is the display name of the company.
	Name string

	// Address is optional free text; nil means absent.
	Address *string

	// Email must be unique across all companies.
	Email string

	// Phone is optional; an empty string means absent.
	Phone string

	User1ID *uint
	User2ID *uint
	User3ID *uint
}

// UserIDs returns the three user slots in order.
func (c *Company) UserIDs() [MaxUserLinks]*uint {
	return [MaxUserLinks]*uint{c.User1ID, c.User2ID, c.User3ID}
}

// SetUserID assigns slot i (0-based) to id.
func (c *Company) SetUserID(i int, id *uint) {
	switch i {
	case 0:
		c.User1ID = id
	case 1:
		c.User2ID = id
	case 2:
		c.User3ID = id
	}
}

// DetachUser clears every slot that references userID and reports whether anything changed.
func (c *Company) DetachUser(userID uint) bool {
	changed := false
	for i, id := range c.UserIDs() {
		if id != nil && *id == userID {
			c.SetUserID(i, nil)
			changed = true
		}
	}
	return changed
}
