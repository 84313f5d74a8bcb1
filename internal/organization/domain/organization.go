package domain

import "time"

// Org is a tenant. Its creator becomes the first OWNER.
type Org struct {
	ID        string
	Name      string
	CreatedBy string
	CreatedAt time.Time
}
