// README: User profiles paired 1:1 with auth identities.
package user

import (
	"time"

	"lani/internal/types"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleRider    Role = "rider"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleRider
}

// User is the profile document keyed by the auth identity UID. Role never
// changes after registration. City and Position are rider-only: a rider with
// no city is invisible to matching, and Position tracks the last location
// ping while the rider is active.
type User struct {
	ID        types.ID
	Name      string
	Email     string
	Phone     string
	Role      Role
	City      string
	Position  *types.Point
	CreatedAt time.Time
}
