// README: In-app notification documents, one per recipient.
package notification

import (
	"time"

	"lani/internal/types"
)

type Category string

const (
	CategoryOrder   Category = "order"
	CategorySystem  Category = "system"
	CategorySuccess Category = "success"
	CategoryAlert   Category = "alert"
	CategoryFood    Category = "food"
)

// Notification targets exactly one user. Fan-out to several recipients is
// always modelled as independent documents, never a broadcast record.
type Notification struct {
	ID        types.ID
	UserID    types.ID
	Category  Category
	Title     string
	Body      string
	Path      string
	Activity  string
	Read      bool
	CreatedAt time.Time
}
