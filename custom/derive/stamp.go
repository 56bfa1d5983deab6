package derive

import (
	"time"

	"gorm.io/gorm"
)

// Clock returns the current time. Tests replace it with a fixed clock.
type Clock func() time.Time

const UpdatedAtColumn = "updated_at"

// Stamper owns created_at and updated_at. Whatever a caller put in those
// fields is overwritten on every write.
type Stamper struct {
	Now Clock
}

func NewStamper(now Clock) *Stamper {
	if now == nil {
		now = time.Now
	}
	return &Stamper{Now: now}
}

// now is kept at the microsecond precision timestamptz stores.
func (s *Stamper) now() time.Time {
	return s.Now().UTC().Truncate(time.Microsecond)
}

// OnCreate stamps both timestamps of a new row with the same instant.
func (s *Stamper) OnCreate(createdAt, updatedAt *time.Time) {
	now := s.now()
	*createdAt = now
	*updatedAt = now
}

// OnUpdate sets updated_at in an update set. The stored value ends up strictly
// greater than the previous one even when the clock has not moved since.
func (s *Stamper) OnUpdate(values map[string]interface{}) map[string]interface{} {
	if values == nil {
		values = make(map[string]interface{})
	}
	values[UpdatedAtColumn] = gorm.Expr(`GREATEST(?, "updated_at" + interval '1 microsecond')`, s.now())
	return values
}
