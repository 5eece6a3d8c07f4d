package shared

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrMalformedID is returned for entity identifiers that are not UUIDs.
var ErrMalformedID = fmt.Errorf("malformed identifier: %w", ErrInvalidArgument)

// ValidateID checks an entity identifier. User ids come from the identity
// provider and are not validated here.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%q: %w", id, ErrMalformedID)
	}
	return nil
}
