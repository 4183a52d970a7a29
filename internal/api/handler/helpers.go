package handler

import (
	"errors"
	"fmt"

	"github.com/edvin/skinsight/internal/core"
)

// toLookupError converts a failed credential resolution into a not-found so
// lookup endpoints do not distinguish bad credentials from absent ones.
func toLookupError(err error) error {
	if errors.Is(err, core.ErrUnauthorized) {
		return fmt.Errorf("lookup: %w", core.ErrNotFound)
	}
	return err
}
