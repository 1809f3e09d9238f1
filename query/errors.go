package query

import (
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/pkg/errors"
)

// ErrFieldNotFound reports a reference to a field missing from a schema. It
// is the same error the storage scans return.
var ErrFieldNotFound = record.ErrFieldNotFound

func fieldNotFound(fieldName string) error {
	return errors.Wrapf(ErrFieldNotFound, "field %q", fieldName)
}
