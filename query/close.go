package query

import (
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/pkg/errors"
)

// closeAll closes every non-nil scan and returns the first error.
func closeAll(scans ...scan.Scan) error {
	var firstErr error
	for _, s := range scans {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// asInt and asString adapt a GetVal result to the typed accessors.
func asInt(fieldName string, val any, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	n, ok := val.(int)
	if !ok {
		return 0, errors.Errorf("field %s is not an integer (%T)", fieldName, val)
	}
	return n, nil
}

func asString(fieldName string, val any, err error) (string, error) {
	if err != nil {
		return "", err
	}
	s, ok := val.(string)
	if !ok {
		return "", errors.Errorf("field %s is not a string (%T)", fieldName, val)
	}
	return s, nil
}
