package databases

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no document matches a lookup.
	ErrNotFound = errors.New("not found")
	// ErrConstraintViolation is returned when a write breaks a uniqueness,
	// required-field or schema constraint.
	ErrConstraintViolation = errors.New("constraint violation")
)

// documentValidationFailure is the server code for a $jsonSchema rejection.
const documentValidationFailure = 121

// StorageError is a failed persistence operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// storageError wraps a driver error, classifying constraint violations.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConstraintViolation(err) {
		err = fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	return &StorageError{Op: op, Err: err}
}

func isConstraintViolation(err error) bool {
	if errors.Is(err, ErrConstraintViolation) || mongo.IsDuplicateKeyError(err) {
		return true
	}
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(documentValidationFailure)
}
