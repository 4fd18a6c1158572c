package portfolio

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// NotFound reports a missing record of resource.
func NotFound(resource string, id int64) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("%s %d not found", resource, id), goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode("NOT_FOUND").
		WithMetadata(map[string]any{"resource": resource, "id": id})
}

// ValidationError converts a model validation failure.
func ValidationError(err error) error {
	if err == nil {
		return nil
	}
	return goerrors.FromOzzoValidation(err, "invalid request body").
		WithCode(goerrors.CodeBadRequest).
		WithTextCode("VALIDATION_ERROR")
}

func queryError(err error, resource, op string) error {
	if isNoRows(err) {
		return goerrors.Wrap(err, goerrors.CategoryNotFound, resource+" not found").
			WithCode(goerrors.CodeNotFound).
			WithTextCode("NOT_FOUND")
	}
	if isForeignKeyViolation(err) {
		return goerrors.Wrap(err, goerrors.CategoryValidation, resource+" references a missing portfolio user").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode("INVALID_REFERENCE")
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("%s %s failed", resource, op)).
		WithCode(goerrors.CodeInternal).
		WithTextCode("DATABASE_ERROR")
}

func isForeignKeyViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
