package cache

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// KeySeparator joins the segments of a cache key. Resource names never contain it.
const KeySeparator = "_"

var resourcePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateResource reports whether resource can be used to build cache keys.
func ValidateResource(resource string) error {
	err := validation.Validate(resource,
		validation.Required,
		validation.Match(resourcePattern).Error("must be lowercase words joined by hyphens"),
	)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidResource, resource, err)
	}
	return nil
}

const (
	// MaxPage is the highest page number accepted by ValidatePage.
	MaxPage = 1_000_000
	// MaxPageSize is the largest page accepted by ValidatePage.
	MaxPageSize = 100
)

// ValidatePage rejects page numbers and sizes outside 1..MaxPage and 1..MaxPageSize.
func ValidatePage(page, pageSize int) error {
	return validation.Errors{
		"page":     validation.Validate(page, validation.Required, validation.Min(1), validation.Max(MaxPage)),
		"pageSize": validation.Validate(pageSize, validation.Required, validation.Min(1), validation.Max(MaxPageSize)),
	}.Filter()
}

// CollectionKey is the key of the unpaged collection of resource.
func CollectionKey(resource string) string {
	return resource
}

// PageKey is the key of one page of resource.
func PageKey(resource string, page, pageSize int) string {
	return resource + KeySeparator + "page" + strconv.Itoa(page) + KeySeparator + "size" + strconv.Itoa(pageSize)
}

// ItemKey is the key of a single record of resource.
func ItemKey(resource, id string) string {
	return resource + KeySeparator + "id" + KeySeparator + id
}

// Prefix returns the prefix shared by every derived key of resource.
func Prefix(resource string) string {
	return resource + KeySeparator
}

// Owns reports whether key was built for resource.
func Owns(resource, key string) bool {
	if resource == "" {
		return false
	}
	return key == resource || strings.HasPrefix(key, Prefix(resource))
}
