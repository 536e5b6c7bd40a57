package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// namespaceForPlatform returns a deterministic UUIDv5 namespace per platform.
func namespaceForPlatform(p Platform) uuid.UUID {
	name := strings.ToLower(strings.TrimSpace(string(p)))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("catalog:"+name))
}

// ItemKey is the case-insensitive composite identity of (platform, id).
func ItemKey(p Platform, id string) uuid.UUID {
	return uuid.NewSHA1(namespaceForPlatform(p), []byte(strings.ToLower(strings.TrimSpace(id))))
}

// Key returns the composite identity of the item.
func (it CatalogItem) Key() uuid.UUID {
	return ItemKey(it.Platform, it.ID)
}
