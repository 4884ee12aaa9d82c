package docstore

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/aichopaicho/internal/common"
)

// Collection names used under each owner partition.
const (
	CollectionContacts = "contacts"
	CollectionRecords  = "records"
	CollectionTypes    = "types"
	CollectionProfile  = "profile"
)

// Path addresses one document.
type Path struct {
	Owner      string
	Collection string
	ID         string
}

func (p Path) String() string {
	return p.Owner + "/" + p.Collection + "/" + p.ID
}

// Validate rejects empty or slash-containing segments.
func (p Path) Validate() error {
	for name, v := range map[string]string{"owner": p.Owner, "collection": p.Collection, "id": p.ID} {
		if err := validSegment(v); err != nil {
			return fmt.Errorf("%w: %s %v", common.ErrInvalidArgument, name, err)
		}
	}
	return nil
}

// ValidateCollection checks an owner/collection pair used for scans.
func ValidateCollection(owner, collection string) error {
	return Path{Owner: owner, Collection: collection, ID: "x"}.Validate()
}

// ParsePath is the inverse of Path.String.
func ParsePath(s string) (Path, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return Path{}, fmt.Errorf("%w: path %q", common.ErrInvalidArgument, s)
	}
	p := Path{Owner: parts[0], Collection: parts[1], ID: parts[2]}
	return p, p.Validate()
}

func validSegment(s string) error {
	if s == "" {
		return fmt.Errorf("is empty")
	}
	if strings.ContainsAny(s, "/\\") || s == "." || s == ".." {
		return fmt.Errorf("%q is not a valid segment", s)
	}
	return nil
}
