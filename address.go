package actormesh

import (
	"fmt"
	"regexp"
)

// pathPattern is the fixed grammar actor://<node>/<type>/<id>, where <id>
// may itself contain slashes.
var pathPattern = regexp.MustCompile(`^actor://([^/]+)/([^/]+)/(.+)$`)

// localNode is the literal node name meaning "unspecified node".
const localNode = "local"

// Address identifies an actor. Two addresses are equal iff their Path
// strings are equal; Path is always the canonical key used by the
// directory, the subscription registry, and the mailbox map.
type Address struct {
	Node string
	Type string
	ID   string
	Path string
}

// NewAddress builds an Address for the given node/type/id and computes its
// canonical Path. An empty node is normalized to "local".
func NewAddress(node, typ, id string) Address {
	if node == "" {
		node = localNode
	}
	return Address{
		Node: node,
		Type: typ,
		ID:   id,
		Path: formatPath(node, typ, id),
	}
}

func formatPath(node, typ, id string) string {
	return fmt.Sprintf("actor://%s/%s/%s", node, typ, id)
}

// ParseAddress parses a path string per the actor:// grammar. It returns
// ErrInvalidActorPath, wrapped with the offending input, on parse failure —
// never a silent zero value.
func ParseAddress(path string) (Address, error) {
	m := pathPattern.FindStringSubmatch(path)
	if m == nil {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidActorPath, path)
	}
	return Address{
		Node: m[1],
		Type: m[2],
		ID:   m[3],
		Path: path,
	}, nil
}

// Equal reports whether two addresses have the same canonical path.
func (a Address) Equal(other Address) bool {
	return a.Path == other.Path
}

// String implements fmt.Stringer, returning the canonical path.
func (a Address) String() string {
	return a.Path
}

// IsZero reports whether a is the zero Address (no address parsed/set).
func (a Address) IsZero() bool {
	return a.Path == ""
}
