package catalog

// CollectionKind classifies how values are added to a collection member.
type CollectionKind uint8

const (
	// NotCollection marks a single-valued member.
	NotCollection CollectionKind = iota
	// List marks an ordered collection implementing ListAppender.
	List
	// Set marks a collection implementing SetAdder.
	Set
	// Keyed marks a dictionary-like collection implementing KeyedInserter.
	Keyed
)

// String returns a stable name for the kind.
func (k CollectionKind) String() string {
	switch k {
	case NotCollection:
		return "single"
	case List:
		return "list"
	case Set:
		return "set"
	case Keyed:
		return "keyed"
	default:
		return "unknown"
	}
}

// ParseCollectionKind maps a name produced by String back to its kind.
func ParseCollectionKind(name string) (CollectionKind, bool) {
	switch name {
	case "", "single":
		return NotCollection, true
	case "list":
		return List, true
	case "set":
		return Set, true
	case "keyed", "map", "dictionary":
		return Keyed, true
	default:
		return NotCollection, false
	}
}

// ListAppender is the capability of ordered collections.
type ListAppender interface {
	Append(value any) error
}

// SetAdder is the capability of set-like collections.
type SetAdder interface {
	Add(value any) error
}

// KeyedInserter is the capability of dictionary-like collections.
type KeyedInserter interface {
	Insert(key, value any) error
}
