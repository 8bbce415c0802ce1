package husk

import "github.com/TheBitDrifter/table"

// factory implements the teacher's factory pattern for husk's free-
// standing constructors.
type factory struct{}

// Factory is the global factory instance, the teacher's own entry point
// for constructors that don't carry a type parameter.
var Factory factory

// NewQuery creates a new, empty Query.
func (f factory) NewQuery() Query {
	return NewQuery()
}

// NewCursor creates a new QueryCursor over w for query.
func (f factory) NewCursor(query QueryNode, w *World) *QueryCursor {
	return NewCursor(query, w)
}

// FactoryNewComponent creates a new AccessibleComponent for type T. Go
// generics can't hang a type parameter off a method, so this stays a
// free function, matching the teacher's factory.go.
func FactoryNewComponent[T any]() AccessibleComponent[T] {
	iden := table.FactoryNewElementType[T]()
	return AccessibleComponent[T]{
		Component: iden,
		Accessor:  table.FactoryNewAccessor[T](iden),
	}
}

// FactoryNewCache creates a new Cache with the specified capacity.
func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}
