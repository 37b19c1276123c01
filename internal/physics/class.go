package physics

import "fmt"

// Class identifies a registered collider class. Classes stand in for the
// type hierarchy of the entities that carry them: an entity accepting a
// class also collides with every class registered as its descendant.
type Class int

// ClassSet is a bitmask over registered classes.
type ClassSet uint64

const maxClasses = 64

// Registry assigns collider classes their bits and precomputes the
// ancestor closure at registration, so membership tests during detection
// are single mask intersections.
type Registry struct {
	names   []string
	closure []ClassSet
	byName  map[string]Class
}

// NewRegistry returns an empty collider-class registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Class)}
}

// Register adds a class under the given name, optionally as a descendant of
// previously registered parents. Registration problems are configuration
// errors and fail immediately.
func (r *Registry) Register(name string, parents ...Class) (Class, error) {
	if name == "" {
		return 0, fmt.Errorf("collider class name must not be empty")
	}
	if _, exists := r.byName[name]; exists {
		return 0, fmt.Errorf("collider class %q already registered", name)
	}
	if len(r.names) >= maxClasses {
		return 0, fmt.Errorf("collider class limit of %d reached", maxClasses)
	}

	class := Class(len(r.names))
	mask := ClassSet(1) << uint(class)
	for _, parent := range parents {
		if parent < 0 || int(parent) >= len(r.names) {
			return 0, fmt.Errorf("collider class %q references unknown parent %d", name, parent)
		}
		mask |= r.closure[parent]
	}

	r.names = append(r.names, name)
	r.closure = append(r.closure, mask)
	r.byName[name] = class
	return class, nil
}

// Lookup resolves a class by name.
func (r *Registry) Lookup(name string) (Class, bool) {
	class, ok := r.byName[name]
	return class, ok
}

// Name returns the registered name for a class.
func (r *Registry) Name(class Class) string {
	if class < 0 || int(class) >= len(r.names) {
		return ""
	}
	return r.names[class]
}

// Closure returns the class bit unioned with every ancestor bit. An entity
// of this class satisfies any accepted-class filter containing one of them.
func (r *Registry) Closure(class Class) ClassSet {
	if class < 0 || int(class) >= len(r.closure) {
		return 0
	}
	return r.closure[class]
}

// Set builds an accepted-class filter from individual classes.
func (r *Registry) Set(classes ...Class) ClassSet {
	var set ClassSet
	for _, class := range classes {
		if class >= 0 && int(class) < len(r.names) {
			set |= ClassSet(1) << uint(class)
		}
	}
	return set
}

// Contains reports whether the filter accepts any class in the closure.
func (s ClassSet) Contains(closure ClassSet) bool {
	return s&closure != 0
}
