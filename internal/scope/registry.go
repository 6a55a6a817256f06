package scope

import (
	"fmt"
)

// Registry is the process-wide scope mapping table. Mappings are registered
// during startup; Freeze is called before the web service starts serving and
// the registry is read-only from then on, so request handling needs no
// synchronization.
type Registry struct {
	byName map[Name]*Mapping
	byType map[string]*Mapping
	order  []Name
	frozen bool
}

// NewRegistry creates an empty scope registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[Name]*Mapping),
		byType: make(map[string]*Mapping),
	}
}

// Register adds a mapping to the registry. It fails on duplicates,
// incomplete mappings and after Freeze.
func (r *Registry) Register(m Mapping) error {
	if r.frozen {
		return ErrRegistryFrozen
	}

	if m.Name == "" || m.Resource == nil || m.SerializeKey == nil || m.Find == nil {
		return fmt.Errorf("%w: scope %q", ErrIncompleteMapping, m.Name)
	}

	m.resourceType = baseType(m.Resource)

	typeKey := m.resourceType.String()
	if _, exists := r.byName[m.Name]; exists {
		return fmt.Errorf("%w: name %q", ErrDuplicateScope, m.Name)
	}

	if _, exists := r.byType[typeKey]; exists {
		return fmt.Errorf("%w: resource type %s", ErrDuplicateScope, typeKey)
	}

	r.byName[m.Name] = &m
	r.byType[typeKey] = &m
	r.order = append(r.order, m.Name)

	return nil
}

// Freeze marks the registry immutable.
func (r *Registry) Freeze() {
	r.frozen = true
}

// ByName returns the mapping registered under the given scope name.
func (r *Registry) ByName(n Name) (*Mapping, error) {
	m, ok := r.byName[n]
	if !ok {
		return nil, &LookupError{Name: n}
	}

	return m, nil
}

// ByResource returns the mapping registered for the resource's runtime
// type. Pointer types are normalized before the lookup.
func (r *Registry) ByResource(resource any) (*Mapping, error) {
	t := baseType(resource)
	if t == nil {
		return nil, &LookupError{}
	}

	m, ok := r.byType[t.String()]
	if !ok {
		return nil, &LookupError{Type: t}
	}

	return m, nil
}

// Resolve applies the scope resolution rule to a Ref: an explicit name is
// used directly, otherwise the carried resource's type is looked up.
func (r *Registry) Resolve(ref Ref) (*Mapping, error) {
	if ref.name != "" {
		return r.ByName(ref.name)
	}

	return r.ByResource(ref.resource)
}

// Names returns the registered scope names in registration order.
func (r *Registry) Names() []Name {
	out := make([]Name, len(r.order))
	copy(out, r.order)

	return out
}
