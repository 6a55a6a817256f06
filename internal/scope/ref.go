package scope

// Ref identifies a scope either explicitly by name or implicitly through a
// resource instance whose runtime type is looked up in the registry.
type Ref struct {
	name     Name
	resource any
}

// ByName builds a Ref carrying an explicit scope name.
func ByName(n Name) Ref {
	return Ref{name: n}
}

// ByResource builds a Ref whose scope is inferred from the resource's
// runtime type.
func ByResource(resource any) Ref {
	return Ref{resource: resource}
}

// WithResource returns a copy of the Ref carrying the given resource, e.g.
// scope.ByName("admin").WithResource(adm) for an explicit scope with an
// explicit resource.
func (r Ref) WithResource(resource any) Ref {
	r.resource = resource
	return r
}

// Resource returns the resource carried by the Ref, or nil.
func (r Ref) Resource() any {
	return r.resource
}
