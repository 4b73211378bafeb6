package models

// Built-in class names.
const (
	ClassBaseModel = "BaseModel"
	ClassUser      = "User"
	ClassState     = "State"
	ClassCity      = "City"
	ClassAmenity   = "Amenity"
	ClassPlace     = "Place"
	ClassReview    = "Review"
)

// DefaultClasses lists the classes known to DefaultRegistry.
var DefaultClasses = []string{
	ClassBaseModel,
	ClassUser,
	ClassState,
	ClassCity,
	ClassAmenity,
	ClassPlace,
	ClassReview,
}

// DefaultRegistry returns a registry with every built-in class.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, name := range DefaultClasses {
		r.Register(name, factoryFor(name))
	}
	return r
}

func factoryFor(class string) Factory {
	return func() *Instance {
		return New(class)
	}
}
