package seagrid

// Registry is an explicit, ordered set of conventions to detect against.
// There is no ambient mutable registration: callers compose the registry
// they want and pass it around.
type Registry struct {
	conventions []Convention
}

// NewRegistry builds a registry over the given conventions.
func NewRegistry(convs ...Convention) *Registry {
	return &Registry{
		conventions: append([]Convention(nil), convs...),
	}
}

// Conventions returns the registered conventions in order.
func (r *Registry) Conventions() []Convention {
	return append([]Convention(nil), r.conventions...)
}

// Detect runs every convention's predicate and returns the single claimant.
// No claimant yields ErrDetectionFailed. Several claimants yield a
// DetectionError naming them all, wrapping ErrDetectionAmbiguous: ambiguity
// is surfaced to the caller, never resolved by precedence.
func (r *Registry) Detect(ds *Dataset) (Convention, error) {
	var found Convention
	var claimants []string
	for _, conv := range r.conventions {
		if conv.Detect(ds) {
			found = conv
			claimants = append(claimants, conv.Name())
		}
	}
	switch len(claimants) {
	case 1:
		return found, nil
	case 0:
		return nil, &DetectionError{}
	default:
		return nil, &DetectionError{Conventions: claimants}
	}
}

// Bind detects the dataset's convention and binds a grid with it.
func (r *Registry) Bind(ds *Dataset, opts *BindOptions) (*Grid, error) {
	conv, err := r.Detect(ds)
	if err != nil {
		return nil, err
	}
	return conv.Bind(ds, opts)
}

// DefaultRegistry returns a registry over the bundled conventions:
// staggered, 1-D and 2-D CF grids, and unstructured meshes.
func DefaultRegistry() *Registry {
	return NewRegistry(
		DefaultStaggered(),
		NewCFGrid1D(),
		NewCFGrid2D(),
		NewMesh(),
	)
}

// Detect runs detection over a fresh default registry.
func Detect(ds *Dataset) (Convention, error) {
	return DefaultRegistry().Detect(ds)
}

// Bind detects and binds over a fresh default registry.
func Bind(ds *Dataset, opts *BindOptions) (*Grid, error) {
	return DefaultRegistry().Bind(ds, opts)
}
