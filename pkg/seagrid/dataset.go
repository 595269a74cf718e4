package seagrid

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// Variable is one named array in a dataset, with its dimension names and
// attributes. Numeric payloads are stored as dense float64 arrays regardless
// of their on-disk type; integer payloads such as mesh connectivity are
// widened on load.
type Variable struct {
	Name  string
	Dims  []string
	Attrs map[string]interface{}
	Data  *sparse.DenseArray
}

// NewVariable builds a variable with an empty attribute map.
func NewVariable(name string, dims []string, data *sparse.DenseArray) *Variable {
	return &Variable{
		Name:  name,
		Dims:  dims,
		Attrs: make(map[string]interface{}),
		Data:  data,
	}
}

// Attr returns the named attribute.
func (v *Variable) Attr(name string) (interface{}, bool) {
	if v.Attrs == nil {
		return nil, false
	}
	a, ok := v.Attrs[name]
	return a, ok
}

// StringAttr returns the named attribute if it holds a string.
func (v *Variable) StringAttr(name string) (string, bool) {
	a, ok := v.Attr(name)
	if !ok {
		return "", false
	}
	s, ok := a.(string)
	return s, ok
}

// FloatAttr returns the named attribute coerced to float64. Scalar numeric
// values and single-element numeric slices both qualify; anything else does
// not.
func (v *Variable) FloatAttr(name string) (float64, bool) {
	a, ok := v.Attr(name)
	if !ok {
		return 0, false
	}
	switch x := a.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case []float64:
		if len(x) == 1 {
			return x[0], true
		}
	case []float32:
		if len(x) == 1 {
			return float64(x[0]), true
		}
	case []int32:
		if len(x) == 1 {
			return float64(x[0]), true
		}
	case []int16:
		if len(x) == 1 {
			return float64(x[0]), true
		}
	}
	return 0, false
}

// FillValue returns the variable's fill value, honouring _FillValue first
// and missing_value as a fallback.
func (v *Variable) FillValue() (float64, bool) {
	if f, ok := v.FloatAttr("_FillValue"); ok {
		return f, true
	}
	return v.FloatAttr("missing_value")
}

// Shape returns the variable's dimension lengths.
func (v *Variable) Shape() []int {
	if v.Data == nil {
		return nil
	}
	return v.Data.Shape
}

// Dataset is an in-memory collection of variables sharing named dimensions,
// the unit a convention binds to. It records variables in insertion order
// and checks that variables agree on the length of every dimension they
// share.
type Dataset struct {
	names []string
	vars  map[string]*Variable
	dims  map[string]int
	attrs map[string]interface{}
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		vars:  make(map[string]*Variable),
		dims:  make(map[string]int),
		attrs: make(map[string]interface{}),
	}
}

// AddVariable adds v to the dataset. It fails if a variable with the same
// name exists, if the payload shape does not line up with the dimension
// names, or if a shared dimension would change length.
func (d *Dataset) AddVariable(v *Variable) error {
	if v == nil || v.Data == nil {
		return fmt.Errorf("seagrid: variable must carry data")
	}
	if _, ok := d.vars[v.Name]; ok {
		return fmt.Errorf("seagrid: variable %q already present", v.Name)
	}
	if len(v.Dims) != len(v.Data.Shape) {
		return fmt.Errorf("seagrid: variable %q: %d dimension names for %d axes",
			v.Name, len(v.Dims), len(v.Data.Shape))
	}
	for i, dim := range v.Dims {
		if have, ok := d.dims[dim]; ok && have != v.Data.Shape[i] {
			return fmt.Errorf("seagrid: variable %q: dimension %q is %d, dataset has %d",
				v.Name, dim, v.Data.Shape[i], have)
		}
	}
	for i, dim := range v.Dims {
		d.dims[dim] = v.Data.Shape[i]
	}
	d.names = append(d.names, v.Name)
	d.vars[v.Name] = v
	return nil
}

// Variable returns the named variable, or nil if the dataset does not have
// it.
func (d *Dataset) Variable(name string) *Variable {
	return d.vars[name]
}

// HasVariable reports whether the named variable is present.
func (d *Dataset) HasVariable(name string) bool {
	_, ok := d.vars[name]
	return ok
}

// Variables returns the variable names in insertion order.
func (d *Dataset) Variables() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Dim returns the length of the named dimension.
func (d *Dataset) Dim(name string) (int, bool) {
	n, ok := d.dims[name]
	return n, ok
}

// SetAttr sets a dataset-level attribute.
func (d *Dataset) SetAttr(name string, value interface{}) {
	d.attrs[name] = value
}

// Attr returns a dataset-level attribute.
func (d *Dataset) Attr(name string) (interface{}, bool) {
	a, ok := d.attrs[name]
	return a, ok
}

// StringAttr returns a dataset-level attribute if it holds a string.
func (d *Dataset) StringAttr(name string) (string, bool) {
	a, ok := d.attrs[name]
	if !ok {
		return "", false
	}
	s, ok := a.(string)
	return s, ok
}

// Without returns a dataset holding every variable except the named ones.
// Variables are shared with the receiver, not copied.
func (d *Dataset) Without(names ...string) *Dataset {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := NewDataset()
	for name, value := range d.attrs {
		out.SetAttr(name, value)
	}
	for _, name := range d.names {
		if drop[name] {
			continue
		}
		out.names = append(out.names, name)
		out.vars[name] = d.vars[name]
	}
	for dim, n := range d.dims {
		out.dims[dim] = n
	}
	return out
}

// Copy returns a deep copy of the dataset. Variable payloads are copied, so
// mutating the copy leaves the receiver untouched.
func (d *Dataset) Copy() *Dataset {
	out := NewDataset()
	for name, value := range d.attrs {
		out.SetAttr(name, value)
	}
	for _, name := range d.names {
		v := d.vars[name]
		data := sparse.ZerosDense(v.Data.Shape...)
		copy(data.Elements, v.Data.Elements)
		nv := NewVariable(v.Name, append([]string(nil), v.Dims...), data)
		for k, a := range v.Attrs {
			nv.Attrs[k] = a
		}
		out.names = append(out.names, name)
		out.vars[name] = nv
	}
	for dim, n := range d.dims {
		out.dims[dim] = n
	}
	return out
}
