package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
	"github.com/pkg/errors"
)

// Handle addresses a material in a Materials table.
type Handle = asset.Handle[Material]

// Materials is the material asset table shared by entities and the renderer.
type Materials interface {
	// Add stores a material.
	//
	// Parameters:
	//   - m: the material
	//
	// Returns:
	//   - Handle: the material's handle
	Add(m Material) Handle

	// Get resolves a handle.
	//
	// Parameters:
	//   - h: the material handle
	//
	// Returns:
	//   - Material: the material
	//   - error: ErrMaterialNotFound with a stack trace if the handle was removed
	Get(h Handle) (Material, error)

	// Composite resolves a handle that must refer to a CompositeMaterial.
	//
	// Parameters:
	//   - h: the material handle
	//
	// Returns:
	//   - CompositeMaterial: the material
	//   - error: ErrMaterialNotFound or ErrNotComposite, with a stack trace
	Composite(h Handle) (CompositeMaterial, error)

	// Remove releases a material. Later lookups of the handle fail.
	//
	// Parameters:
	//   - h: the material handle
	//
	// Returns:
	//   - error: ErrMaterialNotFound if the handle was already removed
	Remove(h Handle) error

	// Len returns the number of stored materials.
	Len() int

	// Each calls fn for every stored material.
	Each(fn func(h Handle, m Material))
}

type materials struct {
	table asset.Assets[Material]
}

var _ Materials = &materials{}

// NewMaterials creates an empty material table.
//
// Returns:
//   - Materials: the new table
func NewMaterials() Materials {
	return &materials{table: asset.NewAssets[Material]()}
}

func (t *materials) Add(m Material) Handle {
	return t.table.Add(m)
}

func (t *materials) Get(h Handle) (Material, error) {
	m, ok := t.table.Get(h)
	if !ok {
		return nil, errors.WithStack(fmt.Errorf("%w: handle %s", ErrMaterialNotFound, h))
	}
	return m, nil
}

func (t *materials) Composite(h Handle) (CompositeMaterial, error) {
	m, err := t.Get(h)
	if err != nil {
		return nil, err
	}
	c, ok := m.(CompositeMaterial)
	if !ok {
		return nil, errors.WithStack(fmt.Errorf("%w: %s is %T", ErrNotComposite, h, m))
	}
	return c, nil
}

func (t *materials) Remove(h Handle) error {
	if _, ok := t.table.Remove(h); !ok {
		return errors.WithStack(fmt.Errorf("%w: handle %s", ErrMaterialNotFound, h))
	}
	return nil
}

func (t *materials) Len() int {
	return t.table.Len()
}

func (t *materials) Each(fn func(h Handle, m Material)) {
	t.table.Each(fn)
}
