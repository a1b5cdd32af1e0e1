// Package slot defines the layout of object slots in the joint scene state vector.
//
// Every slot occupies VarsPerSlot consecutive entries of the state vector in
// the fixed order [confidence, x, y, width, height]. Slot i starts at offset
// i*VarsPerSlot.
package slot

import (
	"fmt"

	"github.com/pkg/errors"
	filter "github.com/scenekf/go-scenekf"
	"gonum.org/v1/gonum/mat"
)

// Offsets of slot variables within a slot block.
const (
	// Conf is class confidence
	Conf = iota
	// X is box x position
	X
	// Y is box y position
	Y
	// W is box width
	W
	// H is box height
	H
	// VarsPerSlot is the number of state variables per slot
	VarsPerSlot
)

// DefaultSlots is the default number of tracked slots.
const DefaultSlots = 80

// Layout describes how slots are laid out in the joint state vector.
type Layout struct {
	slots int
}

// NewLayout creates new Layout for n slots and returns it.
// It returns error if n is not a positive integer.
func NewLayout(n int) (Layout, error) {
	if n <= 0 {
		return Layout{}, errors.Errorf("invalid slot count: %d", n)
	}

	return Layout{slots: n}, nil
}

// DefaultLayout returns Layout with DefaultSlots slots.
func DefaultLayout() Layout {
	return Layout{slots: DefaultSlots}
}

// Slots returns the number of slots.
func (l Layout) Slots() int {
	return l.slots
}

// Dim returns the length of the joint state vector.
func (l Layout) Dim() int {
	return l.slots * VarsPerSlot
}

// Index returns the offset of variable v of slot i in the state vector.
// It panics if either i or v is out of range.
func (l Layout) Index(i, v int) int {
	if i < 0 || i >= l.slots {
		panic(fmt.Sprintf("slot: index %d out of range [0, %d)", i, l.slots))
	}
	if v < 0 || v >= VarsPerSlot {
		panic(fmt.Sprintf("slot: variable %d out of range [0, %d)", v, VarsPerSlot))
	}

	return i*VarsPerSlot + v
}

// Check returns ErrDimensionMismatch if v does not have the layout dimension.
func (l Layout) Check(v mat.Vector) error {
	if v == nil {
		return errors.Wrapf(filter.ErrDimensionMismatch, "nil vector, expected %d", l.Dim())
	}

	if v.Len() != l.Dim() {
		return errors.Wrapf(filter.ErrDimensionMismatch, "vector length %d, expected %d", v.Len(), l.Dim())
	}

	return nil
}

// Box is a single slot: a class confidence and a bounding box.
type Box struct {
	Conf float64
	X    float64
	Y    float64
	W    float64
	H    float64
}

// Pack packs boxes into a new state vector, one box per slot in order.
// Slots past len(boxes) are left zero i.e. no object.
// It returns error if there are more boxes than slots.
func (l Layout) Pack(boxes []Box) (*mat.VecDense, error) {
	if len(boxes) > l.slots {
		return nil, errors.Wrapf(filter.ErrDimensionMismatch, "%d boxes do not fit %d slots", len(boxes), l.slots)
	}

	v := mat.NewVecDense(l.Dim(), nil)
	for i, b := range boxes {
		off := i * VarsPerSlot
		v.SetVec(off+Conf, b.Conf)
		v.SetVec(off+X, b.X)
		v.SetVec(off+Y, b.Y)
		v.SetVec(off+W, b.W)
		v.SetVec(off+H, b.H)
	}

	return v, nil
}

// Unpack unpacks state vector v into boxes, one per slot.
// It returns error if v does not have the layout dimension.
func (l Layout) Unpack(v mat.Vector) ([]Box, error) {
	if err := l.Check(v); err != nil {
		return nil, err
	}

	boxes := make([]Box, l.slots)
	for i := range boxes {
		boxes[i] = box(v, i*VarsPerSlot)
	}

	return boxes, nil
}

// Box returns box of slot i stored in state vector v.
// It returns error if v does not have the layout dimension or i is out of range.
func (l Layout) Box(v mat.Vector, i int) (Box, error) {
	if err := l.Check(v); err != nil {
		return Box{}, err
	}

	if i < 0 || i >= l.slots {
		return Box{}, errors.Wrapf(filter.ErrDimensionMismatch, "invalid slot: %d of %d", i, l.slots)
	}

	return box(v, i*VarsPerSlot), nil
}

func box(v mat.Vector, off int) Box {
	return Box{
		Conf: v.AtVec(off + Conf),
		X:    v.AtVec(off + X),
		Y:    v.AtVec(off + Y),
		W:    v.AtVec(off + W),
		H:    v.AtVec(off + H),
	}
}
