package runtime

// Obj2 is an opaque handle to a 2D object owned by the geometry kernel.
type Obj2 = any

// Obj3 is an opaque handle to a 3D object owned by the geometry kernel.
type Obj3 = any

// Vec2 is a pair of reals.
type Vec2 [2]float64

// Vec3 is a triple of reals.
type Vec3 [3]float64

// State is the computation state threaded through statement evaluation: the
// variable environment plus the 2D and 3D objects accumulated so far.
type State struct {
	Env  *Environment
	Obj2 []Obj2
	Obj3 []Obj3
}

// NewState returns the empty program state.
func NewState() State {
	return State{Env: NewEnvironment(nil)}
}

// Scoped returns an empty accumulator pair sharing env.
func Scoped(env *Environment) State {
	return State{Env: env}
}

// AddObj2 returns a copy of s with objs appended to the 2D accumulator. The
// receiver's backing array is never written.
func (s State) AddObj2(objs ...Obj2) State {
	if len(objs) == 0 {
		return s
	}
	next := make([]Obj2, 0, len(s.Obj2)+len(objs))
	next = append(next, s.Obj2...)
	s.Obj2 = append(next, objs...)
	return s
}

// AddObj3 returns a copy of s with objs appended to the 3D accumulator.
func (s State) AddObj3(objs ...Obj3) State {
	if len(objs) == 0 {
		return s
	}
	next := make([]Obj3, 0, len(s.Obj3)+len(objs))
	next = append(next, s.Obj3...)
	s.Obj3 = append(next, objs...)
	return s
}

// Empty reports whether no objects have been accumulated.
func (s State) Empty() bool {
	return len(s.Obj2) == 0 && len(s.Obj3) == 0
}
