package runtime

// TypeUsage is a non-owning reference into a Type plus the modifiers
// visible at one declaration site: pointer level, array size, and the
// const/reference flags (§3).
type TypeUsage struct {
	BaseType     *Type
	PointerLevel int  // 0 = value, 1 = T*, 2 = T**, …
	ArraySize    int  // 0 when not an array; >=1 otherwise
	Const        bool // the pointee (or value) is const
	ConstPointer bool // the pointer itself is const (T* const)
	Reference    bool // T&
}

// IsArray reports whether the usage declares a fixed-size array.
func (u TypeUsage) IsArray() bool { return u.ArraySize > 0 }

// IsPointer reports whether the usage is any pointer level.
func (u TypeUsage) IsPointer() bool { return u.PointerLevel > 0 }

// machinePointerSize is the size in bytes Cflat uses for every pointer
// value, matching the host's native pointer width on 64-bit targets.
const machinePointerSize = 8

// Size returns the usage's size in bytes: §3 defines this as
// `pointer_level>0 ? sizeof(machine pointer) * array_size : type.size * array_size`,
// with a bare (non-array) usage treated as array_size==1.
func (u TypeUsage) Size() int {
	n := u.ArraySize
	if n == 0 {
		n = 1
	}
	if u.PointerLevel > 0 {
		return machinePointerSize * n
	}
	if u.BaseType == nil {
		return 0
	}
	return u.BaseType.Size() * n
}

// Equal reports whether two usages are equal per §3: base type, pointer
// level, array size, and reference flag must all match. Const-ness is
// deliberately excluded from Equal (it participates in overload ranking
// but not in usage identity, matching C++'s top-level-const-is-ignored
// rule for non-reference parameters).
func (u TypeUsage) Equal(o TypeUsage) bool {
	return u.BaseType == o.BaseType &&
		u.PointerLevel == o.PointerLevel &&
		u.ArraySize == o.ArraySize &&
		u.Reference == o.Reference
}

// Dereferenced returns the usage one pointer level down (T** -> T*,
// T* -> T). Panics if called on a non-pointer usage; callers must check
// IsPointer first.
func (u TypeUsage) Dereferenced() TypeUsage {
	if u.PointerLevel == 0 {
		panic("runtime: Dereferenced called on non-pointer TypeUsage")
	}
	n := u
	n.PointerLevel--
	n.Reference = false
	n.ArraySize = 0
	return n
}

// Pointed returns the usage one pointer level up (T -> T*), used by
// address-of (&) and array-to-pointer decay.
func (u TypeUsage) Pointed() TypeUsage {
	n := u
	n.PointerLevel++
	n.ArraySize = 0
	n.Reference = false
	return n
}

// ElementUsage returns the usage of one element of an array usage
// (int[4] -> int), preserving const but dropping the array size.
func (u TypeUsage) ElementUsage() TypeUsage {
	n := u
	n.ArraySize = 0
	return n
}

// IsNumeric reports whether the usage names a built-in arithmetic type
// (not void, not pointer, not struct/enum) by checking the category.
func (u TypeUsage) IsNumeric() bool {
	return !u.IsPointer() && u.BaseType != nil && u.BaseType.Category == BuiltIn && !u.BaseType.IsVoid()
}

// IsFloatingPoint reports whether the named built-in is float/double.
func (u TypeUsage) IsFloatingPoint() bool {
	if !u.IsNumeric() {
		return false
	}
	switch u.BaseType.ID.String() {
	case "float", "double":
		return true
	default:
		return false
	}
}

// IsIntegerCategory reports whether the named built-in (or enum) behaves
// as an integer for implicit-conversion purposes (§4.F rank 2/3).
func (u TypeUsage) IsIntegerCategory() bool {
	if u.IsPointer() {
		return false
	}
	if u.BaseType == nil {
		return false
	}
	if u.BaseType.Category == Enum || u.BaseType.Category == EnumClass {
		return true
	}
	if u.BaseType.Category != BuiltIn {
		return false
	}
	return !u.IsFloatingPoint() && !u.BaseType.IsVoid() && u.BaseType.ID.String() != "bool"
}
