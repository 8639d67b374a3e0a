package runtime

import "fmt"

// Kind classifies a Value's storage per §3: exactly one of these holds
// at any time.
type Kind int

const (
	// Uninitialized values own no storage.
	Uninitialized Kind = iota
	// Stack values live on the EnvironmentStack; they must be released
	// while they are still the stack's top slot.
	Stack
	// Heap values own a heap allocation sized to their TypeUsage.
	Heap
	// External values alias storage owned by someone else: a host
	// variable, an enclosing object's member, or a by-reference
	// argument.
	External
)

func (k Kind) String() string {
	switch k {
	case Uninitialized:
		return "uninitialized"
	case Stack:
		return "stack"
	case Heap:
		return "heap"
	case External:
		return "external"
	default:
		return "invalid"
	}
}

// InitHint records how an output Value should be promoted the first
// time something writes into it (§4.E): Stack-hinted locals acquire
// stack storage, everything else defaults to heap unless the target
// usage is a reference, in which case it becomes External instead.
type InitHint int

const (
	HintNone InitHint = iota
	HintStack
)

// payload is the boxed Go representation backing a Value's bytes. Raw
// byte-buffer arithmetic isn't idiomatic Go, so Cflat represents a
// value's content as a tagged Go value instead of a []byte:
// int64/float64/bool/byte for scalars,
// a pointer address (Addr) for pointers, and a *StructInstance for
// struct/class objects. The Kind + stack-slot bookkeeping below is what
// preserves the aliasing and lifetime semantics §3 actually requires;
// the payload representation is just the physical encoding.
type payload = any

// Addr is Cflat's model of a raw pointer: it names a Value elsewhere in
// the interpreter (on the stack, the heap, or external) that the
// pointer's bytes would have pointed at in real C++. A nil Addr is a
// null pointer.
//
// Elems/Index are populated only when the address was produced by
// array-to-pointer decay or `&arr[i]`: they let pointer arithmetic
// (§4.J UnaryOperation "++/-- on pointers advance by the pointee size",
// ArrayElementAccess "for pointers, compute base + index*sizeof(element)")
// walk the backing array without Cflat needing raw byte arithmetic over
// Go's garbage-collected heap.
type Addr struct {
	Target *Value
	Elems  []*Value
	Index  int
}

// StructInstance is the boxed payload of a struct/class-typed Value:
// an ordered set of field slots, one per registered Member (flattened
// across base classes at FindMember-resolved offsets), keyed by the
// member's byte offset so MemberAccess can address them the same way a
// byte-offset model would, without any raw byte arithmetic.
type StructInstance struct {
	Type   *Type
	Fields map[int]*Value // offset -> field value
}

// NewStructInstance allocates zero-valued field slots for every member
// of t and its bases, keyed by cumulative offset.
func NewStructInstance(t *Type) *StructInstance {
	si := &StructInstance{Type: t, Fields: make(map[int]*Value)}
	si.initFields(t, 0)
	return si
}

func (si *StructInstance) initFields(t *Type, base int) {
	for _, m := range t.Members {
		off := base + m.Offset
		si.Fields[off] = &Value{Usage: m.Usage, Kind: External}
	}
	for _, b := range t.Bases {
		si.initFields(b.Type, base+b.Offset)
	}
}

// Field returns the field slot at the given cumulative offset.
func (si *StructInstance) Field(offset int) (*Value, bool) {
	v, ok := si.Fields[offset]
	return v, ok
}

// Value owns or borrows storage interpreted under a TypeUsage (§3).
type Value struct {
	Usage   TypeUsage
	Kind    Kind
	Hint    InitHint
	data    payload
	stack   *EnvironmentStack // non-nil for Stack-kind values
	slotIdx int               // index into stack.slots this value occupies, for LIFO assertion
}

// NewUninitialized returns a Value with no storage, typed usage and a
// promotion hint for the evaluator to apply on first write.
func NewUninitialized(usage TypeUsage, hint InitHint) *Value {
	return &Value{Usage: usage, Kind: Uninitialized, Hint: hint}
}

// NewExternal wraps an existing payload as an External (borrowed,
// non-owning) value — the representation for references, by-reference
// parameters, and host variables.
func NewExternal(usage TypeUsage, data payload) *Value {
	return &Value{Usage: usage, Kind: External, data: data}
}

// NewHeap allocates a new heap-owned value with a zero payload of the
// given usage.
func NewHeap(usage TypeUsage) *Value {
	return &Value{Usage: usage, Kind: Heap, data: zeroPayload(usage)}
}

func zeroPayload(usage TypeUsage) payload {
	if usage.IsPointer() {
		return Addr{}
	}
	if usage.BaseType == nil {
		return nil
	}
	switch usage.BaseType.Category {
	case StructOrClass:
		return NewStructInstance(usage.BaseType)
	case Enum, EnumClass:
		return int64(0)
	default:
		switch usage.BaseType.ID.String() {
		case "bool":
			return false
		case "float", "double":
			return float64(0)
		case "char":
			return byte(0)
		default:
			return int64(0)
		}
	}
}

// Data returns the raw payload, for evaluator code that needs to branch
// on the concrete Go representation.
func (v *Value) Data() payload { return v.data }

// SetData overwrites the payload in place without changing Kind; used
// for byte-copy assignment semantics (no operator= found, §3).
func (v *Value) SetData(data payload) { v.data = data }

// AsInt64 returns the payload as an integer, promoting bool/enum/char.
func (v *Value) AsInt64() int64 {
	switch d := v.data.(type) {
	case int64:
		return d
	case int32:
		return int64(d)
	case int16:
		return int64(d)
	case int8:
		return int64(d)
	case byte:
		return int64(d)
	case bool:
		if d {
			return 1
		}
		return 0
	case float64:
		return int64(d)
	case float32:
		return int64(d)
	default:
		return 0
	}
}

// AsFloat64 returns the payload as a double, promoting integers.
func (v *Value) AsFloat64() float64 {
	switch d := v.data.(type) {
	case float64:
		return d
	case float32:
		return float64(d)
	default:
		return float64(v.AsInt64())
	}
}

// AsBool returns the payload's truthiness.
func (v *Value) AsBool() bool {
	switch d := v.data.(type) {
	case bool:
		return d
	case Addr:
		return d.Target != nil
	default:
		return v.AsInt64() != 0
	}
}

// AsAddr returns the payload as a pointer address; zero Addr for a
// non-pointer payload.
func (v *Value) AsAddr() Addr {
	if a, ok := v.data.(Addr); ok {
		return a
	}
	return Addr{}
}

// AsStruct returns the payload as a struct instance, or nil.
func (v *Value) AsStruct() *StructInstance {
	if s, ok := v.data.(*StructInstance); ok {
		return s
	}
	return nil
}

// String renders the value for diagnostics.
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case Uninitialized:
		return "<uninitialized>"
	default:
		return fmt.Sprintf("%v", v.data)
	}
}

// Release tears a value's ownership down per §3/§5: Stack values assert
// they are the current stack top before popping; Heap values free (in
// Go, simply become eligible for GC — there is no explicit free, but
// the Kind transition still matters for re-entrancy checks); External
// values do nothing, since they never owned the storage. Destructor
// invocation for StructOrClass instances is the caller's
// responsibility (internal/eval invokes the cached Destructor before
// calling Release), matching §3's "destruction must `pop` the exact
// top slot it owns" plus §4.C's releaseInstances contract.
func (v *Value) Release() error {
	switch v.Kind {
	case Stack:
		if v.stack == nil {
			return fmt.Errorf("runtime: stack value has no owning stack")
		}
		return v.stack.pop(v)
	case Heap:
		v.data = nil
	}
	v.Kind = Uninitialized
	return nil
}
