package trap

import (
	"syscall"
	"unsafe"
)

// String is a (pointer, length) view of a NUL-terminated copy of a Go
// string, shaped for handing to a trap. The backing buffer stays
// reachable for as long as the String value itself is.
type String struct {
	Ptr    *byte
	Length uint64
}

// NewString marshals s. Strings with embedded NUL bytes cannot cross
// the trap boundary and are rejected with EINVAL.
func NewString(s string) (String, error) {
	p, err := syscall.BytePtrFromString(s)
	if err != nil {
		return String{}, err
	}
	return String{Ptr: p, Length: uint64(len(s))}, nil
}

// Value copies the view back into a Go string. In-process trap
// implementations use it to read their operands.
func (s String) Value() string {
	if s.Ptr == nil || s.Length == 0 {
		return ""
	}
	return string(unsafe.Slice(s.Ptr, s.Length))
}

// Vector is an ordered sequence of String views describing an argument
// or environment array. It is constructed transiently for one trap
// invocation.
type Vector []String

// NewVector marshals src in order. The resulting vector has exactly
// one entry per source string, each preserving that string's length.
func NewVector(src []string) (Vector, error) {
	vec := make(Vector, 0, len(src))
	for _, s := range src {
		str, err := NewString(s)
		if err != nil {
			return nil, err
		}
		vec = append(vec, str)
	}
	return vec, nil
}

// Strings copies the vector back into a Go slice.
func (v Vector) Strings() []string {
	out := make([]string, len(v))
	for i, s := range v {
		out[i] = s.Value()
	}
	return out
}

// Pointers returns the vector in the NULL-terminated pointer-array
// form execve-style traps consume. The final entry is nil.
func (v Vector) Pointers() []*byte {
	ptrs := make([]*byte, len(v)+1)
	for i, s := range v {
		ptrs[i] = s.Ptr
	}
	return ptrs
}
