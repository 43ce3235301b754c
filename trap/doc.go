// Package trap defines the kernel trap surface consumed by this module
// and the shared result convention every wrapper obeys.
//
// A trap returns a raw signed result: non-negative means success and
// carries the value, negative means failure and carries the negated
// error code. [Check] applies that convention exactly once per trap
// invocation; callers never re-translate a result.
//
// The package also provides the argument-marshalling types ([String]
// and [Vector]) that describe a process's argument and environment
// strings at the moment of program replacement. Both are transient:
// they are built for one trap invocation and never retained.
package trap
