// Package assert holds the few assertions the package tests share. Every
// helper stops the test at the first failure.
package assert

import (
	"reflect"
)

// Tester is satisfied by *testing.T and *testing.B.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil stops the test unless v is nil. Typed nil pointers, slices and maps
// count as nil.
func Nil(t Tester, v interface{}) {
	t.Helper()
	if isNil(v) {
		return
	}
	// %+v prints the stack of wrapped errors.
	t.Fatalf("unexpected non nil value: %+v", v)
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

// Equal stops the test unless want and got are deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if reflect.DeepEqual(want, got) {
		return
	}
	t.Fatalf("mismatch\nwant (%T) %v\n got (%T) %v", want, want, got, got)
}

// Panics stops the test if fn returns normally.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("function did not panic")
		}
	}()
	fn()
}

// IsErr stops the test unless got is of the kind of want. Kinds are matched
// through the Is method of registered errors, so want must be one of them.
// A nil want requires got to be nil as well.
func IsErr(t Tester, want, got error) {
	t.Helper()
	if isNil(want) {
		if !isNil(got) {
			t.Fatalf("unexpected error: %+v", got)
		}
		return
	}
	kind, ok := want.(interface{ Is(error) bool })
	if !ok {
		t.Fatalf("%T cannot match error kinds", want)
		return
	}
	if !kind.Is(got) {
		t.Fatalf("want %q error, got %+v", want, got)
	}
}
