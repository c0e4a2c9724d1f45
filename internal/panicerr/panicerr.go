// Package panicerr runs a function such that any panic, or call to
// runtime.Goexit, becomes an error return.
package panicerr

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Recover runs f on a new goroutine and returns its error. A panic comes
// back as a *PanicError, and a runtime.Goexit as an ExitError; name labels
// either in error messages.
func Recover(name string, f func() error) error {
	result := make(chan error, 1)
	go func() {
		returned := false
		defer func() {
			if returned {
				return
			}
			if e := recover(); e != nil {
				result <- &PanicError{Name: name, Value: e, Stack: debug.Stack()}
			} else {
				result <- ExitError{Name: name}
			}
		}()
		err := f()
		returned = true
		result <- err
	}()
	return <-result
}

// PanicError carries a recovered panic value, and the stack it unwound from.
type PanicError struct {
	Name  string
	Value interface{}
	Stack []byte
}

func (pe *PanicError) Error() string {
	return fmt.Sprintf("%v paniced: %v", pe.Name, pe.Value)
}

// Unwrap returns the panic value if it is an error.
func (pe *PanicError) Unwrap() error {
	err, _ := pe.Value.(error)
	return err
}

// Format adds the panic stack under the %+v verb.
func (pe *PanicError) Format(f fmt.State, c rune) {
	if c == 'v' && f.Flag('+') {
		fmt.Fprintf(f, "%v\n%s", pe.Error(), pe.Stack)
		return
	}
	fmt.Fprint(f, pe.Error())
}

// ExitError reports that a function called runtime.Goexit.
type ExitError struct{ Name string }

func (ee ExitError) Error() string { return ee.Name + " exited" }

// PanicValue returns the value of any PanicError within err's chain.
func PanicValue(err error) (interface{}, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe.Value, true
	}
	return nil, false
}
