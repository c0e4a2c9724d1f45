package goforth

import "fmt"

// Close releases any files left open by Forth code, along with any host
// resources handed to the VM by its options.
func (vm *VM) Close() (err error) {
	if ferr := vm.flushOutput(); ferr != nil {
		err = ferr
	}
	if cerr := vm.files.Close(); err == nil {
		err = cerr
	}
	for i := len(vm.closers) - 1; i >= 0; i-- {
		if cerr := vm.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	vm.closers = nil
	return err
}

// halt stops the VM with an error that no CATCH frame sees; Execute returns
// it, after output is flushed as far as possible.
func (vm *VM) halt(err error) {
	if ferr := vm.tryFlush(); err == nil {
		err = ferr
	}
	vm.logf("halt", "%v", err)
	panic(haltError{err})
}

// tryFlush flushes output even if the terminal itself faults.
func (vm *VM) tryFlush() (err error) {
	defer func() {
		if e := recover(); e != nil && err == nil {
			err = fmt.Errorf("flush paniced: %v", e)
		}
	}()
	return vm.flushOutput()
}

// logf writes a debug line with a tag naming its subsystem; tags are right
// aligned to the widest one seen so far.
func (vm *VM) logf(tag, mess string, args ...interface{}) {
	if vm.logfn == nil {
		return
	}
	if len(tag) > vm.logWidth {
		vm.logWidth = len(tag)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	vm.logfn("%*s %s", vm.logWidth, tag, mess)
}
