package goforth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/goforth/internal/logio"
)

type vmTestCases []vmTestCase

func (vmts vmTestCases) run(t *testing.T) {
	{
		var exclusive []vmTestCase
		for _, vmt := range vmts {
			if vmt.exclusive {
				exclusive = append(exclusive, vmt)
			}
		}
		if len(exclusive) > 0 {
			vmts = exclusive
		}
	}
	for _, vmt := range vmts {
		if !t.Run(vmt.name, vmt.run) {
			return
		}
	}
}

func vmTest(name string) (vmt vmTestCase) {
	vmt.name = name
	return vmt
}

type vmTestOp func(ctx context.Context, vm *VM) error

type vmTestCase struct {
	name    string
	opts    []interface{}
	stack   []uint32
	files   [][2]string
	ops     []vmTestOp
	expect  []func(t *testing.T, vm *VM)
	timeout time.Duration
	wantErr error

	exclusive bool
}

func (vmt vmTestCase) apply(wraps ...func(vmTestCase) vmTestCase) vmTestCase {
	for _, wrap := range wraps {
		vmt = wrap(vmt)
	}
	return vmt
}

func (vmt vmTestCase) exclusiveTest() vmTestCase {
	vmt.exclusive = true
	return vmt
}

func (vmt vmTestCase) withOptions(opts ...VMOption) vmTestCase {
	for _, opt := range opts {
		vmt.opts = append(vmt.opts, opt)
	}
	return vmt
}

func (vmt vmTestCase) withStack(values ...int32) vmTestCase {
	for _, v := range values {
		vmt.stack = append(vmt.stack, uint32(v))
	}
	return vmt
}

// withInput provides input lines; unless the test interprets some source, it
// will then Run the QUIT loop over them.
func (vmt vmTestCase) withInput(input string) vmTestCase {
	vmt.opts = append(vmt.opts, WithInput(strings.NewReader(input)))
	return vmt
}

// withFile adds a file to an in-memory file system given to the VM.
func (vmt vmTestCase) withFile(name string, content string) vmTestCase {
	vmt.files = append(vmt.files[:len(vmt.files):len(vmt.files)], [2]string{name, content})
	return vmt
}

func (vmt vmTestCase) withTimeout(timeout time.Duration) vmTestCase {
	vmt.timeout = timeout
	return vmt
}

// interpret evaluates each line in turn, stopping at the first error.
func (vmt vmTestCase) interpret(lines ...string) vmTestCase {
	for _, line := range lines {
		line := line
		vmt.ops = append(vmt.ops, func(ctx context.Context, vm *VM) error {
			vm.logf(">", "interpret %q", line)
			return vm.Interpret(ctx, line)
		})
	}
	return vmt
}

func (vmt vmTestCase) do(ops ...vmTestOp) vmTestCase {
	vmt.ops = append(vmt.ops, ops...)
	return vmt
}

func (vmt vmTestCase) withTestOutput() vmTestCase {
	vmt.opts = append(vmt.opts, func(vmt *vmTestCase, t *testing.T) VMOption {
		return WithTee(&logio.Writer{Logf: t.Logf, Prefix: "out: "})
	})
	return vmt
}

func (vmt vmTestCase) expectError(err error) vmTestCase {
	vmt.wantErr = err
	return vmt
}

func (vmt vmTestCase) expectStack(values ...int32) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		if values == nil {
			values = []int32{}
		}
		stack := vm.Stack()
		got := make([]int32, len(stack))
		for i, v := range stack {
			got[i] = int32(v)
		}
		assert.Equal(t, values, got, "expected stack values")
	})
	return vmt
}

func (vmt vmTestCase) expectUStack(values ...uint32) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		if values == nil {
			values = []uint32{}
		}
		assert.Equal(t, values, vm.Stack(), "expected stack values")
	})
	return vmt
}

func (vmt vmTestCase) expectRStack(values ...uint32) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		if values == nil {
			values = []uint32{}
		}
		assert.Equal(t, values, vm.rstack(), "expected return stack values")
	})
	return vmt
}

// captureOutput adds an output option over a buffer that is reset each time
// the test VM is built.
func (vmt *vmTestCase) captureOutput() *strings.Builder {
	var out strings.Builder
	vmt.opts = append(vmt.opts, func(vmt *vmTestCase, t *testing.T) VMOption {
		out.Reset()
		return WithOutput(&out)
	})
	return &out
}

func (vmt vmTestCase) expectOutput(output string) vmTestCase {
	out := vmt.captureOutput()
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, output, out.String(), "expected output")
	})
	return vmt
}

func (vmt vmTestCase) expectOutputContains(parts ...string) vmTestCase {
	out := vmt.captureOutput()
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		for _, part := range parts {
			assert.Contains(t, out.String(), part, "expected output part")
		}
	})
	return vmt
}

func (vmt vmTestCase) expectSEE(name string, see ...string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		got, err := vm.SEE(name)
		if assert.NoError(t, err, "unexpected SEE %v error", name) {
			assert.Equal(t, strings.Join(see, "\n"), got, "expected SEE %v", name)
		}
	})
	return vmt
}

func (vmt vmTestCase) expectWord(name string, immediate bool) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		_, imm, err := vm.Lookup(name)
		if assert.NoError(t, err, "expected word %q to be defined", name) {
			assert.Equal(t, immediate, imm, "expected %q immediacy", name)
		}
	})
	return vmt
}

func (vmt vmTestCase) expectNoWord(name string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		_, _, err := vm.Lookup(name)
		assert.Equal(t, ThrowUndefined, err, "expected word %q to be undefined", name)
	})
	return vmt
}

func (vmt vmTestCase) expectFile(name string, content string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		fs, ok := vm.fs.(*testFS)
		require.True(t, ok, "expected a test file system")
		data, ok := fs.files[name]
		if assert.True(t, ok, "expected file %q to exist", name) {
			assert.Equal(t, content, string(data), "expected file %q content", name)
		}
	})
	return vmt
}

func (vmt vmTestCase) run(t *testing.T) {
	defer func(then time.Time) {
		label := "PASS"
		if t.Failed() {
			label = "FAIL"
		}
		t.Logf("%v\t%v\t%v", label, t.Name(), time.Now().Sub(then))
	}(time.Now())

	if testFails(func(t *testing.T) {
		vmt.runVMTest(context.Background(), t, vmt.buildVM(t))
	}) {
		vmt.opts = append(vmt.opts, WithLogf(t.Logf))
		vmt.runVMTest(context.Background(), t, vmt.buildVM(t))
	}
}

func (vmt vmTestCase) runVMTest(ctx context.Context, t *testing.T, vm *VM) {
	const defaultTimeout = time.Second
	timeout := vmt.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if t.Failed() {
			vmt.dumpToTest(t, vm)
		}
	}()

	if err := vmt.runVM(ctx, vm); vmt.wantErr != nil {
		assert.True(t, errors.Is(err, vmt.wantErr), "expected error: %v\ngot: %+v", vmt.wantErr, err)
	} else {
		assert.NoError(t, err, "unexpected VM run error")
	}

	if !t.Failed() {
		for _, expect := range vmt.expect {
			expect(t, vm)
		}
	}
}

func (vmt vmTestCase) runVM(ctx context.Context, vm *VM) (rerr error) {
	defer func() {
		if err := vm.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("vm.Close failed: %w", err)
		}
	}()

	if err := vm.Push(vmt.stack...); err != nil {
		return err
	}
	if len(vmt.ops) == 0 {
		return vm.Run(ctx)
	}
	for _, op := range vmt.ops {
		if err := op(ctx, vm); err != nil {
			return err
		}
	}
	return nil
}

func (vmt vmTestCase) buildVM(t *testing.T) *VM {
	var opts []VMOption
	for _, o := range vmt.opts {
		switch impl := o.(type) {
		case func(vmt *vmTestCase, t *testing.T) VMOption:
			opts = append(opts, impl(&vmt, t))
		case VMOption:
			opts = append(opts, impl)
		default:
			t.Logf("unsupported vmTestCase opt type %T", o)
			t.FailNow()
		}
	}
	if len(vmt.files) > 0 {
		fs := newTestFS()
		for _, file := range vmt.files {
			fs.files[file[0]] = []byte(file[1])
		}
		opts = append(opts, WithFileSystem(fs))
	}
	return New(opts...)
}

func (vmt vmTestCase) dumpToTest(t *testing.T, vm *VM) {
	lw := &logio.Writer{Logf: t.Logf}
	defer lw.Close()
	if err := vm.Dump(lw); err != nil {
		t.Logf("dump failed: %v", err)
	}
	t.Logf("stack: %v", spew.Sdump(vm.Stack()))
}

//// utilities

func testFails(fn func(t *testing.T)) bool {
	var fakeT testing.T
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(&fakeT)
	}()
	<-done
	return fakeT.Failed()
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

// interpretAll returns an op that interprets a whole source text, one line
// at a time, as a file would be.
func interpretAll(src string) vmTestOp {
	return func(ctx context.Context, vm *VM) error {
		for _, line := range strings.Split(strings.TrimSuffix(src, "\n"), "\n") {
			if err := vm.Interpret(ctx, line); err != nil {
				return err
			}
		}
		return nil
	}
}

// popInto returns an op that pops the top of stack into p.
func popInto(p *uint32) vmTestOp {
	return func(ctx context.Context, vm *VM) (err error) {
		*p, err = vm.Pop()
		return err
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
