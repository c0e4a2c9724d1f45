// Command gen_vm_expects derives functional option helpers from the
// vmTestCase builder methods declared in a test file: each method like
// `func (vmt vmTestCase) expectStack(values ...int32) vmTestCase` gets a
// free function `expectVMStack` returning a func(vmTestCase) vmTestCase.
//
// Usage: go run scripts/gen_vm_expects.go -- [input.go [output.go]]
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"io"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

const builderType = "vmTestCase"

func main() {
	timeout := flag.Duration("timeout", 5*time.Second, "time limit for generation")
	flag.Parse()

	inName, outName := "/dev/stdin", ""
	if args := flag.Args(); len(args) > 0 {
		inName = args[0]
		if len(args) > 1 {
			outName = args[1]
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := generate(ctx, inName, outName); err != nil {
		log.Fatalln(err)
	}
}

func generate(ctx context.Context, inName, outName string) error {
	src, err := ioutil.ReadFile(inName)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := writeHelpers(&buf, inName, outName, src); err != nil {
		return err
	}

	out := io.WriteCloser(os.Stdout)
	if outName != "" {
		f, err := os.Create(outName)
		if err != nil {
			return err
		}
		out = f
	}

	// pipe through goimports, which also adds any imports the helpers need
	fmtCmd := exec.CommandContext(ctx, "goimports")
	fmtIn, err := fmtCmd.StdinPipe()
	if err != nil {
		return err
	}
	fmtCmd.Stdout = out
	fmtCmd.Stderr = os.Stderr

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := fmtCmd.Run(); err != nil {
			return fmt.Errorf("goimports failed: %w", err)
		}
		return out.Close()
	})
	eg.Go(func() error {
		defer fmtIn.Close()
		_, err := buf.WriteTo(fmtIn)
		if err == nil {
			err = ctx.Err()
		}
		return err
	})
	return eg.Wait()
}

// writeHelpers writes a Go file holding one helper per builder method
// declared in src.
func writeHelpers(buf *bytes.Buffer, inName, outName string, src []byte) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, inName, src, 0)
	if err != nil {
		return err
	}

	fmt.Fprintf(buf, "package %v\n\n", file.Name.Name)
	fmt.Fprintf(buf, "// @generated from %v\n\n", inName)
	if outName != "" {
		fmt.Fprintf(buf, "//go:generate go run scripts/gen_vm_expects.go -- %v %v\n\n", inName, outName)
	}

	n := 0
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || !isBuilderMethod(fn) {
			continue
		}
		writeHelper(buf, fn)
		n++
	}
	if n == 0 {
		return fmt.Errorf("no %v methods in %v", builderType, inName)
	}
	return nil
}

// isBuilderMethod matches methods of vmTestCase whose names start with
// expect or with, and that return a single vmTestCase.
func isBuilderMethod(fn *ast.FuncDecl) bool {
	if fn.Recv == nil || len(fn.Recv.List) != 1 {
		return false
	}
	if types.ExprString(fn.Recv.List[0].Type) != builderType {
		return false
	}
	if !strings.HasPrefix(fn.Name.Name, "expect") && !strings.HasPrefix(fn.Name.Name, "with") {
		return false
	}
	res := fn.Type.Results
	return res != nil && len(res.List) == 1 && len(res.List[0].Names) == 0 &&
		types.ExprString(res.List[0].Type) == builderType
}

// helperName inserts VM after the method's verb: expectStack becomes
// expectVMStack.
func helperName(name string) string {
	for _, verb := range []string{"expect", "with"} {
		if strings.HasPrefix(name, verb) {
			return verb + "VM" + name[len(verb):]
		}
	}
	return name
}

func writeHelper(buf *bytes.Buffer, fn *ast.FuncDecl) {
	var params, args []string
	for _, field := range fn.Type.Params.List {
		typ := types.ExprString(field.Type)
		_, variadic := field.Type.(*ast.Ellipsis)
		for _, name := range field.Names {
			params = append(params, name.Name+" "+typ)
			if variadic {
				args = append(args, name.Name+"...")
			} else {
				args = append(args, name.Name)
			}
		}
	}
	fmt.Fprintf(buf, "func %v(%v) func(%v) %v {\n",
		helperName(fn.Name.Name), strings.Join(params, ", "), builderType, builderType)
	fmt.Fprintf(buf, "\treturn func(vmt %v) %v {\n", builderType, builderType)
	fmt.Fprintf(buf, "\t\treturn vmt.%v(%v)\n", fn.Name.Name, strings.Join(args, ", "))
	buf.WriteString("\t}\n}\n\n")
}
