// Package unsafecheck reports conversions from integers to unsafe.Pointer
// outside the packages allowed to turn an address into a pointer.
//
// Register access goes through a bus so the drivers run unchanged against
// the simulator. A driver that converts an address itself bypasses the bus
// and only works on the device.
package unsafecheck

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/ast/astutil"
)

var Analyzer = &analysis.Analyzer{
	Name: "unsafecheck",
	Doc:  "report integer to unsafe.Pointer conversions outside the allowed packages",
	Run:  run,
}

var allow = "omibyte.io/hercules/mmio,omibyte.io/hercules/volatile"

func init() {
	Analyzer.Flags.StringVar(&allow, "allow", allow, "comma separated list of packages allowed to convert integers to pointers")
}

func allowed(path string) bool {
	for _, p := range strings.Split(allow, ",") {
		if p = strings.TrimSpace(p); p != "" && p == path {
			return true
		}
	}
	return false
}

func run(pass *analysis.Pass) (interface{}, error) {
	if allowed(pass.Pkg.Path()) {
		return nil, nil
	}

	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok || len(call.Args) != 1 {
				return true
			}
			if !isUnsafePointer(pass.TypesInfo.Types[astutil.Unparen(call.Fun)]) {
				return true
			}
			arg := astutil.Unparen(call.Args[0])
			if t := pass.TypesInfo.TypeOf(arg); t != nil && isInteger(t) {
				pass.Reportf(call.Pos(), "conversion of %s to unsafe.Pointer outside the register bus", types.TypeString(t, types.RelativeTo(pass.Pkg)))
			}
			return true
		})
	}
	return nil, nil
}

func isUnsafePointer(tv types.TypeAndValue) bool {
	if !tv.IsType() {
		return false
	}
	basic, ok := tv.Type.(*types.Basic)
	return ok && basic.Kind() == types.UnsafePointer
}

func isInteger(t types.Type) bool {
	basic, ok := t.Underlying().(*types.Basic)
	return ok && basic.Info()&types.IsInteger != 0
}
