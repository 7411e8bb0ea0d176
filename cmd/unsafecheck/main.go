// Command unsafecheck reports integer to unsafe.Pointer conversions outside
// the register bus.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"omibyte.io/hercules/internal/unsafecheck"
)

func main() {
	singlechecker.Main(unsafecheck.Analyzer)
}
