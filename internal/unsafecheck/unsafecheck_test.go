package unsafecheck

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"
)

func TestAnalyzer(t *testing.T) {
	old := allow
	allow = "mmio"
	defer func() { allow = old }()

	analysistest.Run(t, analysistest.TestData(), Analyzer, "a", "mmio")
}
