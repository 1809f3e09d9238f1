package plan_impl

import (
	"fmt"
	"strings"

	"github.com/JyotinderSingh/dropexec/plan"
)

// explainable is implemented by every plan of this package.
type explainable interface {
	describe() string
	inputs() []plan.Plan
}

// Explain renders a plan tree, one operator per line, with its estimates.
func Explain(p plan.Plan) string {
	var sb strings.Builder
	explain(&sb, p, 0)
	return sb.String()
}

func explain(sb *strings.Builder, p plan.Plan, depth int) {
	label := fmt.Sprintf("%T", p)
	var children []plan.Plan
	if e, ok := p.(explainable); ok {
		label = e.describe()
		children = e.inputs()
	}
	fmt.Fprintf(sb, "%s%s (blocks=%d records=%d)\n", strings.Repeat("  ", depth), label, p.BlocksAccessed(), p.RecordsOutput())
	for _, child := range children {
		explain(sb, child, depth+1)
	}
}
