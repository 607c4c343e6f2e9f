package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"binpack_go/bpp"
	"binpack_go/colgen"
)

// printReport writes the solution with 1-based item numbers.
func printReport(w io.Writer, inst *bpp.Instance, res *colgen.Result) {
	status := "Feasible"
	if provenOptimal(res) {
		status = "Optimal"
	}
	fmt.Fprintf(w, "Solution status: %s\n\n", status)
	fmt.Fprintf(w, "Best solution uses %d bins\n", len(res.Bins))
	for b, bin := range res.Bins {
		fmt.Fprintf(w, "Bin[%d] =", b+1)
		for _, i := range bin.Items {
			fmt.Fprintf(w, " %d", i+1)
		}
		fmt.Fprintf(w, "  (%d/%d)\n", bin.Weight, inst.Capacity)
	}
	fmt.Fprintf(w, "\nLP bound %.6f, %d patterns generated in %d iterations (%s), %d B&B nodes, %s\n",
		res.LowerBound, res.Patterns-inst.Len(), res.Iterations, res.Termination, res.Nodes, res.Elapsed.Round(time.Millisecond))
}

// provenOptimal reports whether the bin count meets the rounded-up LP bound
// of a converged run.
func provenOptimal(res *colgen.Result) bool {
	if res.Termination != colgen.TermConverged {
		return false
	}
	return len(res.Bins) == int(math.Ceil(res.LowerBound-1e-6))
}
