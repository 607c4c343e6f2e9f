package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"binpack_go/bpp"
	"binpack_go/colgen"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newCLI(&out, &errOut).rootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSolveCommand(t *testing.T) {
	out, err := run(t, "solve", filepath.Join("testdata", "scenario_c.txt"))
	require.NoError(t, err)
	require.Contains(t, out, "Solution status: Optimal")
	require.Contains(t, out, "Best solution uses 2 bins")
	require.Equal(t, 2, strings.Count(out, "Bin["))
}

func TestSolveCommandFlagsOverrideConfig(t *testing.T) {
	out, err := run(t, "solve", "--config", filepath.Join("testdata", "config.toml"),
		"--oracle", "dp", "--timeout", "5s", filepath.Join("testdata", "u10.txt"))
	require.NoError(t, err)
	require.Contains(t, out, "Best solution uses")
}

func TestSolveCommandErrors(t *testing.T) {
	_, err := run(t, "solve", filepath.Join("testdata", "absent.txt"))
	require.ErrorIs(t, err, bpp.ErrInput)
	require.Equal(t, 2, exitCode(err))

	_, err = run(t, "solve", "--oracle", "greedy", filepath.Join("testdata", "u10.txt"))
	require.ErrorIs(t, err, bpp.ErrInput)
	require.Equal(t, 2, exitCode(err))

	_, err = run(t, "solve")
	require.Error(t, err)
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, exitCode(nil))
	require.Equal(t, 2, exitCode(fmt.Errorf("load: %w", bpp.ErrInput)))
	require.Equal(t, 3, exitCode(bpp.ErrInfeasibleMaster))
	require.Equal(t, 4, exitCode(fmt.Errorf("pricing: %w", bpp.ErrOracle)))
	require.Equal(t, 130, exitCode(context.Canceled))
	require.Equal(t, 1, exitCode(fmt.Errorf("boom")))
}

func TestPrintReport(t *testing.T) {
	inst := bpp.NewInstance("c", 6, []int{3, 3, 3})
	res := &colgen.Result{
		Bins: []colgen.Bin{
			{Pattern: 3, Items: []int{0, 1}, Weight: 6},
			{Pattern: 2, Items: []int{2}, Weight: 3},
		},
		Objective:   2,
		LowerBound:  1.5,
		Patterns:    4,
		Termination: colgen.TermConverged,
	}
	var buf bytes.Buffer
	printReport(&buf, inst, res)
	out := buf.String()
	require.Contains(t, out, "Solution status: Optimal")
	require.Contains(t, out, "Bin[1] = 1 2  (6/6)")
	require.Contains(t, out, "Bin[2] = 3  (3/6)")

	res.Termination = colgen.TermIterationLimit
	buf.Reset()
	printReport(&buf, inst, res)
	require.Contains(t, buf.String(), "Solution status: Feasible")
}
