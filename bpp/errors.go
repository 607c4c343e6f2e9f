package bpp

import "errors"

// Error classes surfaced by a run. All of them are fatal; callers classify
// wrapped errors with errors.Is.
var (
	ErrInput            = errors.New("input error")
	ErrInfeasibleMaster = errors.New("master problem infeasible")
	ErrOracle           = errors.New("knapsack oracle failure")
)
