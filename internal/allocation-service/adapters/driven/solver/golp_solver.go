package solver

import (
	"context"
	"fmt"
	"time"

	"foodbridge/internal/allocation-service/core/domain/dto"
	"foodbridge/internal/allocation-service/core/ports"
	"foodbridge/internal/myerrors"
	"foodbridge/internal/mylogger"

	"github.com/draffensperger/golp"
)

// GolpSolver builds the allocation MIP directly against lp_solve instead of
// templating a script for an external process.
type GolpSolver struct {
	mylog   mylogger.Logger
	timeout time.Duration
}

func New(mylog mylogger.Logger, timeoutSeconds int) ports.ISolver {
	return &GolpSolver{
		mylog:   mylog,
		timeout: time.Duration(timeoutSeconds) * time.Second,
	}
}

func (s *GolpSolver) Solve(ctx context.Context, input dto.SolverInput) (dto.SolverOutput, error) {
	mylog := s.mylog.Action("solve")

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		out dto.SolverOutput
		err error
	}
	ch := make(chan result, 1)
	go func() {
		out, err := solveMIP(input)
		ch <- result{out: out, err: err}
	}()

	select {
	case <-ctx.Done():
		mylog.Warn("solver timed out", "timeout", s.timeout.String())
		return dto.SolverOutput{}, myerrors.NewExternal("solver", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return dto.SolverOutput{}, myerrors.NewExternal("solver", r.err)
		}
		mylog.Info("solver finished",
			"status", r.out.Status,
			"objective_value", r.out.ObjectiveValue,
			"allocations", len(r.out.Allocations))
		return r.out, nil
	}
}

// solveMIP lays out 2n columns over the valid pairs: [0,n) continuous
// amounts, [n,2n) binary selection flags.
func solveMIP(in dto.SolverInput) (dto.SolverOutput, error) {
	infeasible := dto.SolverOutput{
		Status:      dto.SolverStatusInfeasible,
		Allocations: []dto.SolverAllocation{},
	}

	pairs := validPairs(in)
	if len(pairs) == 0 {
		return infeasible, nil
	}

	n := len(pairs)
	lp := golp.NewLP(0, 2*n)
	lp.SetVerboseLevel(golp.NEUTRAL)

	prev := previousPairs(in.PreviousAllocations)
	now := time.Now().UTC()

	coeffs := make([]float64, 2*n)
	for j, p := range pairs {
		org := in.Organizations[p.orgIdx]
		lot := in.Lots[p.lotIdx]
		lp.SetColName(j, fmt.Sprintf("x_%d_%d", org.ID, lot.ID))
		lp.SetColName(n+j, fmt.Sprintf("y_%d_%d", org.ID, lot.ID))
		lp.SetInt(n+j, true)
		coeffs[j] = benefitScore(org, lot, prev, now)
	}

	// Per lot: total amount across organizations stays within what is left.
	for li, lot := range in.Lots {
		var entries []golp.Entry
		for j, p := range pairs {
			if p.lotIdx == li {
				entries = append(entries, golp.Entry{Col: j, Val: 1})
			}
		}
		if len(entries) == 0 {
			continue
		}
		if err := lp.AddConstraintSparse(entries, golp.LE, lot.RemainingQuantity); err != nil {
			return infeasible, fmt.Errorf("lot constraint: %w", err)
		}
	}

	// Per organization: storage capacity and fragmentation bound.
	for oi, org := range in.Organizations {
		var amounts, selections []golp.Entry
		for j, p := range pairs {
			if p.orgIdx == oi {
				amounts = append(amounts, golp.Entry{Col: j, Val: 1})
				selections = append(selections, golp.Entry{Col: n + j, Val: 1})
			}
		}
		if len(amounts) == 0 {
			continue
		}
		if err := lp.AddConstraintSparse(amounts, golp.LE, org.StorageCapacity); err != nil {
			return infeasible, fmt.Errorf("capacity constraint: %w", err)
		}
		if err := lp.AddConstraintSparse(selections, golp.LE, MaxSources); err != nil {
			return infeasible, fmt.Errorf("max sources constraint: %w", err)
		}
	}

	// Linking: an amount is either zero or at least MinAllocation.
	for j, p := range pairs {
		remaining := in.Lots[p.lotIdx].RemainingQuantity
		upper := []golp.Entry{{Col: j, Val: 1}, {Col: n + j, Val: -remaining}}
		if err := lp.AddConstraintSparse(upper, golp.LE, 0); err != nil {
			return infeasible, fmt.Errorf("linking upper bound: %w", err)
		}
		lower := []golp.Entry{{Col: j, Val: 1}, {Col: n + j, Val: -MinAllocation}}
		if err := lp.AddConstraintSparse(lower, golp.GE, 0); err != nil {
			return infeasible, fmt.Errorf("linking lower bound: %w", err)
		}
		binary := []golp.Entry{{Col: n + j, Val: 1}}
		if err := lp.AddConstraintSparse(binary, golp.LE, 1); err != nil {
			return infeasible, fmt.Errorf("binary bound: %w", err)
		}
	}

	lp.SetObjFn(coeffs)
	lp.SetMaximize()

	ret := lp.Solve()
	if ret != golp.OPTIMAL && ret != golp.SUBOPTIMAL {
		return infeasible, nil
	}

	vars := lp.Variables()
	out := dto.SolverOutput{
		Status:         dto.SolverStatusOptimal,
		ObjectiveValue: lp.Objective(),
		Allocations:    []dto.SolverAllocation{},
	}
	for j, p := range pairs {
		amount := vars[j]
		if amount <= materiality {
			continue
		}
		out.Allocations = append(out.Allocations, dto.SolverAllocation{
			OrganizationID:    in.Organizations[p.orgIdx].ID,
			LotID:             in.Lots[p.lotIdx].ID,
			AllocatedQuantity: round2(amount),
		})
	}
	return out, nil
}
