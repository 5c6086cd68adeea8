package planner

import "errors"

var (
	ErrInvalidScheduleLength = errors.New("training schedule must have exactly 7 days")
	ErrInvalidDate           = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidWeight         = errors.New("weight_kg must be greater than 0 and at most 1000")
	ErrUnknownMacroPreset    = errors.New("unknown macro preset")
	ErrPlanMisaligned        = errors.New("plan days do not match training dates")
)
