package schedcore

import "errors"

// Sentinel errors for precondition violations (§7: these are programmer
// errors and should be unreachable if the collaborator validates its
// inputs before calling into the core).
var (
	// ErrInvalidInterval is returned when a TimeInterval would have
	// end-beginning < Grid, or either endpoint off the Grid.
	ErrInvalidInterval = errors.New("schedcore: time interval must span at least one grid tick and be grid-aligned")

	// ErrInvalidDuration is returned when a duration is not a positive
	// multiple of Grid.
	ErrInvalidDuration = errors.New("schedcore: duration must be a positive multiple of the grid")

	// ErrDurationExceedsCapacity is returned when the sum of activity
	// durations handed to the beginnings enumerator exceeds the sum of
	// work-hour capacity (§4.1 precondition).
	ErrDurationExceedsCapacity = errors.New("schedcore: sum of activity durations exceeds work-hour capacity")

	// ErrTooManyActivities is returned when the beginnings enumerator is
	// asked to reason about more than maxBitsetActivities activities, or
	// maxBitsetActivities or more work-hour intervals (one bit is kept as
	// headroom for a split interval); the bitset-memoized feasibility oracle
	// does not scale past that (§9: "For n > 32 activities an implementer
	// must change the representation").
	ErrTooManyActivities = errors.New("schedcore: too many activities or work-hour intervals for the bitset feasibility oracle")

	// ErrUnknownActivity is returned by Core operations that reference an
	// activity id that was never registered (or has since been
	// unregistered).
	ErrUnknownActivity = errors.New("schedcore: unknown activity id")

	// ErrAlreadyRegistered is returned by RegisterActivity when the id is
	// already known to the Core.
	ErrAlreadyRegistered = errors.New("schedcore: activity already registered")
)
