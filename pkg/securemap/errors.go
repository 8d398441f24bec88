package securemap

import "errors"

var (
	// ErrEntropyUnavailable is returned when the entropy source cannot
	// produce a seed. The map refuses to continue with a weaker seed.
	ErrEntropyUnavailable = errors.New("securemap: entropy source unavailable")

	// ErrSeedReuse is returned, wrapped in ErrEntropyUnavailable, when the
	// entropy source keeps handing back the seed that is being replaced.
	ErrSeedReuse = errors.New("securemap: entropy source repeated the previous seed")
)
