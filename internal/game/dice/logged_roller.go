package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged draws.
// Every draw is logged at debug level with its purpose and value.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src must be non-nil. A nil logger disables logging.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Chance reports whether an event with probability p happens.
//
// Postcondition: p <= 0 always fails and p >= 1 always succeeds; neither
// consumes a value from the source.
func (r *Roller) Chance(p float64, purpose string) bool {
	if !(p > 0) {
		return false
	}
	if p >= 1 {
		return true
	}
	v := r.src.Float64()
	ok := v < p
	r.log(Draw{Purpose: purpose, Value: v, Threshold: p, Success: ok})
	return ok
}

// Uniform returns a value uniformly distributed in [lo, hi).
//
// Postcondition: lo == hi returns lo without consuming a value.
func (r *Roller) Uniform(lo, hi float64, purpose string) float64 {
	if lo == hi {
		return lo
	}
	v := lo + r.src.Float64()*(hi-lo)
	r.log(Draw{Purpose: purpose, Value: v, Threshold: -1})
	return v
}

// Intn returns a logged int in [0, n).
//
// Precondition: n > 0.
func (r *Roller) Intn(n int, purpose string) int {
	v := r.src.Intn(n)
	r.log(Draw{Purpose: purpose, Value: float64(v), Threshold: -1})
	return v
}

func (r *Roller) log(d Draw) {
	if ce := r.logger.Check(zap.DebugLevel, "dice draw"); ce != nil {
		ce.Write(
			zap.String("purpose", d.Purpose),
			zap.Float64("value", d.Value),
			zap.Float64("threshold", d.Threshold),
			zap.Bool("success", d.Success),
		)
	}
}
