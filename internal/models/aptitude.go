package models

// Surface is the racing surface of a course
type Surface string

const (
	SurfaceTurf Surface = "turf"
	SurfaceDirt Surface = "dirt"
)

// IsValid reports whether the surface is one the engine knows about
func (s Surface) IsValid() bool {
	return s == SurfaceTurf || s == SurfaceDirt
}

// DistanceCategory buckets race distances for aptitude lookups
type DistanceCategory string

const (
	DistanceShort  DistanceCategory = "short"
	DistanceMile   DistanceCategory = "mile"
	DistanceMedium DistanceCategory = "medium"
	DistanceLong   DistanceCategory = "long"
)

// DistanceCategoryFor maps a distance in meters to its category.
// Distances that fall between the defined bands count as medium.
func DistanceCategoryFor(meters int) DistanceCategory {
	switch {
	case meters >= 1000 && meters <= 1400:
		return DistanceShort
	case meters == 1600:
		return DistanceMile
	case meters >= 1800 && meters <= 2000:
		return DistanceMedium
	case meters >= 2200:
		return DistanceLong
	default:
		return DistanceMedium
	}
}

// Strategy is a running style which decides pack position during the draft phase
type Strategy string

const (
	StrategyRunner    Strategy = "runner"
	StrategyLeader    Strategy = "leader"
	StrategyBetweener Strategy = "betweener"
	StrategyChaser    Strategy = "chaser"
)

// StrategyOrder is the tie-break priority used when two strategy aptitudes are equal
var StrategyOrder = []Strategy{StrategyRunner, StrategyLeader, StrategyBetweener, StrategyChaser}

const (
	AptitudeMin     = 1
	AptitudeMax     = 10
	AptitudeDefault = 1
)

// SurfaceAptitude holds per-surface ratings
type SurfaceAptitude struct {
	Turf int `json:"turf" yaml:"turf" validate:"min=1,max=10"`
	Dirt int `json:"dirt" yaml:"dirt" validate:"min=1,max=10"`
}

// DistanceAptitude holds per-distance-band ratings
type DistanceAptitude struct {
	Short  int `json:"short" yaml:"short" validate:"min=1,max=10"`
	Mile   int `json:"mile" yaml:"mile" validate:"min=1,max=10"`
	Medium int `json:"medium" yaml:"medium" validate:"min=1,max=10"`
	Long   int `json:"long" yaml:"long" validate:"min=1,max=10"`
}

// StrategyAptitude holds per-running-style ratings
type StrategyAptitude struct {
	Runner    int `json:"runner" yaml:"runner" validate:"min=1,max=10"`
	Leader    int `json:"leader" yaml:"leader" validate:"min=1,max=10"`
	Betweener int `json:"betweener" yaml:"betweener" validate:"min=1,max=10"`
	Chaser    int `json:"chaser" yaml:"chaser" validate:"min=1,max=10"`
}

// Aptitude groups the three rating families of a horse. Every field is mandatory.
type Aptitude struct {
	Surface  SurfaceAptitude  `json:"surface" yaml:"surface"`
	Distance DistanceAptitude `json:"distance" yaml:"distance"`
	Strategy StrategyAptitude `json:"strategy" yaml:"strategy"`
}

// DefaultAptitude returns an aptitude with every rating at the default grade
func DefaultAptitude() Aptitude {
	return Aptitude{
		Surface:  SurfaceAptitude{Turf: AptitudeDefault, Dirt: AptitudeDefault},
		Distance: DistanceAptitude{Short: AptitudeDefault, Mile: AptitudeDefault, Medium: AptitudeDefault, Long: AptitudeDefault},
		Strategy: StrategyAptitude{Runner: AptitudeDefault, Leader: AptitudeDefault, Betweener: AptitudeDefault, Chaser: AptitudeDefault},
	}
}

// Normalize clamps every rating into [AptitudeMin, AptitudeMax]; zero values become the default
func (a Aptitude) Normalize() Aptitude {
	fix := func(v int) int {
		if v == 0 {
			return AptitudeDefault
		}
		return clampInt(v, AptitudeMin, AptitudeMax)
	}
	a.Surface.Turf = fix(a.Surface.Turf)
	a.Surface.Dirt = fix(a.Surface.Dirt)
	a.Distance.Short = fix(a.Distance.Short)
	a.Distance.Mile = fix(a.Distance.Mile)
	a.Distance.Medium = fix(a.Distance.Medium)
	a.Distance.Long = fix(a.Distance.Long)
	a.Strategy.Runner = fix(a.Strategy.Runner)
	a.Strategy.Leader = fix(a.Strategy.Leader)
	a.Strategy.Betweener = fix(a.Strategy.Betweener)
	a.Strategy.Chaser = fix(a.Strategy.Chaser)
	return a
}

// ForSurface returns the rating for a surface
func (a Aptitude) ForSurface(s Surface) int {
	if s == SurfaceDirt {
		return a.Surface.Dirt
	}
	return a.Surface.Turf
}

// ForDistance returns the rating for a distance band
func (a Aptitude) ForDistance(c DistanceCategory) int {
	switch c {
	case DistanceShort:
		return a.Distance.Short
	case DistanceMile:
		return a.Distance.Mile
	case DistanceLong:
		return a.Distance.Long
	default:
		return a.Distance.Medium
	}
}

// ForStrategy returns the rating for a running style
func (a Aptitude) ForStrategy(s Strategy) int {
	switch s {
	case StrategyRunner:
		return a.Strategy.Runner
	case StrategyLeader:
		return a.Strategy.Leader
	case StrategyBetweener:
		return a.Strategy.Betweener
	default:
		return a.Strategy.Chaser
	}
}

// PreferredStrategy is the argmax of the strategy ratings, ties broken by StrategyOrder
func (a Aptitude) PreferredStrategy() Strategy {
	best := StrategyOrder[0]
	bestScore := a.ForStrategy(best)
	for _, s := range StrategyOrder[1:] {
		if score := a.ForStrategy(s); score > bestScore {
			best, bestScore = s, score
		}
	}
	return best
}

// AptitudeGrade converts a 1-10 rating to its display letter
func AptitudeGrade(v int) string {
	switch {
	case v >= 10:
		return "S"
	case v >= 8:
		return "A"
	case v == 7:
		return "B"
	case v == 6:
		return "C"
	case v == 5:
		return "D"
	case v == 4:
		return "E"
	case v == 3:
		return "F"
	default:
		return "G"
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
