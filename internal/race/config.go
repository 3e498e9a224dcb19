package race

import (
	"github.com/yourusername/derby-sim/internal/config"
	"github.com/yourusername/derby-sim/internal/models"
)

// Engine tuning. These encode game balance, not physics.
const (
	DefaultFrameRate     = 10
	DefaultSafetyCutoff  = 600.0
	DefaultRacePace      = 16.5
	DefaultDraftPhaseEnd = 0.70

	// Draft phase pack control
	GapBehindTolerance = 2.0
	GapAheadTolerance  = 1.0
	DraftingBoost      = 1.04
	EaseOffFactor      = 0.96

	// Sprint phase
	DefaultSprintBonusCap = 1.5
	SpeedWeight           = 0.7
	PowerWeight           = 0.3
	StatScale             = float64(models.StatCeiling)

	SpurtBurnPerMeter     = 0.6
	SpurtThresholdMax     = 0.75
	SpurtThresholdSpread  = 0.10
	SpurtBonus            = 0.5
	ChaserClosingBonus    = 0.3
	BetweenerClosingBonus = 0.15

	SoftWallFactor = 0.95

	// Ultimate
	UltimateBaseProgress  = 0.80
	UltimateNoiseMeters   = 50.0
	UltimateMinProgress   = 0.5
	UltimateFinishMargin  = 50.0
	UltimateMinStamina    = 50.0
	UltimateBaseChance    = 0.70
	UltimateWisdomDivisor = 4000.0
	UltimateBonus         = 0.8

	// Acceleration smoothing, per second
	AccelBase       = 0.8
	AccelPowerScale = 1.2
	DecelFactor     = 0.5

	// Stamina drain, per second
	DefaultStaminaDrainRate    = 0.40
	LongRaceDistance           = 2400
	LongRaceDrainFactor        = 0.8
	SpurtDrainFactor           = 1.5
	DefaultDraftingDrainFactor = 0.90

	// Commentary
	LeaderChangeInterval = 2.0
	FinalStretchMeters   = 200.0
	FinalStretchLong     = 400.0
	MidRaceProgress      = 0.5
)

// Config holds every knob of the simulator
type Config struct {
	FrameRate           int
	SafetyCutoff        float64
	RacePace            float64
	DraftPhaseEnd       float64
	SprintBonusCap      float64
	StaminaDrainRate    float64
	DraftingDrainFactor float64

	// TargetGaps is the distance each strategy sits behind the leader during the draft phase
	TargetGaps map[models.Strategy]float64
	// UltimateOffsets shift the ultimate trigger point, as a fraction of the distance
	UltimateOffsets map[models.Strategy]float64
	ClosingBonus    map[models.Strategy]float64
}

// DefaultConfig returns the tuned engine settings
func DefaultConfig() Config {
	return Config{
		FrameRate:           DefaultFrameRate,
		SafetyCutoff:        DefaultSafetyCutoff,
		RacePace:            DefaultRacePace,
		DraftPhaseEnd:       DefaultDraftPhaseEnd,
		SprintBonusCap:      DefaultSprintBonusCap,
		StaminaDrainRate:    DefaultStaminaDrainRate,
		DraftingDrainFactor: DefaultDraftingDrainFactor,
		TargetGaps: map[models.Strategy]float64{
			models.StrategyRunner:    0,
			models.StrategyLeader:    4,
			models.StrategyBetweener: 8,
			models.StrategyChaser:    12,
		},
		UltimateOffsets: map[models.Strategy]float64{
			models.StrategyRunner:    -0.10,
			models.StrategyLeader:    -0.05,
			models.StrategyBetweener: 0,
			models.StrategyChaser:    0.05,
		},
		ClosingBonus: map[models.Strategy]float64{
			models.StrategyBetweener: BetweenerClosingBonus,
			models.StrategyChaser:    ChaserClosingBonus,
		},
	}
}

// FromConfig overlays configured values on DefaultConfig
func FromConfig(cfg *config.SimulationConfig) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if cfg.FrameRate > 0 {
		c.FrameRate = cfg.FrameRate
	}
	if cfg.SafetyCutoffSeconds > 0 {
		c.SafetyCutoff = cfg.SafetyCutoffSeconds
	}
	if cfg.RacePace > 0 {
		c.RacePace = cfg.RacePace
	}
	if cfg.DraftPhaseEnd > 0 {
		c.DraftPhaseEnd = cfg.DraftPhaseEnd
	}
	if cfg.SprintBonusCap > 0 {
		c.SprintBonusCap = cfg.SprintBonusCap
	}
	if cfg.StaminaDrainRate > 0 {
		c.StaminaDrainRate = cfg.StaminaDrainRate
	}
	if cfg.DraftingDrainFactor > 0 {
		c.DraftingDrainFactor = cfg.DraftingDrainFactor
	}
	return c
}

func (c Config) dt() float64 {
	return 1.0 / float64(c.FrameRate)
}

func (c Config) maxSteps() int {
	return int(c.SafetyCutoff * float64(c.FrameRate))
}
