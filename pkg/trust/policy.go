package trust

const (
	defaultBaselineScore      = 75
	defaultWhitelistScore     = 100
	defaultCheckPenalty       = 20
	defaultCompliantThreshold = 70
	defaultBlockedFloor       = 30
)

// Policy holds the scoring knobs for trust evaluation. The exact penalties
// and thresholds are deployment policy, not law; zero values fall back to the
// documented defaults.
type Policy struct {
	// BaselineScore is the starting score for sources on neither list.
	BaselineScore int
	// WhitelistScore is the starting score for whitelisted sources.
	WhitelistScore int
	// CheckPenalty is subtracted from the score per failed check.
	CheckPenalty int
	// CompliantThreshold: scores at or above it (with no blocking failure)
	// are compliant.
	CompliantThreshold int
	// BlockedFloor: scores at or below it are blocked outright.
	BlockedFloor int
}

// DefaultPolicy returns the default scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		BaselineScore:      defaultBaselineScore,
		WhitelistScore:     defaultWhitelistScore,
		CheckPenalty:       defaultCheckPenalty,
		CompliantThreshold: defaultCompliantThreshold,
		BlockedFloor:       defaultBlockedFloor,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.BaselineScore == 0 {
		p.BaselineScore = d.BaselineScore
	}
	if p.WhitelistScore == 0 {
		p.WhitelistScore = d.WhitelistScore
	}
	if p.CheckPenalty == 0 {
		p.CheckPenalty = d.CheckPenalty
	}
	if p.CompliantThreshold == 0 {
		p.CompliantThreshold = d.CompliantThreshold
	}
	if p.BlockedFloor == 0 {
		p.BlockedFloor = d.BlockedFloor
	}
	return p
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
