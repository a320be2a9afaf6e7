package xp

// ComputeDiscountingOrGainConstant derives the constant used to adjust an
// episode's raw terminal reward into its performance score, from the ratio
// between a single in-progress step's reward and a successful episode's
// reward.
//
// If the single-step reward works against the episode reward (opposite
// sign: the ratio is negative), the result is a discount in [0,1) - more
// steps means more erosion of the episode's value. Otherwise the result is
// a gain in [1,2], since every extra in-progress step no longer costs
// anything and the two rewards reinforce each other. Either way the ratio
// itself is clamped to at most 1 in magnitude before being applied, so a
// single-step reward can never flip the bonus past double or erase more
// than the entire episode reward.
func ComputeDiscountingOrGainConstant(singleStepReward, episodeReward int) float64 {
	if episodeReward == 0 {
		return 1.0
	}
	ratio := float64(singleStepReward) / float64(episodeReward)

	if ratio < 0 {
		ratio = -ratio
		if ratio > 1 {
			ratio = 1
		}
		return 1 - ratio
	}

	if ratio > 1 {
		ratio = 1
	}
	return 1 + ratio
}
