package feed

// Depth tiers served by the upstream book channel.
var depthTiers = []int{25, 100, 250}

// MaxDepth is the deepest book the feed will serve.
const MaxDepth = 250

// DepthTier maps a requested number of levels to the smallest tier that can
// serve it. Requests deeper than MaxDepth are a configuration error.
func DepthTier(levels int) (int, error) {
	if levels < 0 {
		return 0, &UnsupportedDepthError{Requested: levels, Max: MaxDepth}
	}
	for _, tier := range depthTiers {
		if levels <= tier {
			return tier, nil
		}
	}
	return 0, &UnsupportedDepthError{Requested: levels, Max: MaxDepth}
}

// displayTier is DepthTier for a session, which must display at least one level.
func displayTier(levels int) (int, error) {
	if levels <= 0 {
		return 0, &UnsupportedDepthError{Requested: levels, Max: MaxDepth}
	}
	return DepthTier(levels)
}

// ValidateDisplayDepth reports whether a session could run with levels.
func ValidateDisplayDepth(levels int) error {
	_, err := displayTier(levels)
	return err
}
