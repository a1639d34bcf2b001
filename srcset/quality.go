package srcset

// MaxDPR largest device pixel ratio of fixed size srcset
const MaxDPR = 5

// dprQualities default quality by device pixel ratio, decreasing as ratio grows
var dprQualities = [MaxDPR]int{75, 50, 35, 23, 20}

// DPRQuality returns the default quality for device pixel ratio 1 to MaxDPR,
// 0 otherwise
func DPRQuality(dpr int) int {
	if dpr < 1 || dpr > MaxDPR {
		return 0
	}
	return dprQualities[dpr-1]
}

// DPRQualities returns default qualities for 1x to MaxDPR
func DPRQualities() []int {
	q := dprQualities
	return q[:]
}
