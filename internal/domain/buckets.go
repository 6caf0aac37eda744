package domain

// Umbrales de tamaño de bloque (ETH).
const (
	HighRewardThreshold   = 1.0
	MediumRewardThreshold = 0.1
)

// BucketShares reparte el reward total de la muestra por tamaño de bloque:
// High (>= 1 ETH), Medium (0.1–1 ETH) y Low (< 0.1 ETH).
// Los Share* son fracciones del total (0 si el total es 0).
type BucketShares struct {
	High        float64 `json:"high"`
	Medium      float64 `json:"medium"`
	Low         float64 `json:"low"`
	ShareHigh   float64 `json:"share_high"`
	ShareMedium float64 `json:"share_medium"`
	ShareLow    float64 `json:"share_low"`
}

// ComputeBucketShares agrupa el reward total de la muestra por bucket.
func ComputeBucketShares(s RewardSample) BucketShares {
	var b BucketShares
	for _, v := range s.values {
		switch {
		case v >= HighRewardThreshold:
			b.High += v
		case v >= MediumRewardThreshold:
			b.Medium += v
		default:
			b.Low += v
		}
	}

	total := b.High + b.Medium + b.Low
	if total > 0 {
		b.ShareHigh = b.High / total
		b.ShareMedium = b.Medium / total
		b.ShareLow = b.Low / total
	}
	return b
}
