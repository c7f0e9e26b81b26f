package media

import "strings"

// Quality selects a delivery rendition of a CDN asset.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// The CDN derives renditions on the fly from a parameter segment spliced
// into the delivery URL after "/upload/". Only this URL convention is relied
// on; the transformation itself is the CDN's business.
var qualityTransforms = map[Quality]string{
	QualityLow:    "q_30,f_auto,w_400",
	QualityMedium: "q_70,f_auto,w_800",
	QualityHigh:   "q_90,f_auto,w_1200",
}

// ParseQuality maps a raw string to a known quality tier.
func ParseQuality(raw string) (Quality, bool) {
	q := Quality(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := qualityTransforms[q]
	return q, ok
}

// VariantURL derives the delivery URL for the requested quality tier. URLs
// without an "/upload/" segment are returned unchanged.
func VariantURL(originalURL string, q Quality) string {
	transform, ok := qualityTransforms[q]
	if !ok {
		return originalURL
	}
	prefix, rest, found := strings.Cut(originalURL, "/upload/")
	if !found || rest == "" {
		return originalURL
	}
	return prefix + "/upload/" + transform + "/" + rest
}
