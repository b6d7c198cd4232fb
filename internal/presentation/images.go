package presentation

import "strings"

const PlaceholderImage = "https://via.placeholder.com/300"

// CleanImage removes the `["` … `"]` wrapper the catalog sometimes leaves
// around image URLs. A value that is empty, before or after unwrapping,
// becomes the placeholder.
func CleanImage(raw string) string {
	if len(raw) >= 4 && strings.HasPrefix(raw, `["`) && strings.HasSuffix(raw, `"]`) {
		raw = raw[2 : len(raw)-2]
	}
	if strings.TrimSpace(raw) == "" {
		return PlaceholderImage
	}
	return raw
}

// PrimaryImage cleans the first image of a product.
func PrimaryImage(images []string) string {
	if len(images) == 0 {
		return PlaceholderImage
	}
	return CleanImage(images[0])
}

func CleanImages(images []string) []string {
	out := make([]string, len(images))
	for i, img := range images {
		out[i] = CleanImage(img)
	}
	return out
}
