package vocabularies

// file types eligible for thumbnail rendering; the first attached file with
// one of these types supplies a record's preview image
var defaultThumbnailTypes = []string{"jpg", "jpeg", "png", "gif"}

// DefaultThumbnailTypes returns the file types eligible for thumbnails.
func DefaultThumbnailTypes() []string {
	types := make([]string, len(defaultThumbnailTypes))
	copy(types, defaultThumbnailTypes)
	return types
}

// thumbnail sizes (pixel widths) that are pre-rendered and linkable
var defaultThumbnailSizes = []int{10, 50, 100, 250, 750, 1200}

// DefaultThumbnailSizes returns the cached thumbnail sizes.
func DefaultThumbnailSizes() []int {
	sizes := make([]int, len(defaultThumbnailSizes))
	copy(sizes, defaultThumbnailSizes)
	return sizes
}
