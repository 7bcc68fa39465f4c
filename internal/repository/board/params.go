package board

// FeaturedTransform receives the current list and returns the list to store.
// Returning an error aborts the mutation without writing.
type FeaturedTransform func(current []FeaturedContent) ([]FeaturedContent, error)
