package extractor

// Metadata is the best-effort result of readability extraction. Any field may
// be empty; callers treat an error as "no enrichment available".
type Metadata struct {
	Title         string
	Author        string
	Description   string
	Publication   string
	PublishedDate string
	Image         string
	Content       string
	HTMLContent   string
	WordCount     int
}

// VideoInfo is the best-effort result of probing a video platform.
type VideoInfo struct {
	Duration    float64
	ChannelName string
}
