package extractor

import (
	"context"
	"fmt"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/marginote/marginote/internal/pkg/logutil"
)

// YouTubeProber fills in duration and channel name for saved videos. Failures
// are soft: the caller keeps duration=0.
type YouTubeProber struct {
	client youtube.Client
}

func NewYouTubeProber() *YouTubeProber {
	return &YouTubeProber{}
}

func (p *YouTubeProber) Probe(ctx context.Context, videoID string) (*VideoInfo, error) {
	video, err := p.client.GetVideoContext(ctx, videoID)
	if err != nil {
		logutil.GetLogger(ctx).Warn("video probe failed", zap.String("video_id", videoID), zap.Error(err))
		return nil, fmt.Errorf("probe video %s: %w", videoID, err)
	}
	return &VideoInfo{
		Duration:    video.Duration.Seconds(),
		ChannelName: video.Author,
	}, nil
}
