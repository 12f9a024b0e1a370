package job

import (
	"context"

	"go.uber.org/zap"

	"github.com/marginote/marginote/internal/pkg/logutil"
	"github.com/marginote/marginote/internal/repo"
)

// IntegritySweepJob backstops the cascade rules: it deletes highlight and
// comment rows whose owner is gone and removes membership rows whose
// collection or content no longer exists.
type IntegritySweepJob struct {
	highlights *repo.HighlightRepo
	comments   *repo.CommentRepo
	members    *repo.CollectionMemberRepo
}

func NewIntegritySweepJob(highlights *repo.HighlightRepo, comments *repo.CommentRepo, members *repo.CollectionMemberRepo) *IntegritySweepJob {
	return &IntegritySweepJob{highlights: highlights, comments: comments, members: members}
}

func (j *IntegritySweepJob) Name() string {
	return "integrity_sweep"
}

func (j *IntegritySweepJob) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)

	orphanHighlights, err := j.highlights.DeleteOrphans(ctx)
	if err != nil {
		return err
	}
	orphanComments, err := j.comments.DeleteOrphans(ctx)
	if err != nil {
		return err
	}
	orphanMemberships, err := j.members.DeleteOrphans(ctx)
	if err != nil {
		return err
	}

	if orphanHighlights > 0 || orphanComments > 0 || orphanMemberships > 0 {
		logger.Info("integrity sweep repaired rows",
			zap.Int64("orphan_highlights", orphanHighlights),
			zap.Int64("orphan_comments", orphanComments),
			zap.Int64("orphan_memberships", orphanMemberships),
		)
	}
	return nil
}
