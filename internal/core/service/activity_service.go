package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/medidata/dataset-system/internal/core/domain"
	"github.com/medidata/dataset-system/internal/core/ports"
)

// ActivityService records audit events. Failures are logged and swallowed:
// a lost audit record never fails the operation that produced it. This is
// applied uniformly, including on the register/login path.
type ActivityService struct {
	repo ports.ActivityRepository
	log  zerolog.Logger
}

func NewActivityService(repo ports.ActivityRepository, log zerolog.Logger) *ActivityService {
	return &ActivityService{repo: repo, log: log}
}

func (s *ActivityService) LogUserActivity(ctx context.Context, userID, actionType, details, ip string) {
	if userID == "" || actionType == "" {
		s.log.Warn().Str("action_type", actionType).Msg("user activity dropped: missing user id or action type")
		return
	}

	err := s.repo.InsertUserActivity(ctx, &domain.UserActivity{
		UserID:        userID,
		ActionType:    actionType,
		ActionDetails: details,
		IPAddress:     normalizeIP(ip),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("action_type", actionType).Msg("failed to record user activity")
	}
}

func (s *ActivityService) LogDatasetUsage(ctx context.Context, datasetID, actionType, searchTerm, userID string) {
	err := s.repo.InsertDatasetUsage(ctx, &domain.DatasetUsage{
		DatasetID:  datasetID,
		UserID:     userID,
		ActionType: actionType,
		SearchTerm: searchTerm,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("action_type", actionType).Str("dataset_id", datasetID).
			Msg("failed to record dataset usage")
	}
}

// normalizeIP strips the IPv4-mapped-IPv6 prefix so addresses are stored in
// their dotted form.
func normalizeIP(ip string) string {
	ip = strings.TrimPrefix(ip, "::ffff:")
	if ip == "" {
		return "unknown"
	}
	return ip
}
