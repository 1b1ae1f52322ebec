package status

import (
	"context"
	"strings"

	"multicollateral/core"

	"github.com/fox-one/pkg/logger"
)

type statusService struct {
	properties core.PropertyStore
}

// New circuit breaker over the property store
func New(properties core.PropertyStore) core.StatusService {
	return &statusService{properties: properties}
}

func suspendKey(section string) string {
	return "suspend:" + section
}

func (s *statusService) IsSuspended(ctx context.Context, section string) (bool, error) {
	v, err := s.properties.Get(ctx, suspendKey(section))
	if err != nil {
		return false, err
	}

	return strings.TrimSpace(v) != "", nil
}

func (s *statusService) Suspend(ctx context.Context, section, reason string) error {
	if reason == "" {
		reason = "suspended"
	}

	logger.FromContext(ctx).WithField("section", section).Infoln("suspend:", reason)
	return s.properties.Save(ctx, suspendKey(section), reason)
}

func (s *statusService) Resume(ctx context.Context, section string) error {
	logger.FromContext(ctx).WithField("section", section).Infoln("resume")
	return s.properties.Save(ctx, suspendKey(section), "")
}
