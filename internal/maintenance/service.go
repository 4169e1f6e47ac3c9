package maintenance

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
	"github.com/shopkart-labs/shopkart-backend/pkg/logger"
)

type storeFlusher interface {
	FlushAll(ctx context.Context) error
}

// Service exposes destructive operator maintenance. Every operation requires
// an explicit confirmation token so a stray request cannot wipe data.
type Service interface {
	Flush(ctx context.Context, confirm string) error
}

type service struct {
	store  storeFlusher
	logger *logger.Logger
}

func NewService(store storeFlusher, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("maintenance store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, logger: logg}, nil
}

// Flush removes every storefront row. The caller must send confirm="yes".
func (s *service) Flush(ctx context.Context, confirm string) error {
	if strings.ToLower(strings.TrimSpace(confirm)) != "yes" {
		return pkgerrors.New(pkgerrors.CodeValidation, `flush requires confirm: "yes"`)
	}
	if err := s.store.FlushAll(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flush storefront data")
	}
	s.logger.Warn(ctx, "storefront data flushed")
	return nil
}
