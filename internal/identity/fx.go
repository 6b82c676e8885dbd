package identity

import (
	"github.com/smallbiznis/coursesync/internal/identity/repository"
	"github.com/smallbiznis/coursesync/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
