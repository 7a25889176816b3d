package menu

import (
	"github.com/smallbiznis/mensaplan/internal/menu/repository"
	"github.com/smallbiznis/mensaplan/internal/menu/service"
	"go.uber.org/fx"
)

var Module = fx.Module("menu.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
