//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/cyclecare/internal/bootstrap"
	"github.com/yanqian/cyclecare/internal/domain/analytics"
	"github.com/yanqian/cyclecare/internal/domain/locator"
	"github.com/yanqian/cyclecare/internal/infra/config"
	"github.com/yanqian/cyclecare/internal/infra/places/google"
	httpiface "github.com/yanqian/cyclecare/internal/interface/http"
	"github.com/yanqian/cyclecare/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		bootstrap.NewClosers,
		provideAnalyticsConfig,
		provideLocatorConfig,
		providePlacesClient,
		providePayloadRepository,
		providePlaceCache,
		analytics.NewService,
		locator.NewSearcher,
		locator.NewService,
		wire.Bind(new(locator.PlacesProvider), new(*google.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
