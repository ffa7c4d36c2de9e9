package main

import (
	"context"

	"storefront-functions/internal/handlers"
	"storefront-functions/pkg/lambda"
	"storefront-functions/pkg/server"

	"github.com/sirupsen/logrus"
)

func main() {
	manager := lambda.GetConnectionManager()
	if _, err := manager.GetContainer(context.Background()); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize container")
	}

	lambda.Start(lambda.NewContainerRouter(manager, func(container *server.Container) *lambda.Router {
		routes := handlers.NewCartHandler(container.CartService, container.Logger).Routes()
		return handlers.NewLambdaRouter(handlers.NewRouterConfig(container), routes)
	}))
}
