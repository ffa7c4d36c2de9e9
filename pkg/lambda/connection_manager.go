package lambda

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"storefront-functions/internal/config"
	"storefront-functions/pkg/server"
)

// staleAfter bounds how long a warm container is reused without a health check
const staleAfter = 5 * time.Minute

// ConnectionManager keeps one service container alive across warm invocations
type ConnectionManager struct {
	mu        sync.Mutex
	container *server.Container
	config    *config.Config
	lastUsed  time.Time
	factory   func(*config.Config) (*server.Container, error)
}

var (
	globalConnectionManager *ConnectionManager
	connectionManagerOnce   sync.Once
)

// GetConnectionManager returns the global connection manager instance
func GetConnectionManager() *ConnectionManager {
	connectionManagerOnce.Do(func() {
		globalConnectionManager = NewConnectionManager(nil)
	})
	return globalConnectionManager
}

// NewConnectionManager creates a connection manager for cfg. A nil cfg is
// resolved with config.GetOptimizedConfig on first use.
func NewConnectionManager(cfg *config.Config) *ConnectionManager {
	return &ConnectionManager{
		config:  cfg,
		factory: server.NewContainer,
	}
}

// GetContainer returns the service container, building it on first use and
// rebuilding it when a stale container fails its health check
func (cm *ConnectionManager) GetContainer(ctx context.Context) (*server.Container, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container != nil {
		if time.Since(cm.lastUsed) < staleAfter {
			cm.lastUsed = time.Now()
			return cm.container, nil
		}
		if err := cm.container.HealthCheck(ctx); err == nil {
			cm.lastUsed = time.Now()
			return cm.container, nil
		}
		cm.container.Close()
		cm.container = nil
	}

	if cm.config == nil {
		cfg, err := config.GetOptimizedConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cm.config = cfg
	}

	container, err := cm.factory(cm.config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}

	cm.container = container
	cm.lastUsed = time.Now()
	return container, nil
}

// IsHealthy reports whether a container is held and was used recently
func (cm *ConnectionManager) IsHealthy() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.container != nil && time.Since(cm.lastUsed) < staleAfter
}

// Cleanup closes the held container
func (cm *ConnectionManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container == nil {
		return nil
	}

	err := cm.container.Close()
	cm.container = nil
	return err
}

// ContainerRouter resolves the service container on every invocation and
// dispatches through a router built from it. A rebuilt container gets a
// freshly built router.
type ContainerRouter struct {
	manager *ConnectionManager
	build   func(*server.Container) *Router

	mu     sync.Mutex
	owner  *server.Container
	router *Router
}

// NewContainerRouter creates a dispatcher over manager's container
func NewContainerRouter(manager *ConnectionManager, build func(*server.Container) *Router) *ContainerRouter {
	return &ContainerRouter{manager: manager, build: build}
}

// Handle serves req with the router of the current container
func (cr *ContainerRouter) Handle(ctx context.Context, req *Request) (*Response, error) {
	container, err := cr.manager.GetContainer(ctx)
	if err != nil {
		return withCORS(Message(http.StatusInternalServerError, err.Error())), nil
	}
	return cr.routerFor(container).Handle(ctx, req)
}

func (cr *ContainerRouter) routerFor(container *server.Container) *Router {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.owner != container {
		cr.router = cr.build(container)
		cr.owner = container
	}
	return cr.router
}
