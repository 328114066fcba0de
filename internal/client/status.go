package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// Status returns the backend status document, e.g. {"status":"STARTED"}.
func (a *Alerts) Status(ctx context.Context) (map[string]string, error) {
	status := map[string]string{}
	if _, err := a.do(ctx, request{method: http.MethodGet, path: "/status", anonymous: true}, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// Export dumps every trigger and action definition of the tenant.
func (a *Alerts) Export(ctx context.Context) (*types.Definitions, error) {
	var defs types.Definitions
	if _, err := a.do(ctx, request{method: http.MethodGet, path: "/export"}, &defs); err != nil {
		return nil, err
	}
	return &defs, nil
}

// Import loads definitions with the given merge strategy and returns what
// the backend actually imported.
func (a *Alerts) Import(ctx context.Context, strategy types.ImportStrategy, defs *types.Definitions) (*types.Definitions, error) {
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: unknown import strategy %q", ErrInvalidInput, strategy)
	}
	if defs == nil {
		return nil, fmt.Errorf("%w: definitions are required", ErrInvalidInput)
	}
	var imported types.Definitions
	if _, err := a.do(ctx, request{method: http.MethodPost, path: escape("import", string(strategy)), body: defs}, &imported); err != nil {
		return nil, err
	}
	return &imported, nil
}
