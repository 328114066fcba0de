package contextutil

import "context"

type contextKey string

const (
	tenantContextKey    contextKey = "tenant"
	requestIDContextKey contextKey = "request_id"
)

// TenantHeader is the multi-tenancy header every backend call carries.
const TenantHeader = "Hawkular-Tenant"

// WithTenant stores the tenant in the context
func WithTenant(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, tenantContextKey, tenant)
}

// Tenant retrieves the tenant from the context
func Tenant(ctx context.Context) (string, bool) {
	tenant, ok := ctx.Value(tenantContextKey).(string)
	return tenant, ok && tenant != ""
}

// WithRequestID stores the id forwarded as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestID retrieves the request id from the context
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	return id, ok && id != ""
}
