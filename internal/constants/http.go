// Package constants provides centralized definitions of constants used throughout the application
package constants

// HTTP header and context keys for tenant scoping
const (
	// TenantHeader is the request header carrying the caller's tenant id
	TenantHeader = "X-Tenant-Id"

	// TenantLocalKey is the fiber locals key the tenant middleware stores
	// the resolved tenant id under
	TenantLocalKey = "tenant_id"
)
