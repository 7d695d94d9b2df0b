package common

import (
	"context"
	"slices"
)

type ctxKey string

const (
	customerIDKey ctxKey = "auth/customer-id"
	rolesKey      ctxKey = "auth/roles"
)

// WithCustomer stores the authenticated customer identifier and roles on the context.
func WithCustomer(ctx context.Context, id string, roles []string) context.Context {
	ctx = context.WithValue(ctx, customerIDKey, id)
	return context.WithValue(ctx, rolesKey, roles)
}

// CustomerID extracts the authenticated customer identifier from the context.
func CustomerID(ctx context.Context) (string, bool) {
	v := ctx.Value(customerIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// HasRole reports whether the authenticated principal carries the given role.
func HasRole(ctx context.Context, role string) bool {
	v := ctx.Value(rolesKey)
	if v == nil {
		return false
	}
	roles, ok := v.([]string)
	return ok && slices.Contains(roles, role)
}
