// Package adapters holds the concrete payment gateway integrations and the
// registry the checkout service resolves them from.
package adapters

import (
	"github.com/smallbiznis/taskora/internal/payment/domain"
)

// Registry resolves a gateway by payment method name.
type Registry struct {
	gateways map[string]domain.Gateway
}

func NewRegistry(gateways ...domain.Gateway) *Registry {
	byName := make(map[string]domain.Gateway, len(gateways))
	for _, gw := range gateways {
		byName[gw.Name()] = gw
	}
	return &Registry{gateways: byName}
}

// Resolve returns the gateway registered under method, or nil.
func (r *Registry) Resolve(method string) domain.Gateway {
	return r.gateways[method]
}
