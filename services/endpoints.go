package services

import (
	"fmt"
	"net/http"

	"github.com/lborres/apothecary/core"
)

// Operation identifiers shared by the route table and HTTP adapters.
const (
	OpRegister             = "register"
	OpLogin                = "login"
	OpLogout               = "logout"
	OpGetSession           = "getSession"
	OpListPotionNames      = "listPotionNames"
	OpListPotionsByVendor  = "listPotionsByVendor"
	OpListPotions          = "listPotions"
	OpCreatePotion         = "createPotion"
	OpUpdatePotion         = "updatePotion"
	OpDeletePotion         = "deletePotion"
	OpAverageScore         = "averageScore"
	OpTotalPrice           = "totalPrice"
	OpTotalPotions         = "totalPotions"
	OpDistinctCategories   = "distinctCategories"
	OpAverageScoreByVendor = "averageScoreByVendor"
)

func endpoint(method, path, opID, desc string, requiresAuth bool) core.Endpoint {
	return core.Endpoint{
		Method: method,
		Path:   path,
		Metadata: core.EndpointMetadata{
			OperationID:  opID,
			Description:  desc,
			RequiresAuth: requiresAuth,
		},
	}
}

// BaseEndpoints returns framework-agnostic endpoint definitions for the
// whole API, in mount order.
//
// Static paths come before parameterized ones so routers that match in
// registration order never shadow them.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		endpoint(http.MethodPost, "/auth/register", OpRegister, "Register a user with a name and password", false),
		endpoint(http.MethodPost, "/auth/login", OpLogin, "Log in and receive a session cookie", false),
		endpoint(http.MethodGet, "/auth/logout", OpLogout, "Clear the session cookie", false),
		endpoint(http.MethodGet, "/auth/session", OpGetSession, "Get the session carried by the cookie", true),

		endpoint(http.MethodGet, "/potions/names", OpListPotionNames, "List potion names", false),
		endpoint(http.MethodGet, "/potions/analytics/average-score", OpAverageScore, "Mean score across all potions", false),
		endpoint(http.MethodGet, "/potions/analytics/total-price", OpTotalPrice, "Sum of all potion prices", false),
		endpoint(http.MethodGet, "/potions/analytics/total-potions", OpTotalPotions, "Number of potions", false),
		endpoint(http.MethodGet, "/potions/analytics/distinct-categories", OpDistinctCategories, "Every category used by a potion", false),
		endpoint(http.MethodGet, "/potions/analytics/average-score-by-vendor", OpAverageScoreByVendor, "Mean score per vendor", false),
		endpoint(http.MethodGet, "/potions/vendor/:vendorId", OpListPotionsByVendor, "List the potions of one vendor", false),
		endpoint(http.MethodGet, "/potions", OpListPotions, "List all potions", false),
		endpoint(http.MethodPost, "/potions", OpCreatePotion, "Create a potion", false),
		endpoint(http.MethodPut, "/potions/:id", OpUpdatePotion, "Update some fields of a potion", false),
		endpoint(http.MethodDelete, "/potions/:id", OpDeletePotion, "Delete a potion", false),
	}
}

// EndpointRegistry keeps endpoints in registration order and rejects
// duplicate METHOD:PATH combinations and duplicate operation ids.
type EndpointRegistry struct {
	endpoints []core.Endpoint
	byKey     map[string]int
	byOpID    map[string]int
}

// NewEndpointRegistry creates a registry with BaseEndpoints pre-registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		byKey:  make(map[string]int),
		byOpID: make(map[string]int),
	}
	if err := reg.Register(BaseEndpoints()...); err != nil {
		// the base table is static; a conflict here is a programming error
		panic(err)
	}
	return reg
}

// Register adds endpoints as one batch. If any endpoint conflicts with a
// registered one or with another in the batch, nothing is registered.
func (r *EndpointRegistry) Register(endpoints ...core.Endpoint) error {
	seenKeys := make(map[string]bool, len(endpoints))
	seenOps := make(map[string]bool, len(endpoints))

	for _, ep := range endpoints {
		key := ep.Key()
		if _, exists := r.byKey[key]; exists || seenKeys[key] {
			return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
		}
		opID := ep.Metadata.OperationID
		if opID == "" {
			return fmt.Errorf("endpoint %s %s has no operation id", ep.Method, ep.Path)
		}
		if _, exists := r.byOpID[opID]; exists || seenOps[opID] {
			return fmt.Errorf("operation id conflict: %q already registered", opID)
		}
		seenKeys[key] = true
		seenOps[opID] = true
	}

	for _, ep := range endpoints {
		r.byKey[ep.Key()] = len(r.endpoints)
		r.byOpID[ep.Metadata.OperationID] = len(r.endpoints)
		r.endpoints = append(r.endpoints, ep)
	}
	return nil
}

// Lookup returns the endpoint registered under opID.
func (r *EndpointRegistry) Lookup(opID string) (core.Endpoint, bool) {
	i, ok := r.byOpID[opID]
	if !ok {
		return core.Endpoint{}, false
	}
	return r.endpoints[i], true
}

// Endpoints returns a copy of all registered endpoints in registration order.
func (r *EndpointRegistry) Endpoints() []core.Endpoint {
	return append([]core.Endpoint(nil), r.endpoints...)
}
