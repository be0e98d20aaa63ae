package main

import (
	"context"
	"encoding/json"
	"net/http"

	"tycoon.gg/internal/auto"
)

// policyHandler exposes the running policy for inspection and live edits.
// GET returns the current settings; PUT replaces them and persists the
// result so a restart picks them up.
func (a *app) policyHandler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(a.currentPolicy())

		case http.MethodPut:
			var p auto.Policy
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if p.CostRule == "" {
				p.CostRule = auto.CostAny
			}
			switch p.CostRule {
			case auto.CostAny, auto.CostAbove, auto.CostBelow:
			default:
				http.Error(w, "bad cost_rule", http.StatusBadRequest)
				return
			}
			// The decision loop owns the engine; hand the edit over rather
			// than mutating from this goroutine.
			select {
			case a.policies <- p:
			case <-ctx.Done():
				http.Error(w, "shutting down", http.StatusServiceUnavailable)
				return
			}
			a.persistPolicy(ctx, p)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(p)

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}
