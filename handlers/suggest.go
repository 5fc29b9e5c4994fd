package handlers

import (
	"context"
	"net/http"

	"github.com/medica/medica-web/metrics"
	"github.com/medica/medica-web/validation"
	"github.com/medica/medica-web/views"
)

// suggestResponse is the typeahead payload. Seq echoes the lookup's order
// so the client can drop answers that arrive after a newer keystroke's.
type suggestResponse struct {
	Seq         uint64   `json:"seq"`
	Query       string   `json:"query"`
	Stale       bool     `json:"stale"`
	Suggestions []string `json:"suggestions"`
}

func (h *Handler) sequencerFor(sessionID, kind string) *views.Sequencer {
	seq, _ := h.suggestSeqs.LoadOrStore(sessionID+"/"+kind, &views.Sequencer{})
	return seq.(*views.Sequencer)
}

// SuggestMedicines answers medicine-name typeahead lookups.
func (h *Handler) SuggestMedicines(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	h.suggest(w, r, h.sequencerFor(s.ID(), "medicines"), func(ctx context.Context, q string) ([]string, error) {
		medicines, err := h.backend.SearchMedicines(ctx, q)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(medicines))
		for _, m := range medicines {
			names = append(names, m.Name)
		}
		return names, nil
	})
}

// SuggestInteractions answers drug-name typeahead lookups for the
// interaction checker.
func (h *Handler) SuggestInteractions(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	h.suggest(w, r, h.sequencerFor(s.ID(), "interactions"), func(ctx context.Context, q string) ([]string, error) {
		interactions, err := h.backend.SearchInteractions(ctx, q)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool)
		var names []string
		for _, it := range interactions {
			if !seen[it.Drug1] {
				seen[it.Drug1] = true
				names = append(names, it.Drug1)
			}
		}
		return names, nil
	})
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request, seq *views.Sequencer, lookup func(context.Context, string) ([]string, error)) {
	query := validation.SanitizeQuery(r.URL.Query().Get("q"), 100)
	if query == "" {
		respondWithJSON(w, r, http.StatusOK, suggestResponse{Suggestions: []string{}})
		return
	}

	ctx, n := seq.Next(r.Context())
	names, err := lookup(ctx, query)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		if ctx.Err() != nil {
			// A newer keystroke superseded this lookup
			respondWithJSON(w, r, http.StatusOK, suggestResponse{Seq: n, Query: query, Stale: true, Suggestions: []string{}})
			return
		}
		respondWithError(w, http.StatusBadGateway, "suggestion lookup failed")
		return
	}

	if names == nil {
		names = []string{}
	}
	respondWithJSON(w, r, http.StatusOK, suggestResponse{
		Seq:         n,
		Query:       query,
		Stale:       !seq.Latest(n),
		Suggestions: names,
	})
}
