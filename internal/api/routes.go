package api

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all API routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/tip", h.tip)

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", h.createGroup)
			r.Get("/", h.listGroups)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getGroup)
				r.Delete("/", h.deleteGroup)
				r.Post("/payments", h.recordPayment)
				r.Post("/payout", h.completePayout)
				r.Post("/advance", h.advanceRound)
				r.Put("/payout-order", h.setPayoutOrder)
				r.Post("/members", h.addMember)
				r.Delete("/members/{memberId}", h.removeMember)
				r.Post("/reset", h.resetGroup)
				r.Get("/export", h.exportGroup)
			})
		})
	})
}
