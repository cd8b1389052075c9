package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/emergencybox/emergencybox/internal/announcements"
	response "github.com/emergencybox/emergencybox/internal/lib"
	"github.com/emergencybox/emergencybox/internal/lib/logger/sl"
	"github.com/emergencybox/emergencybox/internal/transport/httpapi"
)

type Handler struct {
	repo announcements.Repo
	log  *slog.Logger
}

func New(repo announcements.Repo, log *slog.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

func (h *Handler) Set() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.announcements.Set"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req announcements.SetAnnouncementRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("decode request error", sl.Err(err))
			httpapi.WriteError(w, r, httpapi.ErrInvalidRequest)
			return
		}

		id, err := h.repo.SetActive(r.Context(), req.Message)
		if err != nil {
			log.Error("failed to set announcement", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		log.Info("announcement set", slog.Int64("announcement_id", id))

		render.JSON(w, r, announcements.SetAnnouncementResponse{
			Success:        true,
			AnnouncementID: id,
		})
	}
}

func (h *Handler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.announcements.Get"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		a, err := h.repo.GetActive(r.Context())
		if err != nil {
			log.Error("failed to get announcement", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, announcements.GetAnnouncementResponse{
			Success:      true,
			Announcement: a,
		})
	}
}

func (h *Handler) Clear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.announcements.Clear"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if err := h.repo.Clear(r.Context()); err != nil {
			log.Error("failed to clear announcement", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok())
	}
}
