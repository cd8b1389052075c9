package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	response "github.com/emergencybox/emergencybox/internal/lib"
	"github.com/emergencybox/emergencybox/internal/lib/logger/sl"
	"github.com/emergencybox/emergencybox/internal/messages"
	"github.com/emergencybox/emergencybox/internal/metrics"
	"github.com/emergencybox/emergencybox/internal/transport/httpapi"
)

type Handler struct {
	repo      messages.Repo
	listLimit int
	log       *slog.Logger
}

func New(repo messages.Repo, listLimit int, log *slog.Logger) *Handler {
	return &Handler{repo: repo, listLimit: listLimit, log: log}
}

func (h *Handler) Send() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.Send"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req messages.CreateMessageRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("decode request error", sl.Err(err))
			httpapi.WriteError(w, r, httpapi.ErrInvalidRequest)
			return
		}

		id, err := h.repo.Insert(r.Context(), req)
		if err != nil {
			log.Error("failed to send message", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		metrics.MessagesSent.Inc()

		render.JSON(w, r, messages.CreateMessageResponse{
			Success:   true,
			MessageID: id,
		})
	}
}

func (h *Handler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.List"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		limit := h.listLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
				limit = n
			}
		}

		msgs, err := h.repo.List(r.Context(), limit)
		if err != nil {
			log.Error("failed to list messages", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, messages.ListMessagesResponse{
			Success:  true,
			Messages: msgs,
		})
	}
}

func (h *Handler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.Delete"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			log.Error("invalid message id", slog.String("id", idStr))
			httpapi.WriteError(w, r, httpapi.ErrInvalidRequest)
			return
		}

		if err := h.repo.Delete(r.Context(), id); err != nil {
			log.Error("failed to delete message", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok())
	}
}

func (h *Handler) Clear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.Clear"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if err := h.repo.DeleteAll(r.Context()); err != nil {
			log.Error("failed to clear chat", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		log.Info("chat cleared")

		render.JSON(w, r, response.Ok())
	}
}
