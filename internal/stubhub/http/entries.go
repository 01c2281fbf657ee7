package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hubcheck/hubcheck/internal/stubhub/domain"
	"github.com/hubcheck/hubcheck/internal/stubhub/service"
	"github.com/hubcheck/hubcheck/pkg/httpx"
	"github.com/hubcheck/hubcheck/pkg/idx"
	"github.com/hubcheck/hubcheck/pkg/slogx"
)

// EntriesHandler serves the content entry resource.
type EntriesHandler struct {
	EntryService *service.EntryService
}

// HandleList godoc
//
//	@Summary	List Entries
//	@Tags		Entries
//	@Produce	json
//	@Security	AuthToken
//	@Success	200	{object}	EntryListResponse
//	@Failure	401	{object}	OAuth2Error
//	@Router		/api/entries [get].
func (h *EntriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	entries, err := h.EntryService.List(ctx)
	if err != nil {
		log.Error("failed to list entries", "err", err)
		ErrServerError.WriteError(w)
		return
	}

	items := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toEntryResponse(e))
	}
	httpx.WriteJSON(w, http.StatusOK, EntryListResponse{Items: items, Total: len(items)})
}

// HandleGet godoc
//
//	@Summary	Fetch Entry
//	@Tags		Entries
//	@Produce	json
//	@Security	AuthToken
//	@Param		id	path		string	true	"Entry ID"
//	@Success	200	{object}	EntryResponse
//	@Failure	404	{object}	OAuth2Error
//	@Router		/api/entries/{id} [get].
func (h *EntriesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := entryID(w, r)
	if !ok {
		return
	}

	entry, err := h.EntryService.Get(ctx, id)
	if err != nil {
		writeEntryError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toEntryResponse(entry))
}

// HandleCreate godoc
//
//	@Summary	Create Entry
//	@Tags		Entries
//	@Accept		json
//	@Produce	json
//	@Security	AuthToken
//	@Param		entry	body		EntryRequest	true	"Entry payload"
//	@Success	201		{object}	EntryResponse
//	@Failure	400		{object}	OAuth2Error
//	@Router		/api/entries [post].
func (h *EntriesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrBadPayload.WriteError(w)
		return
	}

	entry, err := h.EntryService.Create(ctx, domain.Entry{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	}, httpx.SubjectFromCtx(ctx))
	if err != nil {
		writeEntryError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toEntryResponse(entry))
}

// HandleUpdate godoc
//
//	@Summary	Update Entry
//	@Tags		Entries
//	@Accept		json
//	@Produce	json
//	@Security	AuthToken
//	@Param		id		path		string			true	"Entry ID"
//	@Param		entry	body		EntryRequest	true	"Entry payload"
//	@Success	200		{object}	EntryResponse
//	@Failure	404		{object}	OAuth2Error
//	@Router		/api/entries/{id} [put].
func (h *EntriesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := entryID(w, r)
	if !ok {
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrBadPayload.WriteError(w)
		return
	}

	entry, err := h.EntryService.Update(ctx, domain.Entry{
		ID:    id,
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		writeEntryError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toEntryResponse(entry))
}

// HandleDelete godoc
//
//	@Summary	Delete Entry
//	@Tags		Entries
//	@Security	AuthToken
//	@Param		id	path	string	true	"Entry ID"
//	@Success	204
//	@Failure	404	{object}	OAuth2Error
//	@Router		/api/entries/{id} [delete].
func (h *EntriesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	if err := h.EntryService.Delete(r.Context(), id); err != nil {
		writeEntryError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// entryID validates the path ID. A malformed ULID can never exist, so it
// is reported as not found without touching the store.
func entryID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		ErrNotFound.WriteError(w)
		return "", false
	}
	return id.String(), true
}

func writeEntryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrInvalidEntry):
		ErrBadPayload.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("entry request failed", "err", err)
		ErrServerError.WriteError(w)
	}
}

func toEntryResponse(e domain.Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		Title:     e.Title,
		Body:      e.Body,
		Tags:      e.Tags,
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
