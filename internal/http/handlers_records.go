package http

import (
	"context"
	"net/http"
	"strconv"

	"lynx/internal/core"
	"lynx/internal/services"
)

type createdResponse struct {
	ID int64 `json:"id"`
}

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// createFor decodes a T from the body, binds it to the {id} parent when bind
// is set, and saves it.
func createFor[T any](bind func(*T, int64), save func(context.Context, T) (int64, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v T
		if bind != nil {
			parentID, err := pathID(r, "id")
			if err != nil {
				writeError(w, r, err)
				return
			}
			if err := decodeJSON(w, r, &v); err != nil {
				writeError(w, r, err)
				return
			}
			bind(&v, parentID)
		} else if err := decodeJSON(w, r, &v); err != nil {
			writeError(w, r, err)
			return
		}

		id, err := save(r.Context(), v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, createdResponse{ID: id})
	}
}

func getFor[T any](get func(context.Context, int64) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		v, err := get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func listFor[T any](list func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(items))
	}
}

// updateFor replaces the record at {id} with the body.
func updateFor[T any](bind func(*T, int64), save func(context.Context, T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var v T
		if err := decodeJSON(w, r, &v); err != nil {
			writeError(w, r, err)
			return
		}
		bind(&v, id)
		if err := save(r.Context(), v); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func deleteFor(del func(context.Context, int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := del(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Contacts

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	limit, offset := defaultPageSize, 0
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, r, badRequest("invalid limit %q", v))
			return
		}
		limit = min(n, maxPageSize)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, badRequest("invalid offset %q", v))
			return
		}
		offset = n
	}

	contacts, err := s.records.ListContacts(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(contacts))
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var c core.Contact
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.records.CreateContact(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/contacts/"+strconv.FormatInt(created.ID, 10)).
		JSON(created).
		Write(w)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	getFor(s.records.GetContactDetails)(w, r)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	updateFor(func(c *core.Contact, id int64) { c.ID = id }, s.records.UpdateContact)(w, r)
}

func (s *Server) handleSearchContacts(w http.ResponseWriter, r *http.Request) {
	rows, err := s.records.SearchContacts(r.Context(), sanitizeInput(r.URL.Query().Get("q")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

func (s *Server) handleGetIntake(w http.ResponseWriter, r *http.Request) {
	getFor(s.records.GetIntake)(w, r)
}

func (s *Server) handleSaveIntake(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in core.Intake
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.ContactID = contactID
	id, err := s.records.SaveIntake(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in.ID = id
	writeJSON(w, http.StatusOK, in)
}

// SIP notes come back stamped with their quarter and fiscal year.

func (s *Server) handleCreateSipNote(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var n core.SipNote
	if err := decodeJSON(w, r, &n); err != nil {
		writeError(w, r, err)
		return
	}
	n.ContactID = contactID
	saved, err := s.records.CreateSipNote(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateSipNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var n core.SipNote
	if err := decodeJSON(w, r, &n); err != nil {
		writeError(w, r, err)
		return
	}
	n.ID = id
	saved, err := s.records.UpdateSipNote(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

type bulkResponse struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleBulkSipNotes(w http.ResponseWriter, r *http.Request) {
	var bulk services.BulkSipNote
	if err := decodeJSON(w, r, &bulk); err != nil {
		writeError(w, r, err)
		return
	}
	ids, err := s.records.CreateSipNotes(r.Context(), bulk)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bulkResponse{IDs: ids})
}
