package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/arborui/arbor/pkg/domain"
	"github.com/arborui/arbor/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Editor defines the interface for the editor core as seen by the HTTP
// surface. It matches the arbor.Editor facade.
type Editor interface {
	Snapshot() *domain.ComponentNode
	FindByID(id string) *domain.ComponentNode
	InsertChild(parentID string, node *domain.ComponentNode) (string, bool)
	UpdateFields(id string, fields domain.Fields) bool
	Remove(id string) bool
	ReorderSibling(id string, dir domain.Direction) bool
	MoveTo(dragID, targetID string, index int) bool
	SetContextValue(key string, value any)
	Context() map[string]any
	Select(id string)
	Selected() string
	Import(data []byte) error
	Document() *domain.Document
	Trigger(ctx context.Context, nodeID, event string, local map[string]any) error
}

// Server exposes the editor as a JSON API: the REST rendition of the edit
// surface, an external source of structural-edit requests.
type Server struct {
	Editor Editor
	Docs   ports.DocumentStore
	Logger *slog.Logger
}

// NewHandler creates the HTTP handler for the editor. docs may be nil, in
// which case the named-document routes respond 503.
func NewHandler(editor Editor, docs ports.DocumentStore, logger *slog.Logger) http.Handler {
	s := &Server{Editor: editor, Docs: docs, Logger: logger}
	r := chi.NewRouter()

	r.Get("/tree", s.getTree)
	r.Get("/selection", s.getSelection)
	r.Put("/selection", s.putSelection)

	r.Post("/nodes", s.insertNode)
	r.Patch("/nodes/{id}", s.updateNode)
	r.Delete("/nodes/{id}", s.removeNode)
	r.Post("/nodes/{id}/reorder", s.reorderNode)
	r.Post("/nodes/{id}/move", s.moveNode)
	r.Post("/nodes/{id}/events/{event}", s.triggerEvent)

	r.Get("/context", s.getContext)
	r.Put("/context/{key}", s.putContextValue)

	r.Get("/document", s.exportDocument)
	r.Post("/document", s.importDocument)

	r.Get("/documents", s.listDocuments)
	r.Put("/documents/{name}", s.saveDocument)
	r.Post("/documents/{name}/load", s.loadDocument)
	r.Delete("/documents/{name}", s.deleteDocument)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// editResult reports whether a structural edit applied. Rejected edits are
// not errors: the editor's no-op policy surfaces here as applied=false.
type editResult struct {
	Applied bool   `json:"applied"`
	ID      string `json:"id,omitempty"`
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.Editor.Snapshot())
}

func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"id": s.Editor.Selected()})
}

func (s *Server) putSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.Editor.Select(body.ID)
	s.respond(w, http.StatusOK, map[string]string{"id": body.ID})
}

func (s *Server) insertNode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ParentID string                `json:"parentId"`
		Node     *domain.ComponentNode `json:"node"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Node == nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, applied := s.Editor.InsertChild(body.ParentID, body.Node)
	s.respond(w, http.StatusOK, editResult{Applied: applied, ID: id})
}

// updateRequest mirrors domain.Fields on the wire: absent keys stay
// untouched, present keys replace the field wholesale.
type updateRequest struct {
	Label  *string                    `json:"label,omitempty"`
	Props  map[string]any             `json:"props,omitempty"`
	Style  map[string]any             `json:"style,omitempty"`
	Events map[string][]domain.Action `json:"events,omitempty"`
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	var body updateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	applied := s.Editor.UpdateFields(id, domain.Fields{
		Label:  body.Label,
		Props:  body.Props,
		Style:  body.Style,
		Events: body.Events,
	})
	s.respond(w, http.StatusOK, editResult{Applied: applied, ID: id})
}

func (s *Server) removeNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.respond(w, http.StatusOK, editResult{Applied: s.Editor.Remove(id), ID: id})
}

func (s *Server) reorderNode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Direction domain.Direction `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Direction != domain.DirectionUp && body.Direction != domain.DirectionDown {
		http.Error(w, "Direction must be \"up\" or \"down\"", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	s.respond(w, http.StatusOK, editResult{Applied: s.Editor.ReorderSibling(id, body.Direction), ID: id})
}

func (s *Server) moveNode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TargetID string `json:"targetId"`
		Index    int    `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	s.respond(w, http.StatusOK, editResult{Applied: s.Editor.MoveTo(id, body.TargetID, body.Index), ID: id})
}

func (s *Server) triggerEvent(w http.ResponseWriter, r *http.Request) {
	// The body, when present, is the event-local context.
	var local map[string]any
	if err := json.NewDecoder(r.Body).Decode(&local); err != nil && err != io.EOF {
		http.Error(w, "Invalid local context", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	event := chi.URLParam(r, "event")
	if err := s.Editor.Trigger(r.Context(), id, event, local); err != nil {
		if errors.Is(err, domain.ErrNodeNotFound) {
			http.Error(w, "Node not found", http.StatusNotFound)
			return
		}
		s.Logger.Error("trigger failed", "node_id", id, "event", event, "err", err)
		http.Error(w, "Trigger failed", http.StatusInternalServerError)
		return
	}

	// Action failures are diagnostics, never blocking errors; the useful
	// output is the post-trigger context.
	s.respond(w, http.StatusOK, map[string]any{"context": s.Editor.Context()})
}

func (s *Server) getContext(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.Editor.Context())
}

func (s *Server) putContextValue(w http.ResponseWriter, r *http.Request) {
	var value any
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		http.Error(w, "Invalid JSON value", http.StatusBadRequest)
		return
	}

	key := chi.URLParam(r, "key")
	s.Editor.SetContextValue(key, value)
	s.respond(w, http.StatusOK, map[string]any{key: value})
}

func (s *Server) exportDocument(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.Editor.Document())
}

func (s *Server) importDocument(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.Editor.Import(data); err != nil {
		// All-or-nothing: the current tree is untouched on rejection.
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"rootId": s.Editor.Snapshot().ID})
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	if s.Docs == nil {
		http.Error(w, "No document store configured", http.StatusServiceUnavailable)
		return
	}
	names, err := s.Docs.List(r.Context())
	if err != nil {
		s.Logger.Error("list documents failed", "err", err)
		http.Error(w, "List failed", http.StatusInternalServerError)
		return
	}
	s.respond(w, http.StatusOK, names)
}

func (s *Server) saveDocument(w http.ResponseWriter, r *http.Request) {
	if s.Docs == nil {
		http.Error(w, "No document store configured", http.StatusServiceUnavailable)
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.Docs.Save(r.Context(), name, s.Editor.Document()); err != nil {
		s.Logger.Error("save document failed", "name", name, "err", err)
		http.Error(w, "Save failed", http.StatusInternalServerError)
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"name": name})
}

func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request) {
	if s.Docs == nil {
		http.Error(w, "No document store configured", http.StatusServiceUnavailable)
		return
	}
	name := chi.URLParam(r, "name")
	doc, err := s.Docs.Load(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			http.Error(w, "Document not found", http.StatusNotFound)
			return
		}
		s.Logger.Error("load document failed", "name", name, "err", err)
		http.Error(w, "Load failed", http.StatusInternalServerError)
		return
	}

	data, err := doc.Marshal()
	if err != nil {
		http.Error(w, "Load failed", http.StatusInternalServerError)
		return
	}
	if err := s.Editor.Import(data); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"name": name, "rootId": s.Editor.Snapshot().ID})
}

// maxDocumentSize bounds import payloads.
const maxDocumentSize = 16 << 20

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if s.Docs == nil {
		http.Error(w, "No document store configured", http.StatusServiceUnavailable)
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.Docs.Delete(r.Context(), name); err != nil {
		s.Logger.Error("delete document failed", "name", name, "err", err)
		http.Error(w, "Delete failed", http.StatusInternalServerError)
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"name": name})
}
