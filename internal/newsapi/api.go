// Package newsapi provides the REST API router of the news service.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"

	"newsboard/internal/models"
	"newsboard/internal/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

var (
	ErrInternal = errors.New("internal server error")
	ErrNotFound = errors.New("not found")
	ErrBadInput = errors.New("invalid input")
)

type ctxKey int

const requestID ctxKey = iota

type wideResponseWriter struct {
	http.ResponseWriter
	length, status int
	internalErr    error
}

func (w *wideResponseWriter) WriteHeader(status int) {
	w.ResponseWriter.WriteHeader(status)
	w.status = status
}

func (w *wideResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.length += n
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return n, err
}

// API serves the news REST surface from a Storage.
type API struct {
	router  *mux.Router
	storage storage.Storage
	logger  *zap.Logger
}

func New(st storage.Storage, logger *zap.Logger) *API {
	api := API{
		router:  mux.NewRouter(),
		storage: st,
		logger:  logger,
	}
	api.endpoints()
	return &api
}

// ServeHTTP lets the API itself be used as the server handler.
func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.router.ServeHTTP(w, r)
}

func (api *API) endpoints() {
	api.router.Use(
		api.requestIDMiddleware,
		api.wideEventLogMiddleware,
		api.closerMiddleware,
		api.headersMiddleware,
	)
	api.router.HandleFunc("/users", api.handleUsers()).Methods(http.MethodGet, http.MethodOptions)
	api.router.HandleFunc("/news", api.handleNewsList()).Methods(http.MethodGet, http.MethodOptions)
	api.router.HandleFunc("/news", api.handleNewsCreate()).Methods(http.MethodPost)
	api.router.HandleFunc("/news/{id}", api.handleNewsItem()).Methods(http.MethodGet, http.MethodOptions)
	api.router.HandleFunc("/news/{id}", api.handleNewsPatch()).Methods(http.MethodPatch)
	api.router.HandleFunc("/news/{id}", api.handleNewsDelete()).Methods(http.MethodDelete)
}

// closerMiddleware drains and closes the request body so the
// TCP connection can be reused.
func (api *API) closerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		_, _ = io.Copy(io.Discard, r.Body)
		_ = r.Body.Close()
	})
}

// requestIDMiddleware takes the request id from the query parameters,
// generating one when absent, and puts it into the request context.
func (api *API) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.URL.Query().Get("request-id")
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestID, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// wideEventLogMiddleware logs one wide event per handled request.
func (api *API) wideEventLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wideWriter := &wideResponseWriter{ResponseWriter: w}

		next.ServeHTTP(wideWriter, r)

		addr, _, _ := net.SplitHostPort(r.RemoteAddr)
		api.logger.Info("request handled",
			zap.Any("request_id", r.Context().Value(requestID)),
			zap.Int("status_code", wideWriter.status),
			zap.Int("response_length", wideWriter.length),
			zap.String("method", r.Method),
			zap.String("remote_addr", addr),
			zap.String("uri", r.RequestURI),
			zap.Error(wideWriter.internalErr),
		)
	})
}

func (api *API) headersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json;charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func (api *API) WriteJSON(w http.ResponseWriter, data any, code int) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func (api *API) WriteJSONError(w http.ResponseWriter, err error, code int) {
	w.WriteHeader(code)
	if wrw, ok := w.(*wideResponseWriter); ok {
		wrw.internalErr = err
	}
	if code == http.StatusInternalServerError {
		err = ErrInternal
	}
	msg := map[string]string{"error": err.Error()}
	_ = json.NewEncoder(w).Encode(&msg)
}

// writeStorageError maps storage errors onto HTTP status codes.
func (api *API) writeStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		api.WriteJSONError(w, ErrNotFound, http.StatusNotFound)
		return
	}
	api.WriteJSONError(w, err, http.StatusInternalServerError)
}

func itemID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, ErrBadInput
	}
	return id, nil
}

func (api *API) handleUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := api.storage.Users(r.Context())
		if err != nil {
			api.writeStorageError(w, err)
			return
		}
		api.WriteJSON(w, users, http.StatusOK)
	}
}

func (api *API) handleNewsList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := api.storage.News(r.Context())
		if err != nil {
			api.writeStorageError(w, err)
			return
		}
		api.WriteJSON(w, items, http.StatusOK)
	}
}

func (api *API) handleNewsItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			api.WriteJSONError(w, err, http.StatusBadRequest)
			return
		}
		item, err := api.storage.NewsItem(r.Context(), id)
		if err != nil {
			api.writeStorageError(w, err)
			return
		}
		api.WriteJSON(w, item, http.StatusOK)
	}
}

func (api *API) handleNewsCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item models.NewsItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			api.WriteJSONError(w, ErrBadInput, http.StatusBadRequest)
			return
		}
		item.ID = 0 // ids are assigned by storage
		if err := api.storage.AddNews(r.Context(), &item); err != nil {
			api.writeStorageError(w, err)
			return
		}
		api.WriteJSON(w, item, http.StatusCreated)
	}
}

func (api *API) handleNewsPatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			api.WriteJSONError(w, err, http.StatusBadRequest)
			return
		}
		var patch models.NewsPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			api.WriteJSONError(w, ErrBadInput, http.StatusBadRequest)
			return
		}
		item, err := api.storage.UpdateNews(r.Context(), id, patch)
		if err != nil {
			api.writeStorageError(w, err)
			return
		}
		api.WriteJSON(w, item, http.StatusOK)
	}
}

func (api *API) handleNewsDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			api.WriteJSONError(w, err, http.StatusBadRequest)
			return
		}
		if err := api.storage.DeleteNews(r.Context(), id); err != nil {
			api.writeStorageError(w, err)
			return
		}
		api.WriteJSON(w, map[string]int64{"deleted": id}, http.StatusOK)
	}
}
