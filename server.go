package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go-scan-induction/document"
	"go-scan-induction/document/decoder"
	"go-scan-induction/document/sadl"
	"go-scan-induction/induction"
	"go-scan-induction/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const ErrorInternal = "error:internal"
const ERR_MARSHAL = "failed to marshal response message"
const ERR_INVALID_REQUEST = "invalid request"
const ERR_UNKNOWN_SESSION = "unknown session"
const ERR_UNSUPPORTED_KIND = "unsupported asset kind"
const ERR_RECEIPT_CREATION = "failed to create induction receipt"
const ERR_RECORD_STORE = "failed to store induction record"

type ServerConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	UseTls         bool   `json:"use_tls,omitempty"`
	TlsPrivKeyPath string `json:"tls_priv_key_path,omitempty"`
	TlsCertPath    string `json:"tls_cert_path,omitempty"`
}

type ServerState struct {
	recordStorage    VerifiedRecordStorage
	assetRegistry    AssetRegistry
	receiptCreator   ReceiptCreator
	decryptor        sadl.Decryptor
	facilityPrefixes []string
	sessions         *sessionRegistry
}

type Server struct {
	server *http.Server
	config ServerConfig
}

func (s *Server) ListenAndServe() error {
	if s.config.UseTls {
		slog.Info("Starting server with TLS", "host", s.config.Host, "port", s.config.Port, "cert", s.config.TlsCertPath, "key", s.config.TlsPrivKeyPath)
		return s.server.ListenAndServeTLS(s.config.TlsCertPath, s.config.TlsPrivKeyPath)
	} else {
		slog.Info("Starting server without TLS", "host", s.config.Host, "port", s.config.Port)
		return s.server.ListenAndServe()
	}
}

func (s *Server) Stop() error {
	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		slog.Error("Error during server shutdown", "error", err)
	} else {
		slog.Info("Server shut down successfully")
	}
	return err
}

func NewServer(state *ServerState, config ServerConfig) (*Server, error) {
	slog.Info("Creating new server", "host", config.Host, "port", config.Port, "tls", config.UseTls)
	router := mux.NewRouter()

	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("Health check request received")
		err := json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		if err != nil {
			slog.Error("failed to write body to http response", "error", err)
		}
	})

	router.HandleFunc("/api/classify", func(w http.ResponseWriter, r *http.Request) {
		handleClassify(w, r)
	})
	router.HandleFunc("/api/decode", func(w http.ResponseWriter, r *http.Request) {
		handleDecode(state, w, r)
	})
	router.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		handleCreateSession(state, w, r)
	})
	router.HandleFunc("/api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleGetSession(state, w, r)
	}).Methods(http.MethodGet)
	router.HandleFunc("/api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleDeleteSession(state, w, r)
	}).Methods(http.MethodDelete)
	router.HandleFunc("/api/sessions/{id}/scan", func(w http.ResponseWriter, r *http.Request) {
		handleSessionScan(state, w, r)
	})
	router.HandleFunc("/api/sessions/{id}/ack", func(w http.ResponseWriter, r *http.Request) {
		handleSessionAck(state, w, r)
	})
	router.HandleFunc("/api/sessions/{id}/reset", func(w http.ResponseWriter, r *http.Request) {
		handleSessionReset(state, w, r)
	})

	slog.Debug("Registered all API routes")

	addr := fmt.Sprintf("%v:%v", config.Host, config.Port)
	srv := &http.Server{
		Handler: router,
		Addr:    addr,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	slog.Info("Server created successfully", "address", addr)
	return &Server{
		server: srv,
		config: config,
	}, nil
}

// liveSession pairs a state machine with the identifiers the HTTP
// surface needs to address it. The machine itself never learns about
// HTTP.
type liveSession struct {
	id      string
	kind    string
	session *induction.Session
}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*liveSession
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*liveSession)}
}

func (r *sessionRegistry) add(s *liveSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.id] = s
}

func (r *sessionRegistry) get(id string) (*liveSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func handleClassify(w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	request, err := decodeScanRequest(r)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_REQUEST, "failed to decode classify request", err)
		return
	}

	class, classErr := document.Classify(document.StripWrapper(request.Scan))
	response := models.ClassifyResponse{Class: string(class)}
	if classErr != nil {
		response.Error = classErr.Error()
	}

	slog.Debug("Scan classified", "class", class)

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
	}
}

func handleDecode(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	request, err := decodeScanRequest(r)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_REQUEST, "failed to decode decode request", err)
		return
	}

	result, err := decoder.Decode(r.Context(), request.Scan, time.Now(), state.decryptor)
	if err != nil {
		var decryptErr *sadl.DecryptionError
		if errors.As(err, &decryptErr) {
			// The barcode may be fine; the decrypt service is not.
			respondWithErr(w, http.StatusBadGateway, decryptErr.Error(), "licence decryption failed", err)
			return
		}
		respondWithErr(w, http.StatusBadRequest, err.Error(), "failed to decode scan", err)
		return
	}

	slog.Info("Scan decoded", "class", result.Class)

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
	}
}

var supportedKinds = map[string]bool{
	"truck":   true,
	"trailer": true,
	"driver":  true,
}

func handleCreateSession(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	var request models.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_REQUEST, "failed to decode session request", err)
		return
	}

	if !supportedKinds[request.Kind] {
		respondWithErr(w, http.StatusBadRequest, ERR_UNSUPPORTED_KIND, ERR_UNSUPPORTED_KIND, fmt.Errorf("kind: %q", request.Kind))
		return
	}

	sessionID := uuid.NewString()

	validator := &induction.PrefixUniquenessValidator{
		Prefixes:    state.facilityPrefixes,
		Oracle:      state.assetRegistry,
		ExcludingID: request.ExcludingID,
	}

	session := induction.NewSession(induction.Config{
		Kind:      request.Kind,
		Validator: validator,
		Decode: func(ctx context.Context, raw string) (*models.ScanResult, error) {
			return decoder.Decode(ctx, raw, time.Now(), state.decryptor)
		},
		OnVerified: func(record models.InductionRecord) {
			emitVerifiedRecord(state, sessionID, record)
		},
	})

	state.sessions.add(&liveSession{
		id:      sessionID,
		kind:    request.Kind,
		session: session,
	})

	slog.Info("Induction session created", "session_id", sessionID, "kind", request.Kind)

	if err := writeJSON(w, http.StatusOK, models.CreateSessionResponse{SessionID: sessionID}); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
	}
}

// emitVerifiedRecord is the output contract: the persistence layer gets
// the record, the registry gets the identifier.
func emitVerifiedRecord(state *ServerState, sessionID string, record models.InductionRecord) {
	if err := state.recordStorage.StoreRecord(sessionID, record); err != nil {
		slog.Error(ERR_RECORD_STORE, "session_id", sessionID, "error", err)
	}
	if err := state.assetRegistry.Register(context.Background(), record.Identifier, sessionID); err != nil {
		slog.Error("failed to register verified identifier", "identifier", record.Identifier, "error", err)
	}
}

func handleSessionScan(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	live, ok := lookupSession(state, w, r)
	if !ok {
		return
	}

	request, err := decodeScanRequest(r)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_REQUEST, "failed to decode scan event", err)
		return
	}

	live.session.HandleScan(r.Context(), induction.ScanEvent{
		Value:     request.Scan,
		Timestamp: time.Now(),
	})

	respondWithSessionState(state, w, live)
}

func handleGetSession(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	live, ok := lookupSession(state, w, r)
	if !ok {
		return
	}

	respondWithSessionState(state, w, live)
}

func handleDeleteSession(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	live, ok := lookupSession(state, w, r)
	if !ok {
		return
	}

	live.session.Reset()
	state.sessions.remove(live.id)
	slog.Info("Induction session discarded", "session_id", live.id)
	w.WriteHeader(http.StatusNoContent)
}

func handleSessionAck(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	live, ok := lookupSession(state, w, r)
	if !ok {
		return
	}

	live.session.Acknowledge()
	respondWithSessionState(state, w, live)
}

func handleSessionReset(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	live, ok := lookupSession(state, w, r)
	if !ok {
		return
	}

	live.session.Reset()
	respondWithSessionState(state, w, live)
}

func lookupSession(state *ServerState, w http.ResponseWriter, r *http.Request) (*liveSession, bool) {
	id := mux.Vars(r)["id"]
	live, ok := state.sessions.get(id)
	if !ok {
		respondWithErr(w, http.StatusNotFound, ERR_UNKNOWN_SESSION, ERR_UNKNOWN_SESSION, fmt.Errorf("session_id: %q", id))
		return nil, false
	}
	return live, true
}

func respondWithSessionState(state *ServerState, w http.ResponseWriter, live *liveSession) {
	response := models.SessionStateResponse{
		SessionID: live.id,
		Phase:     string(live.session.Phase()),
		Alert:     live.session.AlertMessage(),
	}

	if record := live.session.Record(); record != nil {
		response.Record = record
		if state.receiptCreator != nil {
			receipt, err := state.receiptCreator.CreateReceipt(*record)
			if err != nil {
				respondWithErr(w, http.StatusInternalServerError, ERR_RECEIPT_CREATION, ERR_RECEIPT_CREATION, err)
				return
			}
			response.ReceiptJwt = receipt
		}
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
	}
}

func decodeScanRequest(r *http.Request) (models.ScanRequest, error) {
	var request models.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return models.ScanRequest{}, fmt.Errorf("failed to decode request body: %w", err)
	}
	if request.Scan == "" {
		return models.ScanRequest{}, fmt.Errorf("scan value is empty")
	}
	return request, nil
}

// helpers ------------

func respondWithErr(w http.ResponseWriter, code int, responseBody string, logMsg string, e error) {
	slog.Error(logMsg, "error", e, "status_code", code, "response_body", responseBody)
	w.WriteHeader(code)
	if _, err := w.Write([]byte(responseBody)); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
}

func closeRequestBody(r *http.Request) {
	if err := r.Body.Close(); err != nil {
		slog.Error("failed to close request body", "error", err)
	}
}

func requirePOST(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		slog.Debug("Non-POST request rejected", "method", r.Method, "path", r.URL.Path)
		respondWithErr(w, http.StatusMethodNotAllowed, "method not allowed", "invalid method", nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	slog.Debug("Writing JSON response", "status_code", status)
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal JSON payload", "error", err)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(payload)
	if err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
	return nil
}
