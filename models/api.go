package models

// ScanRequest carries one raw scanner capture.
type ScanRequest struct {
	Scan string `json:"scan"`
}

type ClassifyResponse struct {
	Class string `json:"class"`
	Error string `json:"error,omitempty"`
}

type CreateSessionRequest struct {
	// Kind of asset being inducted: "truck", "trailer" or "driver".
	Kind string `json:"kind"`
	// ExcludingID optionally exempts an existing asset from the
	// uniqueness check (used when re-inducting).
	ExcludingID string `json:"excluding_id,omitempty"`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// SessionStateResponse is the snapshot returned after every session event.
type SessionStateResponse struct {
	SessionID  string           `json:"session_id"`
	Phase      string           `json:"phase"`
	Alert      string           `json:"alert,omitempty"`
	Record     *InductionRecord `json:"record,omitempty"`
	ReceiptJwt string           `json:"receipt_jwt,omitempty"`
}
