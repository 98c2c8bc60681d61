package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"go-scan-induction/document/sadl"
	"go-scan-induction/models"

	"github.com/stretchr/testify/require"
)

var testConfig = ServerConfig{
	Host:           "localhost",
	Port:           8081,
	UseTls:         false,
	TlsCertPath:    "",
	TlsPrivKeyPath: "",
}

const testBaseURL = "http://localhost:8081"

func startTestServer(t *testing.T, state *ServerState) *Server {
	t.Helper()

	if state.recordStorage == nil {
		state.recordStorage = NewInMemoryRecordStorage()
	}
	if state.assetRegistry == nil {
		state.assetRegistry = NewInMemoryAssetRegistry()
	}
	if state.sessions == nil {
		state.sessions = newSessionRegistry()
	}

	srv, err := NewServer(state, testConfig)
	require.NoError(t, err)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("server error: %v", err)
		}
	}()

	waitUntilHealthy(t, testBaseURL+"/api/health")
	t.Cleanup(func() {
		if err := srv.Stop(); err != nil {
			t.Logf("error shutting down server: %v", err)
		}
	})
	return srv
}

func waitUntilHealthy(t *testing.T, url string) {
	t.Helper()
	const maxAttempts = 50
	for i := 0; i < maxAttempts; i++ {
		if resp, err := http.Get(url); err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server did not start in time")
}

func postJSON[T any](t *testing.T, url string, payload any) (*http.Response, []byte, *T) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(b)
	}
	resp, err := http.Post(url, "application/json", body)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded *T
	var v T
	_ = json.Unmarshal(respBody, &v)
	decoded = &v

	return resp, respBody, decoded
}

func mustStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	require.Equalf(t, want, resp.StatusCode, "body: %s", body)
}

// createSession bootstrap
func createSession(t *testing.T, kind string) string {
	t.Helper()
	resp, body, created := postJSON[models.CreateSessionResponse](t, testBaseURL+"/api/sessions", models.CreateSessionRequest{Kind: kind})
	mustStatus(t, resp, http.StatusOK, body)
	require.NotEmpty(t, created.SessionID)
	return created.SessionID
}

func postScan(t *testing.T, sessionID, scan string) (*http.Response, []byte, *models.SessionStateResponse) {
	t.Helper()
	return postJSON[models.SessionStateResponse](t, testBaseURL+"/api/sessions/"+sessionID+"/scan", models.ScanRequest{Scan: scan})
}

// test doubles

type fakeReceiptCreator struct{ jwt string }

func (f fakeReceiptCreator) CreateReceipt(_ models.InductionRecord) (string, error) {
	return f.jwt, nil
}

type fakeLicenceDecryptor struct {
	payload *sadl.DecodedLicencePayload
	err     error
}

func (f fakeLicenceDecryptor) Decrypt(_ context.Context, _ string) (*sadl.DecodedLicencePayload, error) {
	return f.payload, f.err
}

const testDiskScan = "MVL1CC%0001%4023%1%4000123%DSK001%LIC001%NT123456%SedanSedan%TOYOTA%HILUX%WhiteWit%VIN001%ENG001%2030-01-15"
