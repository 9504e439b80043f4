package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/jjgarcianorway/annad/pkg/evidence"
	"github.com/jjgarcianorway/annad/pkg/reliability"
	"github.com/jjgarcianorway/annad/pkg/teams"
	"github.com/jjgarcianorway/annad/pkg/ticket"
	"github.com/jjgarcianorway/annad/pkg/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	result *ticket.Result
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, ticketID, userRequest string) (*ticket.Result, error) {
	return f.result, f.err
}

func verifiedResult() *ticket.Result {
	tk := ticket.New("T-1", "is my disk full", "storage", "question", teams.TeamStorage,
		"disk_space", true, []string{"disk_usage"}, []evidence.Kind{evidence.KindDisk},
		ticket.RiskReadOnly, 3, 1)
	tk.Status = ticket.StatusVerified

	ev := evidence.NewBlock()
	ev.Append(evidence.Item{ProbeID: "disk_usage", Kind: evidence.KindDisk, Command: []string{"df", "-h"}, Success: true, ExitCode: 0, Stdout: "/ 40% full"})

	tr := transcript.New()
	tr.Push(transcript.FinalAnswer(5, "[SUMMARY]\ndisk is fine\n[DETAILS]\n/ is 40% full [E1]\n[COMMANDS]\nnone\n"))

	return &ticket.Result{
		Ticket:     tk,
		Transcript: tr,
		Evidence:   ev,
		Signals:    reliability.Signals{Grounded: true, NoInvention: true, ProbeCoverage: true, TranslatorConfident: true},
		Score:      100,
		Answer:     "[SUMMARY]\ndisk is fine\n[DETAILS]\n/ is 40% full [E1]\n[COMMANDS]\nnone\n",
	}
}

func startTestServer(t *testing.T, runner Runner) (*Server, string) {
	t.Helper()
	sockPath := filepath.Join(t.TempDir(), "annad.sock")
	srv := NewServer(NewHandler(runner, nil), sockPath, 0o750)

	go func() {
		_ = srv.ListenAndServe()
	}()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("unix", sockPath)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	return srv, sockPath
}

func unixClient(sockPath string) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", sockPath)
			},
		},
	}
}

func TestServer_QueryReturnsVerifiedAnswer(t *testing.T) {
	_, sockPath := startTestServer(t, &fakeRunner{result: verifiedResult()})
	client := unixClient(sockPath)

	body, _ := json.Marshal(Request{RequestID: "r-1", Query: "is my disk full"})
	resp, err := client.Post("http://unix/v1/query", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	assert.Equal(t, "r-1", out.RequestID)
	assert.Contains(t, out.Answer, "disk is fine")
	assert.Equal(t, 100, out.ReliabilityScore)
	assert.True(t, out.ReliabilitySignals.AnswerGrounded)
	require.Len(t, out.Evidence, 1)
	assert.Equal(t, "disk_usage", out.Evidence[0].ProbeID)
	assert.Equal(t, "df -h", out.Evidence[0].Command)
	assert.False(t, out.NeedsClarification)
}

func TestServer_QueryOmitsDebugEventsByDefault(t *testing.T) {
	result := verifiedResult()
	result.Transcript.Push(transcript.Note(1, "internal scratch note"))
	_, sockPath := startTestServer(t, &fakeRunner{result: result})
	client := unixClient(sockPath)

	body, _ := json.Marshal(Request{RequestID: "r-2", Query: "is my disk full"})
	resp, err := client.Post("http://unix/v1/query", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	for _, e := range out.Transcript {
		assert.NotEqual(t, "note", e["type"])
	}
}

func TestServer_QueryIncludesDebugEventsWhenRequested(t *testing.T) {
	result := verifiedResult()
	result.Transcript.Push(transcript.Note(1, "internal scratch note"))
	_, sockPath := startTestServer(t, &fakeRunner{result: result})
	client := unixClient(sockPath)

	body, _ := json.Marshal(Request{RequestID: "r-3", Query: "is my disk full", Options: RequestOptions{Debug: true}})
	resp, err := client.Post("http://unix/v1/query", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	found := false
	for _, e := range out.Transcript {
		if e["type"] == "note" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestServer_MalformedRequestReturnsBadRequest(t *testing.T) {
	_, sockPath := startTestServer(t, &fakeRunner{result: verifiedResult()})
	client := unixClient(sockPath)

	resp, err := client.Post("http://unix/v1/query", "application/json", bytes.NewReader([]byte(`{"query": ""}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Health(t *testing.T) {
	_, sockPath := startTestServer(t, &fakeRunner{result: verifiedResult()})
	client := unixClient(sockPath)

	resp, err := client.Get("http://unix/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
