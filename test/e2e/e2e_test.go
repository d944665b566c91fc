package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-assistant/internal/api"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/conversation"
	"loan-assistant/internal/extract"
	"loan-assistant/internal/models"
	"loan-assistant/internal/profile"
	"loan-assistant/internal/render"
	"loan-assistant/internal/session"
	"loan-assistant/internal/underwriting"
)

type chatResponse struct {
	SessionID string       `json:"sessionId"`
	Reply     string       `json:"reply"`
	Stage     models.Stage `json:"stage"`
	Options   []string     `json:"options"`
}

// startAssistant boots the full HTTP stack with an in-memory session store
// and a stub document renderer behind a real HTTP server.
func startAssistant(t *testing.T) (*httptest.Server, *httptest.Server) {
	t.Helper()
	log := logger.NewTestLogger(t)

	rendererBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"documentPath": "/letters/e2e-sanction.pdf",
		})
	}))

	profiles, err := profile.NewSeedStore(log)
	require.NoError(t, err)

	rng := underwriting.NewLockedRand(42)
	machine := conversation.NewMachine(
		extract.New(),
		underwriting.New(rng, log),
		profiles,
		profile.NewSynthesizer(rng, log),
		conversation.Options{
			Renderer: render.NewClient(rendererBackend.URL, 2*time.Second, log),
		},
		log,
	)

	server := api.NewServer(machine, session.NewManager(session.NewMemoryStore(), log), nil, log)
	return httptest.NewServer(server.Handler()), rendererBackend
}

func chat(t *testing.T, baseURL, sessionID, message string) chatResponse {
	t.Helper()
	payload, err := json.Marshal(map[string]string{
		"sessionId": sessionID,
		"message":   message,
	})
	require.NoError(t, err)

	resp, err := http.Post(baseURL+"/v1/chat", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestFullApprovalConversationOverHTTP(t *testing.T) {
	assistant, renderer := startAssistant(t)
	defer assistant.Close()
	defer renderer.Close()

	first := chat(t, assistant.URL, "", "hello")
	require.NotEmpty(t, first.SessionID)
	require.Equal(t, models.StageIdentification, first.Stage)
	id := first.SessionID

	resp := chat(t, assistant.URL, id, "my name is Rahul")
	require.Equal(t, models.StageSalesPitch, resp.Stage)
	assert.Contains(t, resp.Reply, "Rahul")
	assert.Contains(t, resp.Reply, "3,00,000")

	resp = chat(t, assistant.URL, id, "yes, interested")
	require.Equal(t, models.StageLoanTypeSelect, resp.Stage)

	resp = chat(t, assistant.URL, id, "for a wedding")
	require.Equal(t, models.StageLoanRequirement, resp.Stage)

	resp = chat(t, assistant.URL, id, "need 2.5 lakh")
	require.Equal(t, models.StageTermsConfirm, resp.Stage)
	assert.Contains(t, resp.Reply, "2,50,000")

	resp = chat(t, assistant.URL, id, "yes, proceed")
	require.Equal(t, models.StageSanction, resp.Stage)
	assert.Contains(t, resp.Reply, "Congratulations")

	resp = chat(t, assistant.URL, id, "yes, generate it")
	require.Equal(t, models.StageCompleted, resp.Stage)
	assert.Contains(t, resp.Reply, "/letters/e2e-sanction.pdf")
}

func TestNewApplicantConversationOverHTTP(t *testing.T) {
	assistant, renderer := startAssistant(t)
	defer assistant.Close()
	defer renderer.Close()

	id := chat(t, assistant.URL, "", "hi there").SessionID

	resp := chat(t, assistant.URL, id, "my name is Zoya")
	require.Equal(t, models.StageNewCustomerPitch, resp.Stage)

	resp = chat(t, assistant.URL, id, "yes, check my eligibility")
	require.Equal(t, models.StageNewCustomerInfo, resp.Stage)

	resp = chat(t, assistant.URL, id, "i earn 80000 per month")
	require.Equal(t, models.StageNewCustomerInfo, resp.Stage)
	assert.Contains(t, resp.Reply, "city")

	resp = chat(t, assistant.URL, id, "Pune")
	require.Equal(t, models.StageNewCustomerInfo, resp.Stage)

	resp = chat(t, assistant.URL, id, "i am 29")
	require.Equal(t, models.StageLoanTypeSelect, resp.Stage)
	assert.Contains(t, resp.Reply, "Zoya")
}

func TestResetOverHTTP(t *testing.T) {
	assistant, renderer := startAssistant(t)
	defer assistant.Close()
	defer renderer.Close()

	id := chat(t, assistant.URL, "", "hello").SessionID
	resp := chat(t, assistant.URL, id, "my name is Priya")
	require.Equal(t, models.StageSalesPitch, resp.Stage)

	payload, _ := json.Marshal(map[string]string{"sessionId": id})
	reset, err := http.Post(assistant.URL+"/v1/reset", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	reset.Body.Close()
	require.Equal(t, http.StatusOK, reset.StatusCode)

	resp = chat(t, assistant.URL, id, "hello again")
	assert.Equal(t, models.StageIdentification, resp.Stage)
}
