package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-campaign/app"
	"github.com/mbolis/quick-campaign/config"
	"github.com/mbolis/quick-campaign/database"
	"github.com/mbolis/quick-campaign/httpx"
	"github.com/mbolis/quick-campaign/model"
)

const definition = `<campaign>
  <campaignUrn>urn:campaign:test:api</campaignUrn>
  <campaignName>API</campaignName>
  <surveys>
    <survey>
      <id>s1</id>
      <title>S1</title>
      <submitText>Done</submitText>
      <showSummary>false</showSummary>
      <anytime>true</anytime>
      <contentList>
        <prompt>
          <id>q1</id>
          <promptText>How many?</promptText>
          <skippable>false</skippable>
          <displayType>count</displayType>
          <displayLabel>q1</displayLabel>
          <promptType>number</promptType>
          <properties>
            <property><key>min</key><label>0</label></property>
            <property><key>max</key><label>10</label></property>
          </properties>
        </prompt>
      </contentList>
    </survey>
  </surveys>
</campaign>`

const campaignPath = "/api/campaigns/urn:campaign:test:api"

func upload(surveyKey string, value int) string {
	return `[{
  "survey_key": "` + surveyKey + `",
  "time": 1325412000000,
  "timezone": "UTC",
  "survey_id": "s1",
  "survey_launch_context": {"launch_time": 1325411990000, "active_triggers": []},
  "location_status": "unavailable",
  "responses": [{"prompt_id": "q1", "value": ` + strconv.Itoa(value) + `}]
}]`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		DBUrl:       filepath.Join(t.TempDir(), "test.sqlite"),
		TokenSecret: "test-secret",
		TokenTTL:    time.Hour,
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, database.SaveUser(ctx, db, "admin", "root", true))
	for _, username := range []string{"alice", "bob", "carol"} {
		require.NoError(t, database.SaveUser(ctx, db, username, username+"-pw", false))
	}

	return &testServer{t, Wire(app.App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,
	})}
}

func (s *testServer) do(method, target, token string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) tokens(username, password string) (access, refresh string) {
	s.t.Helper()
	req := httptest.NewRequest("POST", "/api/login", nil)
	req.SetBasicAuth(username, password)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(s.t, body.AccessToken)
	return body.AccessToken, body.RefreshToken
}

func (s *testServer) login(username string) string {
	password := username + "-pw"
	if username == "admin" {
		password = "root"
	}
	access, _ := s.tokens(username, password)
	return access
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	access, refresh := s.tokens("alice", "alice-pw")
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	req := httptest.NewRequest("POST", "/api/login", nil)
	req.SetBasicAuth("alice", "wrong")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do("POST", "/api/login", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest("POST", "/api/refresh", nil)
	req.Header.Set("authorization", "Refresh "+refresh)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode(t, rec)["access_token"])

	rec = s.do("POST", "/api/refresh", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCampaignsRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do("GET", "/api/campaigns", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do("GET", "/api/campaigns", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateCampaign(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice")

	rec := s.do("POST", "/api/campaigns/validate", alice, definition)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{
		"campaign_id": "urn:campaign:test:api",
		"name":        "API",
	}, decode(t, rec))

	rec = s.do("POST", "/api/campaigns/validate", alice, "<campaign>")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(model.CodeMalformedDocument), decode(t, rec)["code"])

	// validation alone stores nothing
	rec = s.do("GET", "/api/campaigns", alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["campaigns"])
}

func TestCampaignLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin")
	alice := s.login("alice")
	bob := s.login("bob")
	carol := s.login("carol")

	rec := s.do("POST", "/api/campaigns?description=Counting&privacy_state=shared", alice, definition)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "urn:campaign:test:api", decode(t, rec)["campaign_id"])

	rec = s.do("POST", "/api/campaigns", alice, definition)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do("POST", "/api/campaigns?running_state=paused", alice, definition)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(model.CodeUnknownEnum), decode(t, rec)["code"])

	t.Run("list", func(t *testing.T) {
		rec := s.do("GET", "/api/campaigns", alice, "")
		require.Equal(t, http.StatusOK, rec.Code)
		campaigns := decode(t, rec)["campaigns"].([]any)
		require.Len(t, campaigns, 1)
		first := campaigns[0].(map[string]any)
		assert.Equal(t, "urn:campaign:test:api", first["campaign_id"])
		assert.Equal(t, "Counting", first["description"])
		assert.Equal(t, "SHARED", first["privacy_state"])
		assert.Equal(t, "RUNNING", first["running_state"])

		rec = s.do("GET", "/api/campaigns", carol, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode(t, rec)["campaigns"])

		rec = s.do("GET", "/api/campaigns", admin, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["campaigns"], 1)
	})

	t.Run("get", func(t *testing.T) {
		rec := s.do("GET", campaignPath, alice, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode(t, rec)
		assert.Equal(t, "API", body["name"])
		assert.NotContains(t, body, "xml")
		assert.Contains(t, body, "surveys")

		rec = s.do("GET", campaignPath+"?xml=true", alice, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, definition, decode(t, rec)["xml"])

		rec = s.do("GET", campaignPath, carol, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.do("GET", "/api/campaigns/urn:campaign:test:missing", alice, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("roles", func(t *testing.T) {
		rec := s.do("PUT", campaignPath+"/roles", bob, `{"roles": [{"username": "bob", "role": "supervisor"}]}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.do("PUT", campaignPath+"/roles", alice, `{"roles": [{"username": "zed", "role": "participant"}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do("PUT", campaignPath+"/roles", alice, `{"roles": [{"username": "bob", "role": "boss"}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do("PUT", campaignPath+"/roles", alice, `{"roles": [{"username": "bob", "role": "participant"}]}`)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = s.do("GET", campaignPath, bob, "")
		require.Equal(t, http.StatusOK, rec.Code)
		roles := decode(t, rec)["user_role_campaign"].(map[string]any)
		assert.Equal(t, []any{"bob"}, roles["participant"])
		assert.Equal(t, []any{"alice"}, roles["supervisor"])
	})

	t.Run("responses", func(t *testing.T) {
		rec := s.do("POST", campaignPath+"/responses", bob, upload("6f1c3a52-9f0e-4b8e-a2a4-6d1f7d8e0c11", 3))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do("POST", campaignPath+"/responses?client=android", alice, upload("6f1c3a52-9f0e-4b8e-a2a4-6d1f7d8e0c11", 3))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.do("POST", campaignPath+"/responses?client=android", bob, upload("6f1c3a52-9f0e-4b8e-a2a4-6d1f7d8e0c11", 30))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, string(model.CodeResponseType), decode(t, rec)["code"])

		rec = s.do("POST", campaignPath+"/responses?client=android", bob, upload("6f1c3a52-9f0e-4b8e-a2a4-6d1f7d8e0c11", 3))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, []any{"6f1c3a52-9f0e-4b8e-a2a4-6d1f7d8e0c11"}, decode(t, rec)["survey_keys"])

		rec = s.do("POST", campaignPath+"/responses?client=android", bob, upload("6f1c3a52-9f0e-4b8e-a2a4-6d1f7d8e0c11", 4))
		assert.Equal(t, http.StatusConflict, rec.Code)

		for _, token := range []string{alice, bob, admin} {
			rec = s.do("GET", campaignPath+"/responses", token, "")
			require.Equal(t, http.StatusOK, rec.Code)
			responses := decode(t, rec)["responses"].([]any)
			require.Len(t, responses, 1)
			first := responses[0].(map[string]any)
			assert.Equal(t, "bob", first["username"])
			assert.Equal(t, "android", first["client"])
		}

		rec = s.do("GET", campaignPath+"/responses", carol, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("state", func(t *testing.T) {
		rec := s.do("PUT", campaignPath+"/state", bob, `{"running_state": "stopped"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.do("PUT", campaignPath+"/state", alice, `{"running_state": "stopped"}`)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = s.do("POST", campaignPath+"/responses?client=android", bob, upload("0b5e7d0c-3c1e-4f55-9d6a-1f2e3d4c5b6a", 2))
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = s.do("GET", campaignPath, alice, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "STOPPED", decode(t, rec)["running_state"])
	})

	t.Run("delete", func(t *testing.T) {
		rec := s.do("DELETE", campaignPath, alice, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.do("DELETE", campaignPath, admin, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.do("GET", campaignPath, admin, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = s.do("DELETE", campaignPath, admin, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUploadGuard(t *testing.T) {
	guard := uploadGuard()
	busy := make(chan bool)

	guard <- uploadCheck{true, "c\x00bob", busy}
	assert.False(t, <-busy)
	guard <- uploadCheck{true, "c\x00bob", busy}
	assert.True(t, <-busy)
	guard <- uploadCheck{true, "c\x00alice", busy}
	assert.False(t, <-busy)

	guard <- uploadCheck{false, "c\x00bob", nil}
	guard <- uploadCheck{true, "c\x00bob", busy}
	assert.False(t, <-busy)
}
