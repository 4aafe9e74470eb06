package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"
	"telegram-dance-technique/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "test-admin-key"

type testEnv struct {
	router *chi.Mux
	token  string
	users  *memUserRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()

	programs := newMemProgramRepo()
	dances := newMemDanceRepo(programs)
	authors := newMemAuthorRepo()
	figures := newMemFigureRepo(dances, authors)
	users := newMemUserRepo()
	tm := noopTxManager{}

	catalogUC := usecase.NewCatalogUseCase(programs, dances, figures, authors, &logger)
	adminUC := usecase.NewAdminUseCase(programs, dances, figures, authors, tm, &logger)
	userUC := usecase.NewUserUseCase(users, tm, &logger)

	auth := NewAuthManager("jwt-test-secret", false, time.Hour)
	srv := NewServer(catalogUC, adminUC, userUC, auth, testAdminKey, &logger)
	router := srv.Router()

	// Log in once; the token authenticates the rest of the test.
	body := fmt.Sprintf(`{"secret":%q}`, testAdminKey)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&loginResp))
	require.NotEmpty(t, loginResp.Token)

	return &testEnv{router: router, token: loginResp.Token, users: users}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+e.token)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestAuth_LoginRejectsWrongSecret(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"secret":"nope"}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuth_ProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/programs", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/programs", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPrograms_CreateAndList(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/programs", `{"name":"Bronze","position":0}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Program
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "Bronze", created.Name)
	assert.NotEmpty(t, created.ID)

	rec = env.do(t, http.MethodGet, "/api/v1/programs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []*model.Program `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, created.ID, list.Data[0].ID)
}

func TestPrograms_CreateValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/programs", `{"name":"","position":0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/programs", `not-json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDances_UnknownProgramIs404(t *testing.T) {
	env := newTestEnv(t)

	body := `{"program_id":"3b241101-e2bb-4255-8caf-4136c566a962","name":"Cha Cha","position":0}`
	rec := env.do(t, http.MethodPost, "/api/v1/dances", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVersions_FullCatalogFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/programs", `{"name":"Bronze","position":0}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var program model.Program
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&program))

	rec = env.do(t, http.MethodPost, "/api/v1/dances",
		fmt.Sprintf(`{"program_id":%q,"name":"Cha Cha","position":0}`, program.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var dance model.Dance
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dance))

	rec = env.do(t, http.MethodPost, "/api/v1/figures",
		fmt.Sprintf(`{"dance_id":%q,"name":"Basic Movement","position":0}`, dance.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var figure model.Figure
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&figure))

	rec = env.do(t, http.MethodPost, "/api/v1/authors", `{"name":"Walter Laird","source":"Technique of Latin Dancing"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var author model.Author
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&author))

	versionBody := fmt.Sprintf(
		`{"author_id":%q,"blocks":[{"kind":"steps_leader","text":"1. LF forward","position":0},{"kind":"notes","text":"Keep latin hip action","position":1}]}`,
		author.ID)
	rec = env.do(t, http.MethodPost, "/api/v1/figures/"+figure.ID+"/versions", versionBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/v1/dances/"+dance.ID+"/figures", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var figures struct {
		Data []*model.Figure `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&figures))
	assert.Len(t, figures.Data, 1)
}

func TestVersions_BadBlockKindIs422(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/programs", `{"name":"Bronze"}`)
	var program model.Program
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&program))
	rec = env.do(t, http.MethodPost, "/api/v1/dances", fmt.Sprintf(`{"program_id":%q,"name":"Cha Cha"}`, program.ID))
	var dance model.Dance
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dance))
	rec = env.do(t, http.MethodPost, "/api/v1/figures", fmt.Sprintf(`{"dance_id":%q,"name":"Fan"}`, dance.ID))
	var figure model.Figure
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&figure))
	rec = env.do(t, http.MethodPost, "/api/v1/authors", `{"name":"Walter Laird"}`)
	var author model.Author
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&author))

	body := fmt.Sprintf(`{"author_id":%q,"blocks":[{"kind":"freestyle","text":"x","position":0}]}`, author.ID)
	rec = env.do(t, http.MethodPost, "/api/v1/figures/"+figure.ID+"/versions", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUsers_SetSubscription(t *testing.T) {
	env := newTestEnv(t)

	u, err := model.NewUser(777, "dancer")
	require.NoError(t, err)
	require.NoError(t, env.users.Save(context.Background(), repository.NoTX, u))

	rec := env.do(t, http.MethodPut, "/api/v1/users/777/subscription", `{"subscribed":true}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	stored, err := env.users.FindByTelegramID(context.Background(), repository.NoTX, 777)
	require.NoError(t, err)
	assert.True(t, stored.IsSubscribed)

	rec = env.do(t, http.MethodPut, "/api/v1/users/999/subscription", `{"subscribed":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/users/abc/subscription", `{"subscribed":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)

	u, _ := model.NewUser(1, "a")
	_ = env.users.Save(context.Background(), repository.NoTX, u)

	rec := env.do(t, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 1, stats["total_users"])
	assert.Equal(t, 0, stats["total_programs"])
}
