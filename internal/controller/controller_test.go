package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"notes-versioning-be/internal/dto"
	"notes-versioning-be/internal/entity"
	"notes-versioning-be/internal/pkg/serverutils"
	"notes-versioning-be/internal/pkg/token"
	"notes-versioning-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validToken = "valid-token"

var callerID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

type stubAuthService struct {
	loggedOut *token.Claims
	loginReq  *dto.LoginRequest
}

func (s *stubAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if req.Email == "taken@example.com" {
		return nil, service.ErrEmailAlreadyRegistered
	}
	return &dto.RegisterResponse{Id: uuid.New(), Email: req.Email, CreatedAt: time.Now()}, nil
}

func (s *stubAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	s.loginReq = req
	if req.Password != "correct" {
		return nil, service.ErrInvalidCredentials
	}
	return &dto.LoginResponse{AccessToken: validToken, TokenType: token.TypeBearer}, nil
}

func (s *stubAuthService) Authenticate(ctx context.Context, bearer string) (*entity.User, *token.Claims, error) {
	if bearer != validToken {
		return nil, nil, service.ErrUnauthenticated
	}
	claims := &token.Claims{RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1", Subject: "me@example.com"}}
	return &entity.User{Id: callerID, Email: "me@example.com"}, claims, nil
}

func (s *stubAuthService) Logout(ctx context.Context, claims *token.Claims) error {
	s.loggedOut = claims
	return nil
}

func (s *stubAuthService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserDTO, error) {
	return &dto.UserDTO{Id: userId, Email: "me@example.com"}, nil
}

type stubNoteService struct {
	noteId      uuid.UUID
	gotOwner    uuid.UUID
	gotUpdate   *dto.UpdateNoteRequest
	gotVersion  int
	err         error
	deleteCalls int
}

func (s *stubNoteService) note() *dto.NoteResponse {
	return &dto.NoteResponse{Id: s.noteId, OwnerId: callerID, Title: "First", Content: "Hello"}
}

func (s *stubNoteService) Create(ctx context.Context, ownerId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	s.gotOwner = ownerId
	return &dto.NoteResponse{Id: s.noteId, OwnerId: ownerId, Title: req.Title, Content: req.Content}, s.err
}

func (s *stubNoteService) List(ctx context.Context, ownerId uuid.UUID) ([]*dto.NoteResponse, error) {
	s.gotOwner = ownerId
	return []*dto.NoteResponse{s.note()}, s.err
}

func (s *stubNoteService) Show(ctx context.Context, ownerId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.note(), nil
}

func (s *stubNoteService) Update(ctx context.Context, ownerId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	s.gotUpdate = req
	return s.note(), s.err
}

func (s *stubNoteService) Delete(ctx context.Context, ownerId uuid.UUID, id uuid.UUID) error {
	s.deleteCalls++
	return s.err
}

func (s *stubNoteService) ListVersions(ctx context.Context, ownerId uuid.UUID, noteId uuid.UUID) ([]*dto.NoteVersionResponse, error) {
	return []*dto.NoteVersionResponse{{NoteId: noteId, Version: 1}, {NoteId: noteId, Version: 2}}, s.err
}

func (s *stubNoteService) GetVersion(ctx context.Context, ownerId uuid.UUID, noteId uuid.UUID, version int) (*dto.NoteVersionResponse, error) {
	s.gotVersion = version
	if s.err != nil {
		return nil, s.err
	}
	return &dto.NoteVersionResponse{NoteId: noteId, Version: version}, nil
}

func (s *stubNoteService) Restore(ctx context.Context, ownerId uuid.UUID, noteId uuid.UUID, version int) (*dto.NoteVersionResponse, error) {
	s.gotVersion = version
	if s.err != nil {
		return nil, s.err
	}
	return &dto.NoteVersionResponse{NoteId: noteId, Version: 3, Content: "Hello"}, nil
}

func newTestApp(auth *stubAuthService, notes *stubNoteService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(nil))

	requireAuth := serverutils.NewJwtMiddleware(auth)
	api := app.Group("/api/v1")
	NewAuthController(auth, requireAuth, nil).RegisterRoutes(api)
	NewNoteController(notes, requireAuth).RegisterRoutes(api)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string, authorized bool) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if authorized {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+validToken)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRegisterEndpoint(t *testing.T) {
	app := newTestApp(&stubAuthService{}, &stubNoteService{})

	resp := doRequest(t, app, http.MethodPost, "/api/v1/auth/register", `{"email":"new@example.com","password":"secret1"}`, false)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "new@example.com", decode[dto.RegisterResponse](t, resp).Email)

	resp = doRequest(t, app, http.MethodPost, "/api/v1/auth/register", `{"email":"taken@example.com","password":"secret1"}`, false)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]interface{}](t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Email already registered", body["message"])

	resp = doRequest(t, app, http.MethodPost, "/api/v1/auth/register", `{"email":"not-an-email","password":"secret1"}`, false)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLoginEndpointReadsForm(t *testing.T) {
	auth := &stubAuthService{}
	app := newTestApp(auth, &stubNoteService{})

	form := url.Values{"username": {"me@example.com"}, "password": {"correct"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[dto.LoginResponse](t, resp)
	assert.Equal(t, validToken, body.AccessToken)
	assert.Equal(t, "bearer", body.TokenType)
	require.NotNil(t, auth.loginReq)
	assert.Equal(t, "me@example.com", auth.loginReq.Username)

	form.Set("password", "wrong")
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get(fiber.HeaderWWWAuthenticate))
}

func TestLogoutAndMe(t *testing.T) {
	auth := &stubAuthService{}
	app := newTestApp(auth, &stubNoteService{})

	resp := doRequest(t, app, http.MethodGet, "/api/v1/auth/me", "", true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, callerID, decode[dto.UserDTO](t, resp).Id)

	resp = doRequest(t, app, http.MethodPost, "/api/v1/auth/logout", "", true)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.NotNil(t, auth.loggedOut)
	assert.Equal(t, "jti-1", auth.loggedOut.ID)
}

func TestNotesRequireBearer(t *testing.T) {
	app := newTestApp(&stubAuthService{}, &stubNoteService{noteId: uuid.New()})

	resp := doRequest(t, app, http.MethodGet, "/api/v1/notes", "", false)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get(fiber.HeaderWWWAuthenticate))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer forged")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateNoteEndpoint(t *testing.T) {
	notes := &stubNoteService{noteId: uuid.New()}
	app := newTestApp(&stubAuthService{}, notes)

	resp := doRequest(t, app, http.MethodPost, "/api/v1/notes", `{"title":"First","content":"Hello"}`, true)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decode[dto.NoteResponse](t, resp)
	assert.Equal(t, "First", body.Title)
	assert.Equal(t, callerID, notes.gotOwner)

	resp = doRequest(t, app, http.MethodPost, "/api/v1/notes", `{"content":"no title"}`, true)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateNoteEndpoint(t *testing.T) {
	notes := &stubNoteService{noteId: uuid.New()}
	app := newTestApp(&stubAuthService{}, notes)

	resp := doRequest(t, app, http.MethodPut, "/api/v1/notes/"+notes.noteId.String(), `{"content":"Hello world"}`, true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, notes.gotUpdate)
	assert.Equal(t, notes.noteId, notes.gotUpdate.Id)
	assert.Nil(t, notes.gotUpdate.Title)
	require.NotNil(t, notes.gotUpdate.Content)
	assert.Equal(t, "Hello world", *notes.gotUpdate.Content)

	resp = doRequest(t, app, http.MethodPut, "/api/v1/notes/not-a-uuid", `{"content":"x"}`, true)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestNoteNotFoundMapsTo404(t *testing.T) {
	notes := &stubNoteService{noteId: uuid.New(), err: service.ErrNoteNotFound}
	app := newTestApp(&stubAuthService{}, notes)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/notes/"+uuid.NewString(), "", true)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	body := decode[map[string]interface{}](t, resp)
	assert.Equal(t, "Note not found", body["message"])

	resp = doRequest(t, app, http.MethodDelete, "/api/v1/notes/"+uuid.NewString(), "", true)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteNoteEndpoint(t *testing.T) {
	notes := &stubNoteService{noteId: uuid.New()}
	app := newTestApp(&stubAuthService{}, notes)

	resp := doRequest(t, app, http.MethodDelete, "/api/v1/notes/"+notes.noteId.String(), "", true)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, notes.deleteCalls)
}

func TestVersionEndpoints(t *testing.T) {
	notes := &stubNoteService{noteId: uuid.New()}
	app := newTestApp(&stubAuthService{}, notes)
	base := "/api/v1/notes/" + notes.noteId.String() + "/versions"

	resp := doRequest(t, app, http.MethodGet, base, "", true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.NoteVersionResponse](t, resp), 2)

	resp = doRequest(t, app, http.MethodGet, base+"/2", "", true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, notes.gotVersion)

	resp = doRequest(t, app, http.MethodPost, base+"/1/restore", "", true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, notes.gotVersion)
	assert.Equal(t, 3, decode[dto.NoteVersionResponse](t, resp).Version)

	for _, bad := range []string{"0", "-1", "abc"} {
		resp = doRequest(t, app, http.MethodGet, base+"/"+bad, "", true)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, bad)
	}
}

func TestVersionErrorsMapping(t *testing.T) {
	notes := &stubNoteService{noteId: uuid.New(), err: service.ErrVersionNotFound}
	app := newTestApp(&stubAuthService{}, notes)

	resp := doRequest(t, app, http.MethodPost, "/api/v1/notes/"+notes.noteId.String()+"/versions/9/restore", "", true)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	notes.err = service.ErrTransientWrite
	resp = doRequest(t, app, http.MethodPost, "/api/v1/notes/"+notes.noteId.String()+"/versions/1/restore", "", true)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
