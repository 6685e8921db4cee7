package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/chernandez90/InsurancePortal/internal/config"
	"github.com/chernandez90/InsurancePortal/internal/domain"
	"github.com/chernandez90/InsurancePortal/internal/hub"
	"github.com/chernandez90/InsurancePortal/internal/idgen"
	"github.com/chernandez90/InsurancePortal/internal/repository"
	"github.com/chernandez90/InsurancePortal/internal/service"
	"github.com/chernandez90/InsurancePortal/pkg/database"
	"github.com/chernandez90/InsurancePortal/pkg/jwt"
	"github.com/chernandez90/InsurancePortal/pkg/log"
	"github.com/chernandez90/InsurancePortal/pkg/middleware"
	"github.com/chernandez90/InsurancePortal/pkg/ratelimit"
	"github.com/chernandez90/InsurancePortal/pkg/response"
	"github.com/chernandez90/InsurancePortal/pkg/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testWSConfig = config.WebSocketConfig{
	PingInterval:   5 * time.Second,
	PongWait:       10 * time.Second,
	WriteWait:      time.Second,
	MaxMessageSize: 4096,
	SendBuffer:     16,
	HubQueue:       64,
}

type envOptions struct {
	submitLimiter *ratelimit.Limiter
	maxUpload     int64
}

type testEnv struct {
	engine   *gin.Engine
	realtime *mux.Router
	hub      *hub.Hub
	tokens   *jwt.Manager
	claims   repository.ClaimRepository
	auth     *middleware.AuthMiddleware
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.New(&database.Config{
		Driver:   "sqlite",
		FilePath: fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	tokens, err := jwt.NewManager(jwt.Config{
		Secret:          "handler-test-secret",
		AccessDuration:  time.Minute,
		RefreshDuration: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}

	ids, err := idgen.New(idgen.Config{Scheme: idgen.SchemeSnowflake})
	if err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), BaseURL: "http://files.test"})
	if err != nil {
		t.Fatal(err)
	}

	h := hub.New(testWSConfig)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	claimRepo := repository.NewGormClaimRepository(db, ids)
	userRepo := repository.NewGormUserRepository(db)

	commands := service.NewClaimCommandHandler(claimRepo)
	queries := service.NewClaimQueryHandler(claimRepo)
	submitter := service.NewSubmissionService(commands, h, nil)
	documents := service.NewDocumentService(claimRepo, store, h, nil, time.Minute)
	authService := service.NewAuthService(userRepo, tokens, bcrypt.MinCost)

	authMiddleware := middleware.NewAuthMiddleware(tokens)

	engine := gin.New()
	engine.Use(log.GinMiddleware(log.L()))
	NewClaimHandler(submitter, queries, authMiddleware, opts.submitLimiter).RegisterRoutes(engine)
	NewDocumentHandler(documents, authMiddleware, opts.maxUpload).RegisterRoutes(engine)
	NewAuthHandler(authService, authMiddleware).RegisterRoutes(engine)

	realtime := mux.NewRouter()
	realtime.Use(log.HTTPMiddleware(log.L()))
	NewWSHandler(h, authMiddleware, testWSConfig, []string{"http://localhost:4200"}).RegisterRoutes(realtime, "/claimHub")

	return &testEnv{
		engine:   engine,
		realtime: realtime,
		hub:      h,
		tokens:   tokens,
		claims:   claimRepo,
		auth:     authMiddleware,
	}
}

// token issues an access token for userID.
func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	pair, err := e.tokens.GenerateTokenPair(userID, userID+"@example.com", userID, []string{domain.RoleUser})
	if err != nil {
		t.Fatal(err)
	}
	return pair.AccessToken
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, data any) envelope {
	t.Helper()
	if w.Code != wantStatus {
		t.Fatalf("expected status %d, got %d: %s", wantStatus, w.Code, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v: %s", err, w.Body.String())
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantCode string) *response.ErrorInfo {
	t.Helper()
	env := decode(t, w, wantStatus, nil)
	if env.Success || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", w.Body.String())
	}
	if env.Error.Code != wantCode {
		t.Errorf("expected code %s, got %s", wantCode, env.Error.Code)
	}
	return env.Error
}

func (e *testEnv) createClaim(t *testing.T, policy string) *domain.Claim {
	t.Helper()
	claim := &domain.Claim{PolicyReference: policy, Description: "d", FilingDate: time.Now().UTC(), UserID: "user-1"}
	if err := e.claims.Create(context.Background(), claim); err != nil {
		t.Fatal(err)
	}
	return claim
}
