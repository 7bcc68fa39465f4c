package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/callsys/callboard/internal/broadcast"
	"github.com/callsys/callboard/internal/repository/board"
	"github.com/callsys/callboard/internal/service/auth"
	boardsvc "github.com/callsys/callboard/internal/service/board"
	"github.com/callsys/callboard/pkg/validator"
	"github.com/callsys/callboard/pkg/wsrouter"
)

type iBoardService interface {
	Next(ctx context.Context, actor string) (int, error)
	Previous(ctx context.Context, actor string) (int, error)
	SetExact(ctx context.Context, params *boardsvc.SetExactParams) (int, error)
	AddPassed(ctx context.Context, params *boardsvc.PassedParams) ([]int, error)
	RemovePassed(ctx context.Context, params *boardsvc.PassedParams) ([]int, error)
	ClearPassed(ctx context.Context, actor string) error
	AddFeatured(ctx context.Context, params *boardsvc.FeaturedParams) ([]board.FeaturedContent, error)
	RemoveFeatured(ctx context.Context, params *boardsvc.FeaturedParams) ([]board.FeaturedContent, error)
	RemoveFeaturedByIndex(ctx context.Context, params *boardsvc.RemoveFeaturedByIndexParams) ([]board.FeaturedContent, error)
	ClearFeatured(ctx context.Context, actor string) error
	SetSoundEnabled(ctx context.Context, params *boardsvc.SetSoundEnabledParams) error
	SetPublic(ctx context.Context, params *boardsvc.SetPublicParams) error
	ResetAll(ctx context.Context, actor string) error
	Snapshot(ctx context.Context) (board.Snapshot, error)
	AdminLogs(ctx context.Context) ([]string, error)
	ClearAdminLogs(ctx context.Context, actor string) error
	LoadLayout(ctx context.Context) (board.Layout, error)
	SaveLayout(ctx context.Context, params *boardsvc.SaveLayoutParams) error
}

type iAuthService interface {
	auth.Authenticator
	IssueToken(identity auth.Identity) (string, time.Time, error)
	ParseToken(token string) (auth.Identity, error)
	ListUsers(ctx context.Context) ([]auth.Identity, error)
	CreateUser(ctx context.Context, params *auth.CreateUserParams) (auth.Identity, error)
	DeleteUser(ctx context.Context, params *auth.DeleteUserParams) error
	UpdatePassword(ctx context.Context, params *auth.UpdatePasswordParams) error
	UpdateRole(ctx context.Context, params *auth.UpdateRoleParams) error
}

type iBroadcaster interface {
	Register(conn *websocket.Conn, isAdmin bool) (*broadcast.Client, error)
	Unregister(conn *websocket.Conn)
}

type iMetrics interface {
	Handler() http.Handler
	SnapshotFailed()
}

type Config struct {
	// SecureCookies marks the session cookie Secure. Enable behind HTTPS.
	SecureCookies bool
}

type controller struct {
	boardService  iBoardService
	authService   iAuthService
	broadcaster   iBroadcaster
	metrics       iMetrics
	upgrader      websocket.Upgrader
	validate      *validator.Validator
	wsmux         *wsrouter.WSRouter
	logger        *slog.Logger
	secureCookies bool
}

func NewController(
	boardService iBoardService,
	authService iAuthService,
	broadcaster iBroadcaster,
	metrics iMetrics,
	logger *slog.Logger,
	cfg *Config,
) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		boardService: boardService,
		authService:  authService,
		broadcaster:  broadcaster,
		metrics:      metrics,
		validate:     validator.NewValidator(),
		logger:       logger,
	}
	if cfg != nil {
		c.secureCookies = cfg.SecureCookies
	}

	c.wsmux = c.getWSRouter()

	return c
}
