package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/wfunc/drawparty/broadcast"
	"github.com/wfunc/drawparty/config"
	"github.com/wfunc/drawparty/game"
	"github.com/wfunc/drawparty/logger"
	"github.com/wfunc/drawparty/monitor"
	"github.com/wfunc/drawparty/room"
	drawparty_rpc "github.com/wfunc/drawparty/rpc"
	"github.com/wfunc/drawparty/session"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
)

const heartbeatInterval = 30 * time.Second

type GameServer struct {
	cfg            config.ServerConfig
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	coordinator    *game.Coordinator
	hub            *broadcast.Hub
	notifier       *broadcast.Notifier
	sessionManager *session.Manager
	monitor        *monitor.Monitor
	now            func() time.Time
}

func NewGameServer(cfg config.ServerConfig, catalog game.Catalog, mon *monitor.Monitor) *GameServer {
	if mon == nil {
		mon = monitor.NewMonitor("drawparty")
	}
	hub := broadcast.NewHub(mon)
	s := &GameServer{
		cfg:            cfg,
		roomManager:    room.NewRoomManager(),
		coordinator:    game.NewCoordinator(catalog),
		hub:            hub,
		notifier:       broadcast.NewNotifier(hub),
		sessionManager: session.NewManager(),
		monitor:        mon,
		now:            time.Now,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

// checkOrigin 允许同源请求和 allowed_origins 中列出的来源，"*" 表示全部允许
func (s *GameServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(s.cfg.AllowedOrigins, "*") {
		return true
	}
	if slices.Contains(s.cfg.AllowedOrigins, origin) {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

func (s *GameServer) Rooms() *room.Manager {
	return s.roomManager
}

// Start runs the HTTP, metrics and RPC servers until ctx is cancelled or
// one of them fails.
func (s *GameServer) Start(ctx context.Context) error {
	rpcServer, err := drawparty_rpc.NewServer(s.cfg.RPCAddress)
	if err != nil {
		return err
	}
	if err := rpcServer.RegisterName("Admin", drawparty_rpc.NewAdminService(s.roomManager, s.roomDeleted)); err != nil {
		rpcServer.Stop()
		return err
	}

	httpServer := &http.Server{
		Addr:              s.cfg.HTTPAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Infof("Game server listening on %s", s.cfg.HTTPAddress)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		rpcServer.Start()
		return nil
	})
	if s.cfg.MetricsAddress != "" {
		g.Go(func() error {
			return s.monitor.Serve(ctx, s.cfg.MetricsAddress)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		rpcServer.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		s.Shutdown()
		return err
	})
	return g.Wait()
}

// Shutdown closes every subscription and room topic.
func (s *GameServer) Shutdown() {
	s.sessionManager.CloseAll()
	s.hub.Close()
}

// roomDeleted 在管理员删除房间后清理该房间的订阅
func (s *GameServer) roomDeleted(roomID string) {
	closed := s.sessionManager.CloseRoom(roomID)
	s.hub.CloseTopic(roomID)
	s.monitor.SetActiveRooms(s.roomManager.Count())
	logger.Log.Infof("房间 %s 已删除，关闭 %d 个订阅", roomID, closed)
}
