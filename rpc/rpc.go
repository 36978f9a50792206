package rpc

import (
	"errors"
	"net"
	"net/rpc"

	"github.com/wfunc/drawparty/logger"
	"github.com/wfunc/drawparty/room"
	"github.com/wfunc/drawparty/state"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
	rpc      *rpc.Server
}

// NewServer creates a new RPC server listening on addr.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  listener.Addr().String(),
		rpc:      rpc.NewServer(),
	}, nil
}

// RegisterName exposes rcvr's methods under name.
func (s *Server) RegisterName(name string, rcvr any) error {
	return s.rpc.RegisterName(name, rcvr)
}

func (s *Server) Addr() string {
	return s.address
}

// Start begins accepting RPC connections and returns when the listener is closed.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// RoomDirectory is the slice of the room registry the admin service needs.
type RoomDirectory interface {
	Rooms() []*room.Room
	DeleteRoom(code string) bool
}

// AdminService 运维接口：列出房间、删除房间
type AdminService struct {
	rooms     RoomDirectory
	onDeleted func(roomID string)
}

// NewAdminService creates the service. onDeleted runs after a room has
// been removed from the registry and may be nil.
func NewAdminService(rooms RoomDirectory, onDeleted func(roomID string)) *AdminService {
	return &AdminService{rooms: rooms, onDeleted: onDeleted}
}

// ListRoomsArgs.Limit caps the reply; zero returns every room.
type ListRoomsArgs struct {
	Limit int
}

type RoomInfo struct {
	ID      string
	Players int
	HostID  string
	Status  state.Status
}

type ListRoomsReply struct {
	Rooms []RoomInfo
}

// ListRooms returns one entry per live room ordered by code.
func (a *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	rooms := a.rooms.Rooms()
	if args.Limit > 0 && len(rooms) > args.Limit {
		rooms = rooms[:args.Limit]
	}
	reply.Rooms = make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		snap := r.Snapshot()
		info := RoomInfo{ID: snap.ID, Players: len(snap.Players), HostID: snap.HostID}
		if snap.GameState != nil {
			info.Status = snap.GameState.Status
		}
		reply.Rooms = append(reply.Rooms, info)
	}
	return nil
}

type DeleteRoomArgs struct {
	RoomID string
}

type DeleteRoomReply struct {
	Deleted bool
}

func (a *AdminService) DeleteRoom(args *DeleteRoomArgs, reply *DeleteRoomReply) error {
	reply.Deleted = a.rooms.DeleteRoom(args.RoomID)
	if !reply.Deleted {
		return nil
	}
	logger.Log.Infof("管理员删除房间 %s", args.RoomID)
	if a.onDeleted != nil {
		a.onDeleted(args.RoomID)
	}
	return nil
}
