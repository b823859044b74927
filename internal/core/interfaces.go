package core

import (
	"context"
	"errors"

	"github.com/arthurtosi/Multiroom-Chat-Server/internal/domain"
)

// Join failure modes, mapped to distinct diagnostics by the session handler.
var (
	ErrRoomNotFound     = errors.New("room does not exist")
	ErrPasswordRequired = errors.New("room is private and requires a password")
	ErrWrongPassword    = errors.New("wrong password for this room")
)

// RoomRecord is a persisted room as the store reports it.
type RoomRecord struct {
	Name         domain.RoomName
	Private      bool
	PasswordHash string
}

// Store is the durable credential and room catalog. The registry and the
// session handler only ever see these five calls; they never touch storage
// directly and never hold a raw password beyond the digest comparison.
//
// The boolean results mean "accepted": false is a duplicate name or a
// credential mismatch, not a failure. Errors mean the store itself is
// unavailable.
type Store interface {
	RegisterUser(ctx context.Context, username, password string) (bool, error)
	AuthenticateUser(ctx context.Context, username, password string) (bool, error)
	CreateRoom(ctx context.Context, name domain.RoomName, password string) (bool, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	GetRoomDetails(ctx context.Context, name domain.RoomName) (*RoomRecord, error)
}

// RoomInfo is a read-only view of a live room for APIs.
type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"member_count"`
}
