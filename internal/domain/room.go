package domain

import "errors"

var (
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrRoomNameTooLong = errors.New("room name too long")
)

type RoomName string

// Room is the persisted identity of a chat channel. Live membership is kept
// by the registry, never here.
type Room struct {
	Name    RoomName `json:"name"`
	Private bool     `json:"private"`
}

func ValidateRoomName(name RoomName) error {
	if len(name) == 0 {
		return ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		return ErrRoomNameTooLong
	}
	return nil
}
