package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arthurtosi/Multiroom-Chat-Server/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("empty path must be rejected")
	}
}

func TestRegisterAndAuthenticateUser(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	created, err := store.RegisterUser(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !created {
		t.Fatal("first registration should succeed")
	}

	if dup, _ := store.RegisterUser(ctx, "alice", "other"); dup {
		t.Fatal("duplicate username must be rejected")
	}

	ok, err := store.AuthenticateUser(ctx, "alice", "pw1")
	if err != nil || !ok {
		t.Fatalf("authenticate with correct password: ok=%v err=%v", ok, err)
	}
	if ok, _ := store.AuthenticateUser(ctx, "alice", "wrong"); ok {
		t.Fatal("wrong password must fail")
	}
	if ok, _ := store.AuthenticateUser(ctx, "ghost", "pw1"); ok {
		t.Fatal("unknown user must fail")
	}
}

func TestCreateAndListRooms(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if created, err := store.CreateRoom(ctx, "zulu", ""); err != nil || !created {
		t.Fatalf("create public room: created=%v err=%v", created, err)
	}
	if created, err := store.CreateRoom(ctx, "alpha", "secret"); err != nil || !created {
		t.Fatalf("create private room: created=%v err=%v", created, err)
	}
	if dup, _ := store.CreateRoom(ctx, "alpha", ""); dup {
		t.Fatal("duplicate room name must be rejected")
	}

	rooms, err := store.ListRooms(ctx)
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(rooms) != 2 || rooms[0].Name != "alpha" || rooms[1].Name != "zulu" {
		t.Fatalf("rooms must be ordered by name, got %+v", rooms)
	}
	if !rooms[0].Private || rooms[1].Private {
		t.Fatalf("privacy flags wrong: %+v", rooms)
	}
}

func TestGetRoomDetails(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	store.CreateRoom(ctx, "vault", "secret")

	rec, err := store.GetRoomDetails(ctx, "vault")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if rec == nil || !rec.Private {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.PasswordHash != domain.DigestPassword("secret") {
		t.Fatal("room password must be stored as the shared digest")
	}

	missing, err := store.GetRoomDetails(ctx, "ghost")
	if err != nil {
		t.Fatalf("details for unknown room: %v", err)
	}
	if missing != nil {
		t.Fatal("unknown room must report absence, not a record")
	}
}

func TestRejectedCreatePreservesExistingRoom(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	store.CreateRoom(ctx, "x", "pw")

	if dup, _ := store.CreateRoom(ctx, "x", ""); dup {
		t.Fatal("duplicate create must be rejected")
	}
	rec, _ := store.GetRoomDetails(ctx, "x")
	if rec == nil || !rec.Private {
		t.Fatal("rejected create must not overwrite privacy settings")
	}
}
