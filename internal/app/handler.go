package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/arthurtosi/Multiroom-Chat-Server/internal/core"
	"github.com/arthurtosi/Multiroom-Chat-Server/internal/domain"
)

type sessionState int

const (
	stateAuth sessionState = iota
	stateMenu
	stateChat
)

// errQuit signals a clean disconnect requested from the main menu.
var errQuit = errors.New("client requested disconnect")

const authMenuText = `
----------------------------------------
|        Welcome to the Chat!          |
----------------------------------------
| Choose an option:                    |
|                                      |
| 1. Register New User                 |
| 2. Log In                            |
|                                      |
----------------------------------------
Your choice: `

const chatModeText = "\n--- CHAT MODE ---\n" +
	"You are in the room. Type your messages. To return to the menu, type /menu. To leave the room, type /leave.\n"

// handler drives one connection through the session lifecycle: the auth
// menu, the main menu, and chat mode. It is the only goroutine that ever
// reads from the session's stream.
type handler struct {
	store    core.Store
	registry *core.Registry
	sess     *core.Session
	in       *bufio.Scanner
}

func newHandler(store core.Store, registry *core.Registry, conn io.ReadWriteCloser, readLimit int) *handler {
	if readLimit <= 0 {
		readLimit = 64 * 1024
	}
	sess := core.NewSession(conn)
	in := bufio.NewScanner(sess.Stream())
	in.Buffer(make([]byte, 0, 4096), readLimit)
	return &handler{
		store:    store,
		registry: registry,
		sess:     sess,
		in:       in,
	}
}

// run loops the state machine until the stream fails or the client quits,
// then cleans the session out of every shared structure exactly once.
func (h *handler) run(ctx context.Context) {
	defer func() {
		h.registry.RemoveEverywhere(h.sess)
		_ = h.sess.Close()
		log.Info().Str("module", "app.handler").Str("sid", h.sess.ID).Str("user", h.sess.Username()).Msg("session closed")
	}()

	state := stateAuth
	for {
		var (
			next sessionState
			err  error
		)
		switch state {
		case stateAuth:
			next, err = h.authMenu(ctx)
		case stateMenu:
			next, err = h.mainMenu(ctx)
		case stateChat:
			next, err = h.chatMode(ctx)
		}
		if err != nil {
			if !errors.Is(err, errQuit) {
				log.Debug().Err(err).Str("module", "app.handler").Str("sid", h.sess.ID).Msg("session stream ended")
			}
			return
		}
		state = next
	}
}

// readLine blocks for the next newline-delimited frame. The stream may
// fragment arbitrarily; the scanner reassembles complete lines.
func (h *handler) readLine() (string, error) {
	if !h.in.Scan() {
		if err := h.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(h.in.Text()), nil
}

func (h *handler) authMenu(ctx context.Context) (sessionState, error) {
	if err := h.sess.Send(authMenuText); err != nil {
		return 0, err
	}
	choice, err := h.readLine()
	if err != nil {
		return 0, err
	}

	switch choice {
	case "1":
		if err := h.register(ctx); err != nil {
			return 0, err
		}
	case "2":
		ok, err := h.login(ctx)
		if err != nil {
			return 0, err
		}
		if ok {
			return stateMenu, nil
		}
	default:
		if err := h.sess.Send("\nInvalid option. Please choose 1 or 2.\n"); err != nil {
			return 0, err
		}
	}
	return stateAuth, nil
}

func (h *handler) register(ctx context.Context) error {
	if err := h.sess.Send("\n--- REGISTER NEW USER ---\nEnter a username and a password, separated by a space (e.g. new_user 12345): "); err != nil {
		return err
	}
	line, err := h.readLine()
	if err != nil {
		return err
	}

	user, pass, ok := strings.Cut(line, " ")
	if !ok || user == "" || pass == "" {
		return h.sess.Send("\nInvalid format. The username and the password must be separated by a space.\n")
	}
	if err := domain.ValidateUsername(user); err != nil {
		return h.sess.Send(fmt.Sprintf("\nInvalid username: %s.\n", err))
	}

	created, err := h.store.RegisterUser(ctx, user, pass)
	if err != nil {
		log.Error().Err(err).Str("module", "app.handler").Str("sid", h.sess.ID).Msg("register failed")
		return h.sess.Send("\nError: registration is unavailable right now.\n")
	}
	if !created {
		return h.sess.Send("\nError: user already exists.\n")
	}
	return h.sess.Send("\nUser registered successfully!\n")
}

func (h *handler) login(ctx context.Context) (bool, error) {
	if err := h.sess.Send("\n--- LOG IN ---\nEnter your username and password, separated by a space (e.g. existing_user 12345): "); err != nil {
		return false, err
	}
	line, err := h.readLine()
	if err != nil {
		return false, err
	}

	user, pass, ok := strings.Cut(line, " ")
	if !ok || user == "" || pass == "" {
		return false, h.sess.Send("\nInvalid format. Login failed.\n")
	}

	authed, err := h.store.AuthenticateUser(ctx, user, pass)
	if err != nil {
		log.Error().Err(err).Str("module", "app.handler").Str("sid", h.sess.ID).Msg("login failed")
		return false, h.sess.Send("\nError: login is unavailable right now.\n")
	}
	if !authed {
		return false, h.sess.Send("\nError: invalid username or password.\n")
	}

	h.sess.BindIdentity(user)
	h.registry.Authenticate(h.sess, user)
	return true, h.sess.Send("\nLogin successful!\n")
}

func (h *handler) mainMenu(ctx context.Context) (sessionState, error) {
	options := []string{
		"1. List Rooms",
		"2. Create Room",
		"3. Join Room",
		"4. Quit (Disconnect)",
	}
	room, inRoom := h.registry.CurrentRoom(h.sess)
	if inRoom {
		options = append(options,
			fmt.Sprintf("5. Leave Current Room (%s)", room),
			"6. Back to Chat",
		)
	}

	var menu strings.Builder
	menu.WriteString("\n----------------------------------------\n|        Main Menu                     |\n----------------------------------------\n")
	for _, opt := range options {
		fmt.Fprintf(&menu, "| %-36s |\n", opt)
	}
	menu.WriteString("----------------------------------------\nYour choice: ")
	if err := h.sess.Send(menu.String()); err != nil {
		return 0, err
	}

	choice, err := h.readLine()
	if err != nil {
		return 0, err
	}

	switch {
	case choice == "1":
		if err := h.listRooms(ctx); err != nil {
			return 0, err
		}
	case choice == "2":
		if err := h.createRoom(ctx); err != nil {
			return 0, err
		}
	case choice == "3":
		joined, err := h.joinRoom(ctx)
		if err != nil {
			return 0, err
		}
		if joined {
			return stateChat, nil
		}
	case choice == "4":
		return 0, errQuit
	case choice == "5" && inRoom:
		if _, ok := h.registry.Leave(h.sess); ok {
			if err := h.sess.Send("\nYou left the room.\n"); err != nil {
				return 0, err
			}
		}
	case choice == "6" && inRoom:
		return stateChat, nil
	default:
		if err := h.sess.Send("\nInvalid option. Try again.\n"); err != nil {
			return 0, err
		}
	}
	return stateMenu, nil
}

func (h *handler) listRooms(ctx context.Context) error {
	rooms, err := h.store.ListRooms(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "app.handler").Str("sid", h.sess.ID).Msg("list rooms failed")
		return h.sess.Send("\nError: room list is unavailable right now.\n")
	}
	if len(rooms) == 0 {
		return h.sess.Send("\nNo rooms available.\n")
	}

	var out strings.Builder
	out.WriteString("\n--- AVAILABLE ROOMS ---\n")
	for _, room := range rooms {
		if room.Private {
			fmt.Fprintf(&out, "- %s (Private)\n", room.Name)
		} else {
			fmt.Fprintf(&out, "- %s\n", room.Name)
		}
	}
	return h.sess.Send(out.String())
}

func (h *handler) createRoom(ctx context.Context) error {
	prompt := "\n--- CREATE NEW ROOM ---\n" +
		"Use the format: <room_name> <y/n for private> [password_if_private]\n" +
		"Examples:\n" +
		"  - Public room: public_room n\n" +
		"  - Private room: private_room y 12345\n" +
		"Your input: "
	if err := h.sess.Send(prompt); err != nil {
		return err
	}
	line, err := h.readLine()
	if err != nil {
		return err
	}

	parts := strings.Fields(line)
	if len(parts) < 2 {
		return h.sess.Send("\nInvalid format. You must provide at least the room name and 'y' or 'n'.\n")
	}

	name := domain.RoomName(parts[0])
	if err := domain.ValidateRoomName(name); err != nil {
		return h.sess.Send(fmt.Sprintf("\nInvalid room name: %s.\n", err))
	}

	var password string
	switch strings.ToLower(parts[1]) {
	case "y":
		if len(parts) < 3 {
			return h.sess.Send("\nInvalid format. Private rooms require a password.\n")
		}
		password = parts[2]
	case "n":
	default:
		return h.sess.Send("\nInvalid privacy option. Use 'y' for yes or 'n' for no.\n")
	}

	created, err := h.registry.CreateRoom(ctx, name, password)
	if err != nil {
		log.Error().Err(err).Str("module", "app.handler").Str("sid", h.sess.ID).Msg("create room failed")
		return h.sess.Send("\nError: room creation is unavailable right now.\n")
	}
	if !created {
		return h.sess.Send(fmt.Sprintf("\nError: room '%s' already exists.\n", name))
	}
	return h.sess.Send(fmt.Sprintf("\nRoom '%s' created successfully!\n", name))
}

func (h *handler) joinRoom(ctx context.Context) (bool, error) {
	prompt := "\n--- JOIN ROOM ---\n" +
		"Enter the room name and the password (if it is private), separated by a space:\n" +
		"e.g. my_private_room 12345\n" +
		"Your input: "
	if err := h.sess.Send(prompt); err != nil {
		return false, err
	}
	line, err := h.readLine()
	if err != nil {
		return false, err
	}

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, h.sess.Send("\nInvalid input.\n")
	}
	name := domain.RoomName(parts[0])
	var password string
	if len(parts) > 1 {
		password = parts[1]
	}

	switch err := h.registry.Join(ctx, h.sess, name, password); {
	case err == nil:
		return true, h.sess.Send(fmt.Sprintf("\nYou joined the room '%s'.\n", name))
	case errors.Is(err, core.ErrRoomNotFound):
		return false, h.sess.Send("\nError: no such room.\n")
	case errors.Is(err, core.ErrPasswordRequired):
		return false, h.sess.Send("\nError: this room is private and requires a password.\n")
	case errors.Is(err, core.ErrWrongPassword):
		return false, h.sess.Send("\nError: wrong password for this room.\n")
	default:
		log.Error().Err(err).Str("module", "app.handler").Str("sid", h.sess.ID).Msg("join room failed")
		return false, h.sess.Send("\nError: could not join the room right now.\n")
	}
}

func (h *handler) chatMode(context.Context) (sessionState, error) {
	if err := h.sess.Send(chatModeText); err != nil {
		return 0, err
	}
	for {
		line, err := h.readLine()
		if err != nil {
			return 0, err
		}

		switch {
		case strings.EqualFold(line, "/menu"):
			return stateMenu, nil
		case strings.EqualFold(line, "/leave"):
			if _, ok := h.registry.Leave(h.sess); ok {
				if err := h.sess.Send("\nYou left the room.\n"); err != nil {
					return 0, err
				}
			}
			return stateMenu, nil
		case line == "":
			continue
		default:
			room, ok := h.registry.CurrentRoom(h.sess)
			if !ok {
				// Pruned mid-chat (or never joined): direct diagnostic, no broadcast.
				if err := h.sess.Send("You are not in a room. Type /menu to go back to the main menu.\n"); err != nil {
					return 0, err
				}
				continue
			}
			h.registry.Broadcast(fmt.Sprintf("[%s@%s]: %s", h.sess.Username(), room, line), room, h.sess)
		}
	}
}
