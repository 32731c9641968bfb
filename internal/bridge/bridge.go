// Package bridge exposes the daemon's command handler over local HTTP so a
// browser extension can deliver snapshots and read meetings.
package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/meetmind/meetmind/internal/daemon"
	"github.com/meetmind/meetmind/internal/logger"
)

const heartbeatInterval = 15 * time.Second

// Bridge serves the HTTP API.
type Bridge struct {
	app     *fiber.App
	handler *daemon.Handler
	hub     *daemon.Hub
	log     zerolog.Logger
}

// New builds the fiber app and registers routes behind the access guard.
func New(handler *daemon.Handler, hub *daemon.Hub, access Access) *Bridge {
	b := &Bridge{
		handler: handler,
		hub:     hub,
		log:     logger.With("bridge"),
		app: fiber.New(fiber.Config{
			AppName:               "meetmind",
			DisableStartupMessage: true,
			BodyLimit:             4 * 1024 * 1024,
		}),
	}

	b.app.Use(recover.New())
	b.app.Use(newAccessGuard(access).Require)

	v1 := b.app.Group("/v1")
	v1.Post("/command", b.command)
	v1.Post("/captions", b.captions)
	v1.Post("/chat", b.chat)
	v1.Get("/status", b.simple(daemon.CmdStatus))
	v1.Get("/meetings", b.simple(daemon.CmdGetMeetingList))
	v1.Get("/meetings/:id", b.meeting)
	v1.Post("/meetings/:id/summarize", b.summarize)
	v1.Get("/summaries", b.simple(daemon.CmdGetSummaries))
	v1.Get("/errors", b.simple(daemon.CmdGetErrors))
	v1.Get("/preferences", b.simple(daemon.CmdGetPreferences))
	v1.Put("/preferences", b.setPreferences)
	v1.Get("/events", b.events)

	return b
}

// App returns the underlying fiber app, for tests.
func (b *Bridge) App() *fiber.App {
	return b.app
}

// Listen serves on addr until ctx is done.
func (b *Bridge) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		b.log.Info().Str("addr", addr).Msg("listening")
		errCh <- b.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return b.app.ShutdownWithTimeout(5 * time.Second)
	}
}

func (b *Bridge) reply(c *fiber.Ctx, resp daemon.Response) error {
	if !resp.OK {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	return c.JSON(resp)
}

func (b *Bridge) command(c *fiber.Ctx) error {
	var cmd daemon.Command
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid command body"})
	}
	if cmd.Cmd == daemon.CmdSubscribe {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "use GET /v1/events to subscribe"})
	}
	return b.reply(c, b.handler.Handle(c.UserContext(), cmd))
}

func (b *Bridge) captions(c *fiber.Ctx) error {
	var snaps []daemon.CaptionSnapshot
	if err := c.BodyParser(&snaps); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid caption batch"})
	}
	return b.reply(c, b.handler.Handle(c.UserContext(), daemon.Command{Cmd: daemon.CmdCaption, Captions: snaps}))
}

func (b *Bridge) chat(c *fiber.Ctx) error {
	var snaps []daemon.ChatSnapshot
	if err := c.BodyParser(&snaps); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid chat batch"})
	}
	return b.reply(c, b.handler.Handle(c.UserContext(), daemon.Command{Cmd: daemon.CmdChat, Chat: snaps}))
}

func (b *Bridge) simple(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return b.reply(c, b.handler.Handle(c.UserContext(), daemon.Command{Cmd: name}))
	}
}

func (b *Bridge) meeting(c *fiber.Ctx) error {
	id := c.Params("id")
	resp := b.handler.Handle(c.UserContext(), daemon.Command{Cmd: daemon.CmdGetTranscript})
	if !resp.OK {
		return b.reply(c, resp)
	}
	t, ok := resp.SavedTranscripts[id]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "meeting not found"})
	}
	return c.JSON(fiber.Map{"ok": true, "meetingId": id, "title": t.Title, "date": t.Date, "content": t.Content})
}

func (b *Bridge) summarize(c *fiber.Ctx) error {
	resp := b.handler.Handle(c.UserContext(), daemon.Command{Cmd: daemon.CmdSummarize, MeetingID: c.Params("id")})
	if resp.OK {
		return c.Status(fiber.StatusAccepted).JSON(resp)
	}
	return b.reply(c, resp)
}

func (b *Bridge) setPreferences(c *fiber.Ctx) error {
	var cmd daemon.Command
	cmd.Cmd = daemon.CmdSetPreferences
	if err := c.BodyParser(&cmd.Preferences); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid preferences"})
	}
	return b.reply(c, b.handler.Handle(c.UserContext(), cmd))
}

// events streams daemon events as Server-Sent Events. An optional
// comma-separated "events" query limits which are sent.
func (b *Bridge) events(c *fiber.Ctx) error {
	if ah := c.Get("Accept"); ah != "" && !strings.Contains(ah, "text/event-stream") && !strings.Contains(ah, "*/*") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "this endpoint only serves text/event-stream"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	var filter []string
	if q := c.Query("events"); q != "" {
		filter = strings.Split(q, ",")
	}
	clientID := uuid.NewString()
	ch, unsubscribe := b.hub.Subscribe(filter)
	b.log.Info().Str("client", clientID).Str("ip", c.IP()).Msg("event client connected")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()
		defer b.log.Info().Str("client", clientID).Msg("event client disconnected")

		send := func(ev daemon.Event) bool {
			data, err := json.Marshal(ev)
			if err != nil {
				return true
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Event, data); err != nil {
				return false
			}
			return w.Flush() == nil
		}

		tick := time.NewTicker(heartbeatInterval)
		defer tick.Stop()
		for {
			select {
			case ev, ok := <-ch:
				if !ok || !send(ev) {
					return
				}
			case <-tick.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil || w.Flush() != nil {
					return
				}
			}
		}
	}))
	return nil
}
