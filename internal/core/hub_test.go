package core

import (
	"context"
	"testing"
	"time"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	hub := NewHub(nil, nil)
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestHubJoinBroadcastAndLeave(t *testing.T) {
	hub, _ := startHub(t)

	alice := NewClient("a", 0)
	bob := NewClient("b", 0)
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	hub.Submit(alice, JoinRoom{RoomID: "GENERAL", UserName: "alice"})
	mustEvent(t, alice.Events, EventRoomMessages)
	hub.Submit(bob, JoinRoom{RoomID: "GENERAL", UserName: "bob"})

	// Bob sees his own join notice.
	joinEv := mustEvent(t, bob.Events, EventNewMessage).(NewMessage)
	if joinEv.Message.Content != "bob joined the room" || joinEv.RoomID != "GENERAL" {
		t.Fatalf("unexpected join event: %+v", joinEv)
	}

	hub.Submit(alice, SendMessage{Draft: Draft{Content: "hi"}})
	msgEv := mustEvent(t, bob.Events, EventNewMessage).(NewMessage)
	if msgEv.Message.Content != "hi" || msgEv.Message.Sender != "alice" {
		t.Fatalf("unexpected message event: %+v", msgEv)
	}

	// Alice goes away; Bob sees the leave notice.
	hub.UnregisterClient(alice)
	leftEv := mustEvent(t, bob.Events, EventNewMessage).(NewMessage)
	if leftEv.Message.Content != "alice left the room" {
		t.Fatalf("unexpected leave event: %+v", leftEv)
	}
	// Alice's channel is closed once she is unregistered.
	for range alice.Events {
	}
}

func TestHubUnregisterRunsAfterQueuedCommands(t *testing.T) {
	hub, _ := startHub(t)

	alice := NewClient("a", 0)
	bob := NewClient("b", 0)
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)
	hub.Submit(bob, JoinRoom{RoomID: "R", UserName: "bob"})
	mustEvent(t, bob.Events, EventRoomMessages)

	hub.Submit(alice, JoinRoom{RoomID: "R", UserName: "alice"})
	hub.Submit(alice, SendMessage{Draft: Draft{Content: "last words"}})
	hub.UnregisterClient(alice)

	want := []string{"alice joined the room", "last words", "alice left the room"}
	for _, content := range want {
		ev := mustEvent(t, bob.Events, EventNewMessage).(NewMessage)
		if ev.Message.Content != content {
			t.Fatalf("got %q, want %q", ev.Message.Content, content)
		}
	}
}

func TestHubDropsEventsForUnknownConnections(t *testing.T) {
	hub, _ := startHub(t)

	alice := NewClient("a", 0)
	hub.RegisterClient(alice)
	hub.Submit(alice, JoinRoom{RoomID: "R", UserName: "alice"})
	mustEvent(t, alice.Events, EventRoomMessages)

	// Relay to a caller that never existed is a no-op, and the hub keeps going.
	hub.Submit(alice, AcceptCall{CallerID: "nobody"})
	hub.Submit(alice, SendMessage{Draft: Draft{Content: "still here"}})

	ev := mustEvent(t, alice.Events, EventNewMessage).(NewMessage)
	for ev.Message.Type == MessageSystem {
		ev = mustEvent(t, alice.Events, EventNewMessage).(NewMessage)
	}
	if ev.Message.Content != "still here" {
		t.Fatalf("unexpected message: %+v", ev.Message)
	}
}

func TestHubDropsForSlowConsumer(t *testing.T) {
	hub, _ := startHub(t)

	slow := NewClient("slow", 1)
	fast := NewClient("fast", 0)
	hub.RegisterClient(slow)
	hub.RegisterClient(fast)
	hub.Submit(slow, JoinRoom{RoomID: "R", UserName: "slow"})
	hub.Submit(fast, JoinRoom{RoomID: "R", UserName: "fast"})
	mustEvent(t, fast.Events, EventRoomMessages)

	for range 20 {
		hub.Submit(fast, SendMessage{Draft: Draft{Content: "spam"}})
	}
	hub.Submit(fast, Typing{IsTyping: true})

	// The hub is not blocked by the full slow buffer.
	mustEvent(t, fast.Events, EventNewMessage)
	hub.Submit(slow, Typing{IsTyping: true})
	mustEvent(t, fast.Events, EventUserTyping)
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub, cancel := startHub(t)

	alice := NewClient("a", 0)
	hub.RegisterClient(alice)
	cancel()

	select {
	case <-hub.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("hub did not stop")
	}
	if _, ok := <-alice.Events; ok {
		t.Fatalf("expected closed events channel")
	}

	// Calls after shutdown return instead of blocking.
	hub.Submit(alice, Typing{})
	hub.RegisterClient(NewClient("late", 0))
}
