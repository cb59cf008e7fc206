package redwire

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brassline/redwire/respserver"
)

// startTestServer starts an in-process RESP server with a small
// map-backed keyspace and returns the redis:// URI to dial it at.
func startTestServer(t *testing.T) (*respserver.Server, string, func()) {
	server := respserver.NewServer("127.0.0.1:0")

	storage := make(map[string]string)
	mu := sync.RWMutex{}

	server.RegisterCommandFunc("SET", func(conn *respserver.Conn, cmd *respserver.Command) respserver.Value {
		if len(cmd.Args) < 2 {
			return respserver.Errorf("ERR wrong number of arguments for 'set' command")
		}
		mu.Lock()
		storage[cmd.Args[0]] = cmd.Args[1]
		mu.Unlock()
		return respserver.OK()
	})

	server.RegisterCommandFunc("GET", func(conn *respserver.Conn, cmd *respserver.Command) respserver.Value {
		if len(cmd.Args) != 1 {
			return respserver.Errorf("ERR wrong number of arguments for 'get' command")
		}
		mu.RLock()
		value, exists := storage[cmd.Args[0]]
		mu.RUnlock()
		if !exists {
			return respserver.Nil()
		}
		return respserver.Bulk(value)
	})

	server.RegisterCommandFunc("DEL", func(conn *respserver.Conn, cmd *respserver.Command) respserver.Value {
		mu.Lock()
		deleted := int64(0)
		for _, key := range cmd.Args {
			if _, exists := storage[key]; exists {
				delete(storage, key)
				deleted++
			}
		}
		mu.Unlock()
		return respserver.Int(deleted)
	})

	server.RegisterCommandFunc("INCR", func(conn *respserver.Conn, cmd *respserver.Command) respserver.Value {
		if len(cmd.Args) != 1 {
			return respserver.Errorf("ERR wrong number of arguments for 'incr' command")
		}
		mu.Lock()
		defer mu.Unlock()
		n, err := strconv.ParseInt(storage[cmd.Args[0]], 10, 64)
		if err != nil && storage[cmd.Args[0]] != "" {
			return respserver.Errorf("ERR value is not an integer or out of range")
		}
		n++
		storage[cmd.Args[0]] = strconv.FormatInt(n, 10)
		return respserver.Int(n)
	})

	if err := server.Listen(); err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	go server.Serve()

	uri := fmt.Sprintf("redis://%s", server.Addr())
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
	return server, uri, cleanup
}

func dialTestClient(t *testing.T, uri string) *Client {
	client, err := DialOnline(uri, Options{})
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", uri, err)
	}
	return client
}

func TestClientPingPong(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	client := dialTestClient(t, uri)
	defer client.Close()

	pong, err := client.Ping("").Text()
	if err != nil {
		t.Fatalf("PING failed: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("Expected PONG, got %q", pong)
	}

	echoed, err := client.Ping("hello").Text()
	if err != nil {
		t.Fatalf("PING with message failed: %v", err)
	}
	if echoed != "hello" {
		t.Errorf("Expected hello, got %q", echoed)
	}
}

func TestClientSetGet(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	client := dialTestClient(t, uri)
	defer client.Close()

	if _, err := client.Set("key", "value").Wait(); err != nil {
		t.Fatalf("SET failed: %v", err)
	}

	value, err := client.Get("key").Text()
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if value != "value" {
		t.Errorf("Expected value, got %q", value)
	}

	// Missing keys answer the null sentinel, which resolves to nil.
	missing, err := client.Get("no-such-key").Wait()
	if err != nil {
		t.Fatalf("GET missing failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing key, got %v", missing)
	}
}

func TestClientUnknownCommand(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	client := dialTestClient(t, uri)
	defer client.Close()

	_, err := client.Do("NOSUCHCOMMAND")
	var serr ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected a server error, got %v", err)
	}
	if serr.Prefix() != "ERR" {
		t.Errorf("Expected ERR prefix, got %q", serr.Prefix())
	}

	// The connection survives a server error reply.
	if _, err := client.Ping("").Text(); err != nil {
		t.Errorf("Connection unusable after error reply: %v", err)
	}
}

func TestClientPipeline(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	client := dialTestClient(t, uri)
	defer client.Close()

	client.Pipeline()
	client.Set("a", "1")
	client.Incr("counter")
	client.Get("a")
	cmds, err := client.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if len(cmds) != 3 {
		t.Fatalf("Expected 3 commands, got %d", len(cmds))
	}

	if ok, _ := cmds[0].Text(); ok != "OK" {
		t.Errorf("Expected OK, got %q", ok)
	}
	if n, _ := cmds[1].Int(); n != 1 {
		t.Errorf("Expected 1, got %d", n)
	}
	if v, _ := cmds[2].Text(); v != "1" {
		t.Errorf("Expected 1, got %q", v)
	}
}

func TestClientTransactionCommit(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	client := dialTestClient(t, uri)
	defer client.Close()

	if ok, err := client.Multi().Text(); err != nil || ok != "OK" {
		t.Fatalf("MULTI failed: %v %q", err, ok)
	}

	set1 := client.Set("k1", "v1")
	get1 := client.Get("k1")
	set2 := client.Set("k2", "v2")
	get2 := client.Get("k2")

	execRes, err := client.Exec().Wait()
	if err != nil {
		t.Fatalf("EXEC failed: %v", err)
	}
	if arr, ok := execRes.([]any); !ok || len(arr) != 4 {
		t.Fatalf("Expected 4-element EXEC reply, got %v", execRes)
	}

	for i, cmd := range []*Command{set1, set2} {
		if ok, err := cmd.Text(); err != nil || ok != "OK" {
			t.Errorf("Queued SET %d resolved %q, %v", i, ok, err)
		}
	}
	if v, _ := get1.Text(); v != "v1" {
		t.Errorf("Expected v1, got %q", v)
	}
	if v, _ := get2.Text(); v != "v2" {
		t.Errorf("Expected v2, got %q", v)
	}
}

func TestClientWatchAbort(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	c1 := dialTestClient(t, uri)
	defer c1.Close()
	c2 := dialTestClient(t, uri)
	defer c2.Close()

	if _, err := c1.Watch("contested").Wait(); err != nil {
		t.Fatalf("WATCH failed: %v", err)
	}

	// Another client modifies the watched key before EXEC.
	if _, err := c2.Set("contested", "theirs").Wait(); err != nil {
		t.Fatalf("Competing SET failed: %v", err)
	}

	c1.Multi()
	set := c1.Set("contested", "ours")

	execRes, err := c1.Exec().Wait()
	if err != nil {
		t.Fatalf("EXEC failed: %v", err)
	}
	if execRes != nil {
		t.Errorf("Expected null EXEC reply on abort, got %v", execRes)
	}

	if _, err := set.Wait(); !errors.Is(err, ErrTransactionDiscarded) {
		t.Errorf("Expected discarded error, got %v", err)
	}

	// The competing write won.
	if v, _ := c2.Get("contested").Text(); v != "theirs" {
		t.Errorf("Expected theirs, got %q", v)
	}
}

func TestClientTransactionDiscard(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	client := dialTestClient(t, uri)
	defer client.Close()

	client.Multi()
	set := client.Set("k", "v")
	if ok, err := client.Discard().Text(); err != nil || ok != "OK" {
		t.Fatalf("DISCARD failed: %v %q", err, ok)
	}

	if _, err := set.Wait(); !errors.Is(err, ErrTransactionDiscarded) {
		t.Errorf("Expected discarded error, got %v", err)
	}

	if v, _ := client.Get("k").Wait(); v != nil {
		t.Errorf("Discarded SET leaked: %v", v)
	}
}

func TestClientReplyModes(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	client := dialTestClient(t, uri)
	defer client.Close()

	// SKIP suppresses exactly one reply.
	skip := client.ClientReply(ReplySkip)
	suppressed := client.Ping("")
	answered := client.Ping("")

	if v, err := skip.Wait(); err != nil || v != nil {
		t.Errorf("SKIP resolved %v, %v", v, err)
	}
	if v, err := suppressed.Wait(); err != nil || v != nil {
		t.Errorf("Suppressed PING resolved %v, %v", v, err)
	}
	if pong, err := answered.Text(); err != nil || pong != "PONG" {
		t.Errorf("Answered PING resolved %q, %v", pong, err)
	}

	// OFF suppresses everything until ON.
	client.ClientReply(ReplyOff)
	s1 := client.Set("quiet1", "1")
	s2 := client.Set("quiet2", "2")
	on := client.ClientReply(ReplyOn)

	for _, cmd := range []*Command{s1, s2} {
		if v, err := cmd.Wait(); err != nil || v != nil {
			t.Errorf("Suppressed SET resolved %v, %v", v, err)
		}
	}
	if ok, err := on.Text(); err != nil || ok != "OK" {
		t.Fatalf("CLIENT REPLY ON resolved %q, %v", ok, err)
	}

	// The suppressed writes landed.
	if v, _ := client.Get("quiet1").Text(); v != "1" {
		t.Errorf("Expected 1, got %q", v)
	}
}

func TestClientPubSub(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	publisher := dialTestClient(t, uri)
	defer publisher.Close()

	sub, err := DialPubSub(uri, Options{})
	if err != nil {
		t.Fatalf("Failed to dial pubsub: %v", err)
	}
	defer sub.Close()

	events := sub.Events()
	if err := sub.Subscribe("alerts"); err != nil {
		t.Fatalf("SUBSCRIBE failed: %v", err)
	}

	ev := <-events
	if ev.Kind != EventSubscription || ev.Channel != "alerts" || ev.SubscriptionCount != 1 {
		t.Fatalf("Unexpected subscription event: %+v", ev)
	}

	n, err := publisher.Publish("alerts", "fire").Int()
	if err != nil {
		t.Fatalf("PUBLISH failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 receiver, got %d", n)
	}

	ev = <-events
	if ev.Kind != EventMessage || ev.Channel != "alerts" || string(ev.Payload) != "fire" {
		t.Fatalf("Unexpected message event: %+v", ev)
	}
}

func TestClientPatternPubSub(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	publisher := dialTestClient(t, uri)
	defer publisher.Close()

	sub, err := DialPubSub(uri, Options{})
	if err != nil {
		t.Fatalf("Failed to dial pubsub: %v", err)
	}
	defer sub.Close()

	events := sub.Events()
	if err := sub.PSubscribe("news.*"); err != nil {
		t.Fatalf("PSUBSCRIBE failed: %v", err)
	}
	<-events // confirmation

	if _, err := publisher.Publish("news.tech", "chips").Wait(); err != nil {
		t.Fatalf("PUBLISH failed: %v", err)
	}

	ev := <-events
	if ev.Kind != EventPatternMessage || ev.Pattern != "news.*" || ev.Channel != "news.tech" {
		t.Fatalf("Unexpected pattern event: %+v", ev)
	}
	if string(ev.Payload) != "chips" {
		t.Errorf("Expected chips, got %q", ev.Payload)
	}
}

// TestClientPubSubHandoff authenticates through an Online client and
// hands the same connection to PubSub mode.
func TestClientPubSubHandoff(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	client := dialTestClient(t, uri)
	if _, err := client.Ping("").Wait(); err != nil {
		t.Fatalf("PING before handoff failed: %v", err)
	}

	sub := NewPubSub(client.Connection(), Options{})
	defer sub.Close()

	events := sub.Events()
	if err := sub.Subscribe("handoff"); err != nil {
		t.Fatalf("SUBSCRIBE after handoff failed: %v", err)
	}

	ev := <-events
	if ev.Kind != EventSubscription || ev.Channel != "handoff" {
		t.Fatalf("Unexpected event after handoff: %+v", ev)
	}
}

func TestClientMonitor(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	mon, err := DialMonitor(uri, Options{})
	if err != nil {
		t.Fatalf("Failed to dial monitor: %v", err)
	}
	defer mon.Close()

	stream := mon.Stream()
	if err := mon.Start(); err != nil {
		t.Fatalf("MONITOR failed: %v", err)
	}
	// Wait for the +OK acknowledging MONITOR: the server registers this
	// connection as a monitor before sending it, so the SET below is seen.
	collect(t, stream, "+OK\r\n")

	client := dialTestClient(t, uri)
	defer client.Close()
	if _, err := client.Set("observed", "yes").Wait(); err != nil {
		t.Fatalf("SET failed: %v", err)
	}

	var seen strings.Builder
	deadline := time.After(2 * time.Second)
	for !strings.Contains(seen.String(), `"SET" "observed" "yes"`) {
		select {
		case chunk, ok := <-stream:
			if !ok {
				t.Fatalf("Monitor stream closed early, saw %q", seen.String())
			}
			seen.Write(chunk)
		case <-deadline:
			t.Fatalf("Monitor never observed the SET, saw %q", seen.String())
		}
	}
}

func TestClientTerminal(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	term, err := DialTerminal(uri, Options{})
	if err != nil {
		t.Fatalf("Failed to dial terminal: %v", err)
	}
	defer term.Close()

	stream := term.Stream()
	if err := term.Send([]byte("PING\r\n")); err != nil {
		t.Fatalf("Inline send failed: %v", err)
	}

	select {
	case chunk := <-stream:
		if !strings.HasPrefix(string(chunk), "+PONG") {
			t.Errorf("Expected +PONG, got %q", chunk)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("No inline reply arrived")
	}
}

func TestClientQuit(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	client := dialTestClient(t, uri)
	defer client.Close()

	ok, err := client.Quit().Text()
	if err != nil {
		t.Fatalf("QUIT failed: %v", err)
	}
	if ok != "OK" {
		t.Errorf("Expected OK, got %q", ok)
	}

	select {
	case <-client.Connection().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Connection did not close after QUIT")
	}
}

func TestClientEcho(t *testing.T) {
	_, uri, cleanup := startTestServer(t)
	defer cleanup()

	client := dialTestClient(t, uri)
	defer client.Close()

	msg, err := client.Echo("binary safe\r\npayload").Text()
	if err != nil {
		t.Fatalf("ECHO failed: %v", err)
	}
	if msg != "binary safe\r\npayload" {
		t.Errorf("ECHO mangled the payload: %q", msg)
	}
}
