// A small tour of the client: plain commands, pipelining, a
// transaction, and a PubSub listener, all against an in-process
// fixture server so the example runs without a real Redis.
package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/brassline/redwire"
	"github.com/brassline/redwire/respserver"
)

func main() {
	server := respserver.NewServer("127.0.0.1:0")

	// The fixture stores nothing by itself; give it a keyspace.
	storage := make(map[string]string)
	var mu sync.RWMutex

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

	if err := server.Listen(); err != nil {
		log.Fatal(err)
	}
	go server.Serve()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	uri := fmt.Sprintf("redis://%s", server.Addr())

	client, err := redwire.DialOnline(uri, redwire.Options{})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	// Plain request/response.
	pong, err := client.Ping("").Text()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("PING ->", pong)

	if _, err := client.Set("greeting", "hello").Wait(); err != nil {
		log.Fatal(err)
	}
	greeting, _ := client.Get("greeting").Text()
	fmt.Println("GET greeting ->", greeting)

	// Pipelining: three commands, one socket write.
	client.Pipeline()
	client.Set("a", "1")
	client.Set("b", "2")
	client.Get("a")
	cmds, err := client.Flush()
	if err != nil {
		log.Fatal(err)
	}
	last, _ := cmds[len(cmds)-1].Text()
	fmt.Println("pipelined GET a ->", last)

	// A transaction: both SETs land atomically.
	client.Multi()
	set1 := client.Set("tx1", "x")
	set2 := client.Set("tx2", "y")
	if _, err := client.Exec().Wait(); err != nil {
		log.Fatal(err)
	}
	r1, _ := set1.Text()
	r2, _ := set2.Text()
	fmt.Println("transaction ->", r1, r2)

	// PubSub on a second connection.
	sub, err := redwire.DialPubSub(uri, redwire.Options{})
	if err != nil {
		log.Fatal(err)
	}
	defer sub.Close()

	events := sub.Events()
	if err := sub.Subscribe("news"); err != nil {
		log.Fatal(err)
	}
	<-events // subscription confirmation

	if _, err := client.Publish("news", "redwire is up").Wait(); err != nil {
		log.Fatal(err)
	}
	msg := <-events
	fmt.Printf("message on %s -> %s\n", msg.Channel, msg.Payload)
}
