// Command main is a smoke-test client for the chat websocket endpoint. It
// logs in, joins a chat and prints every event the server relays.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Status  string          `json:"status"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func main() {
	host := flag.String("host", "localhost:8480", "API server host")
	username := flag.String("username", "", "login username or email")
	password := flag.String("password", "", "login password")
	chatID := flag.Uint("chat", 0, "chat id to join")
	message := flag.String("message", "", "optional message to send after joining")
	flag.Parse()

	if *username == "" || *password == "" || *chatID == 0 {
		log.Fatal("usage: chatprobe -host H -username U -password P -chat N [-message M]")
	}

	token, err := login(*host, *username, *password)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}
	log.Println("logged in")

	u := url.URL{Scheme: "ws", Host: *host, Path: "/api/ws/chat"}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		log.Fatalf("websocket dial failed: %v", err)
	}
	defer func() { _ = conn.Close() }()

	join := map[string]any{"type": "join", "chat_id": *chatID}
	if err := conn.WriteJSON(join); err != nil {
		log.Fatalf("join failed: %v", err)
	}
	log.Printf("joined chat %d", *chatID)

	if *message != "" {
		send := map[string]any{"type": "message", "chat_id": *chatID, "content": *message}
		if err := conn.WriteJSON(send); err != nil {
			log.Fatalf("send failed: %v", err)
		}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				log.Printf("read error: %v", err)
				return
			}
			log.Printf("<- %s", raw)
		}
	}()

	select {
	case <-interrupt:
		log.Println("interrupted, closing")
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case <-done:
	}
}

func login(host, username, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	resp, err := http.Post(fmt.Sprintf("http://%s/api/auth/login", host),
		"application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login returned status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", err
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", err
	}
	if data.Token == "" {
		return "", fmt.Errorf("no token in login response")
	}
	return data.Token, nil
}
