package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// 控制台客户端：创建或加入房间后订阅房间消息。
// 普通输入作为聊天发送，/answer <text> 作为答案，/start 与 /next 开始游戏和下一回合，
// /clear 清空画布，/topic 查看题目（仅画家）。
func main() {
	host := flag.String("host", "localhost:8080", "server address")
	code := flag.String("room", "", "room code to join; empty creates a new room")
	name := flag.String("name", "player", "display name")
	flag.Parse()

	base := "http://" + *host
	roomID := *code
	if roomID == "" {
		var created struct {
			RoomID string `json:"room_id"`
		}
		if err := post(base+"/rooms", nil, &created); err != nil {
			log.Fatalf("Create room failed: %v", err)
		}
		roomID = created.RoomID
		log.Printf("Created room %s", roomID)
	}

	var joined struct {
		PlayerID string `json:"player_id"`
		RoomID   string `json:"room_id"`
	}
	if err := post(base+"/rooms/"+roomID+"/players", map[string]string{"player_name": *name}, &joined); err != nil {
		log.Fatalf("Join room failed: %v", err)
	}
	log.Printf("Joined room %s as %s", joined.RoomID, joined.PlayerID)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: *host, Path: "/ws",
		RawQuery: url.Values{"room_id": {roomID}, "player_id": {joined.PlayerID}}.Encode()}
	log.Printf("Connecting to %s", u.String())
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			log.Printf("<- %s", message)
		}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case text, ok := <-lines:
			if !ok {
				return
			}
			if err := handleLine(c, base, roomID, joined.PlayerID, *name, text); err != nil {
				log.Println("Error:", err)
			}
		}
	}
}

func handleLine(c *websocket.Conn, base, roomID, playerID, name, text string) error {
	switch {
	case text == "":
		return nil
	case text == "/start":
		return printResult(base + "/rooms/" + roomID + "/game/start")
	case text == "/next":
		return printResult(base + "/rooms/" + roomID + "/round/next")
	case text == "/clear":
		return c.WriteJSON(map[string]any{"action": "clear_canvas"})
	case text == "/topic":
		resp, err := http.Get(base + "/rooms/" + roomID + "/topic?player_id=" + url.QueryEscape(playerID))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		var body map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return err
		}
		log.Printf("topic: %v", body)
		return nil
	case strings.HasPrefix(text, "/answer "):
		return c.WriteJSON(map[string]any{
			"action":      "send_message",
			"message":     strings.TrimPrefix(text, "/answer "),
			"player_name": name,
			"is_answer":   true,
		})
	default:
		return c.WriteJSON(map[string]any{
			"action":      "send_message",
			"message":     text,
			"player_name": name,
		})
	}
}

func printResult(endpoint string) error {
	var result map[string]any
	if err := post(endpoint, nil, &result); err != nil {
		return err
	}
	log.Printf("-> %s: %v", endpoint, result)
	return nil
}

func post(endpoint string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	resp, err := http.Post(endpoint, "application/json", &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s: %d %s", endpoint, resp.StatusCode, e.Error)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
