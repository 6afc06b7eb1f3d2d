package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/mkarimof/quizduel/pkg/messages"
)

// A minimal terminal client for playing against the server, mostly
// useful for manual testing: it joins, prints the question ids of the
// match, and submits answers typed as "<questionID> <option>".
func main() {
	url := flag.String("url", "ws://localhost:8888/ws", "WebSocket URL of the server")
	playerID := flag.String("player", "", "Player identifier")
	flag.Parse()

	if *playerID == "" {
		fmt.Fprintln(os.Stderr, "usage: client -player <id> [-url ws://host:port/ws]")
		os.Exit(1)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	join, err := messages.NewMessage(messages.MessageTypeClientJoin, &messages.ClientJoin{PlayerID: *playerID})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build join message: %v\n", err)
		os.Exit(1)
	}
	if err := conn.WriteJSON(join); err != nil {
		fmt.Fprintf(os.Stderr, "failed to join: %v\n", err)
		os.Exit(1)
	}

	gameID := make(chan string, 1)
	go readLoop(conn, gameID)

	fmt.Println("waiting for an opponent...")
	currentGame := <-gameID

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println(`enter answers as "<questionID> <option>", or "finish"`)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if line == "finish" {
			msg, err := messages.NewMessage(messages.MessageTypeClientFinish, &messages.ClientFinish{GameID: currentGame})
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to build finish message: %v\n", err)
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				fmt.Fprintf(os.Stderr, "failed to send finish: %v\n", err)
				return
			}
			continue
		}

		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			fmt.Println(`expected "<questionID> <option>"`)
			continue
		}

		msg, err := messages.NewMessage(messages.MessageTypeClientAnswer, &messages.ClientAnswer{
			GameID:         currentGame,
			QuestionID:     fields[0],
			SelectedOption: fields[1],
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to build answer message: %v\n", err)
			continue
		}
		if err := conn.WriteJSON(msg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to send answer: %v\n", err)
			return
		}
	}
}

func readLoop(conn *websocket.Conn, gameID chan<- string) {
	for {
		msg := &messages.Message{}
		if err := conn.ReadJSON(msg); err != nil {
			fmt.Fprintf(os.Stderr, "connection closed: %v\n", err)
			os.Exit(0)
		}

		switch msg.Type {
		case messages.MessageTypeServerStart:
			start := &messages.ServerStart{}
			if err := json.Unmarshal(msg.Payload, start); err != nil {
				fmt.Fprintf(os.Stderr, "bad start message: %v\n", err)
				continue
			}
			fmt.Printf("game %s started, questions: %s\n", start.GameID, strings.Join(start.QuestionIDs, ", "))
			gameID <- start.GameID
		case messages.MessageTypeServerAnswerResult:
			result := &messages.ServerAnswerResult{}
			if err := json.Unmarshal(msg.Payload, result); err != nil {
				fmt.Fprintf(os.Stderr, "bad answer_result message: %v\n", err)
				continue
			}
			fmt.Printf("correct: %v, score: %d\n", result.Correct, result.Score)
		case messages.MessageTypeServerGameOver:
			gameOver := &messages.ServerGameOver{}
			if err := json.Unmarshal(msg.Payload, gameOver); err != nil {
				fmt.Fprintf(os.Stderr, "bad game_over message: %v\n", err)
				continue
			}
			fmt.Printf("game over, final score: %d\n", gameOver.Score)
		case messages.MessageTypeServerError:
			serverError := &messages.ServerError{}
			if err := json.Unmarshal(msg.Payload, serverError); err != nil {
				fmt.Fprintf(os.Stderr, "bad error message: %v\n", err)
				continue
			}
			fmt.Printf("error %s: %s\n", serverError.Code, serverError.Message)
		default:
			fmt.Printf("unknown message type %s\n", msg.Type)
		}
	}
}
