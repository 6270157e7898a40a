package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"
)

var (
	baseURL   = flag.String("url", "http://localhost:8086", "Matchroom base URL")
	gameType  = flag.String("game", "tic-tac-toe", "Game type to queue for")
	numPairs  = flag.Int("pairs", 10, "Number of player pairs to push through a full match")
	moveCount = flag.Int("moves", 6, "Moves to play per match before ending it")
	moveDelay = flag.Duration("move-delay", 200*time.Millisecond, "Delay between moves")
	forfeits  = flag.Float64("forfeit-rate", 0.2, "Probability a match ends by forfeit instead of a result (0.0-1.0)")
)

type joinResponse struct {
	Position    int `json:"position"`
	QueueLength int `json:"queue_length"`
}

type snapshotResponse struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	PlayerIDs []string `json:"player_ids"`
	Turn      int      `json:"turn"`
}

func main() {
	flag.Parse()

	if err := ping(); err != nil {
		fmt.Printf("Failed to reach matchroom at %s: %v\n", *baseURL, err)
		os.Exit(1)
	}
	fmt.Printf("✅ Matchroom reachable at %s\n", *baseURL)

	fmt.Printf("\n🚀 Driving %d matches of %q through the full lifecycle...\n\n", *numPairs, *gameType)

	var wg sync.WaitGroup
	for i := 0; i < *numPairs; i++ {
		wg.Add(1)
		go func(pair int) {
			defer wg.Done()
			runPair(pair)
		}(i)

		// Stagger joins so queue positions stay readable in the logs.
		time.Sleep(50 * time.Millisecond)
	}
	wg.Wait()

	fmt.Println("\n✅ Simulation complete")
}

func runPair(pair int) {
	p1 := fmt.Sprintf("demo-player-%d-a", pair+1)
	p2 := fmt.Sprintf("demo-player-%d-b", pair+1)

	for _, p := range []string{p1, p2} {
		var out joinResponse
		if err := post("/api/v1/queue/join", map[string]string{"player_id": p, "game_type": *gameType}, &out); err != nil {
			fmt.Printf("❌ pair %d: join failed for %s: %v\n", pair+1, p, err)
			return
		}
	}

	// Real clients learn the match id from the match_ready frame on their
	// websocket; the script polls the by-player lookup instead.
	matchID := waitForMatch(pair, p1)
	if matchID == "" {
		fmt.Printf("❌ pair %d: no match formed\n", pair+1)
		return
	}

	for _, p := range []string{p1, p2} {
		if err := post(fmt.Sprintf("/api/v1/matches/%s/claim", matchID), map[string]string{"player_id": p}, nil); err != nil {
			fmt.Printf("❌ pair %d: claim failed for %s: %v\n", pair+1, p, err)
			return
		}
	}

	players := []string{p1, p2}
	for i := 0; i < *moveCount; i++ {
		mover := players[i%2]
		move := map[string]any{"cell": rand.Intn(9)}
		body := map[string]any{"player_id": mover, "move": move}
		if err := post(fmt.Sprintf("/api/v1/matches/%s/moves", matchID), body, nil); err != nil {
			fmt.Printf("❌ pair %d: move %d rejected for %s: %v\n", pair+1, i+1, mover, err)
			return
		}
		time.Sleep(*moveDelay)
	}

	if rand.Float64() < *forfeits {
		loser := players[rand.Intn(2)]
		if err := post(fmt.Sprintf("/api/v1/matches/%s/forfeit", matchID), map[string]string{"player_id": loser}, nil); err != nil {
			fmt.Printf("❌ pair %d: forfeit failed: %v\n", pair+1, err)
			return
		}
		fmt.Printf("🏳️  pair %d: match %s ended by forfeit of %s\n", pair+1, matchID, loser)
		return
	}

	winner := players[rand.Intn(2)]
	body := map[string]string{"winner_id": winner, "reason": "completed"}
	if err := post(fmt.Sprintf("/api/v1/matches/%s/end", matchID), body, nil); err != nil {
		fmt.Printf("❌ pair %d: end failed: %v\n", pair+1, err)
		return
	}
	fmt.Printf("🏆 pair %d: match %s won by %s\n", pair+1, matchID, winner)
}

func waitForMatch(pair int, playerID string) string {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		id := findMatchFor(playerID)
		if id != "" {
			fmt.Printf("🎮 pair %d: match %s formed\n", pair+1, id)
			return id
		}
		time.Sleep(100 * time.Millisecond)
	}
	return ""
}

func findMatchFor(playerID string) string {
	resp, err := http.Get(*baseURL + "/api/v1/matches/by-player/" + playerID)
	if err != nil || resp.StatusCode != http.StatusOK {
		if resp != nil {
			resp.Body.Close()
		}
		return ""
	}
	defer resp.Body.Close()

	var snap snapshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return ""
	}
	return snap.ID
}

func ping() error {
	resp, err := http.Get(*baseURL + "/healthz")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func post(path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := http.Post(*baseURL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("status %d: %v", resp.StatusCode, errBody["message"])
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
