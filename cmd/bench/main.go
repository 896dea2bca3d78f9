package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

type NavState struct {
	MapName       string   `json:"map_name"`
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	Position      Cell     `json:"position"`
	MoverState    string   `json:"mover_state"`
	Blocked       []Cell   `json:"blocked"`
	TotalRequests int      `json:"total_requests"`
	Layout        []string `json:"layout"`
}

type SessionResponse struct {
	ID      string    `json:"id"`
	MapName string    `json:"map_name"`
	State   *NavState `json:"state"`
}

type PathResponse struct {
	Success bool      `json:"success"`
	Reason  string    `json:"reason"`
	Goal    Cell      `json:"goal"`
	Path    []Cell    `json:"path"`
	Cost    float64   `json:"cost"`
	State   *NavState `json:"state"`
	Message string    `json:"message"`
}

type ObstacleResponse struct {
	Cell        Cell      `json:"cell"`
	Applied     bool      `json:"applied"`
	Interrupted bool      `json:"interrupted"`
	State       *NavState `json:"state"`
}

type AdvanceResponse struct {
	Position Cell      `json:"position"`
	Moving   bool      `json:"moving"`
	State    *NavState `json:"state"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) CreateSession(mapID string) (*NavState, error) {
	var reqBody []byte
	var err error

	if mapID != "" {
		reqBody, err = json.Marshal(map[string]string{"map_id": mapID})
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.client.Post(c.baseURL+"/api/sessions", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create session failed: %s - %s", resp.Status, string(body))
	}

	var session SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("parse session response: %w", err)
	}

	c.sessionID = session.ID
	return session.State, nil
}

func (c *Client) GetState() (*NavState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/state", c.baseURL, c.sessionID)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get state failed: %s - %s", resp.Status, string(body))
	}

	var state NavState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}

	return &state, nil
}

func (c *Client) RequestPath(goal Cell) (*PathResponse, error) {
	body, err := json.Marshal(goal)
	if err != nil {
		return nil, fmt.Errorf("marshal goal: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/path", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("request path: %w", err)
	}
	defer resp.Body.Close()

	var pathResp PathResponse
	if err := json.NewDecoder(resp.Body).Decode(&pathResp); err != nil {
		return nil, fmt.Errorf("parse path response: %w", err)
	}

	// A failed search is still HTTP 200; the reason field says why.
	return &pathResp, nil
}

func (c *Client) PlaceObstacle(cell Cell) (*ObstacleResponse, error) {
	body, err := json.Marshal(cell)
	if err != nil {
		return nil, fmt.Errorf("marshal cell: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/obstacle", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("place obstacle: %w", err)
	}
	defer resp.Body.Close()

	var obsResp ObstacleResponse
	if err := json.NewDecoder(resp.Body).Decode(&obsResp); err != nil {
		return nil, fmt.Errorf("parse obstacle response: %w", err)
	}

	return &obsResp, nil
}

func (c *Client) Advance() (*AdvanceResponse, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/advance", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("advance: %w", err)
	}
	defer resp.Body.Close()

	var advResp AdvanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&advResp); err != nil {
		return nil, fmt.Errorf("parse advance response: %w", err)
	}

	return &advResp, nil
}

func (c *Client) Reset() (*NavState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/reset", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	defer resp.Body.Close()

	var state NavState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("parse reset response: %w", err)
	}

	return &state, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Navigation server URL")
	mapID := flag.String("map", "", "Map ID to benchmark (empty = server default)")
	continueSession := flag.String("continue", "", "Reuse an existing session by ID")
	maxGoals := flag.Int("goals", 0, "Maximum goals to request (0 = every walkable cell)")
	walk := flag.Bool("walk", false, "Advance through each found path before the next goal")
	obstacleRate := flag.Float64("obstacle-rate", 0, "Probability of dropping a runtime obstacle before each goal")
	seed := flag.Int64("seed", 0, "Random seed for goal shuffling and obstacles (0 = scan order)")
	delayMs := flag.Int("delay", 0, "Delay between requests in milliseconds (0 = no delay)")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	log.Printf("Connecting to navigation server at %s", *serverURL)
	client := NewClient(*serverURL)

	var state *NavState
	var err error

	// Check for saved session ID
	sessionFile := ".session"
	savedSessionID := ""

	if *continueSession != "" {
		savedSessionID = *continueSession
	} else {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		log.Printf("Resuming session: %s", client.sessionID)
		state, err = client.GetState()
		if err != nil {
			log.Printf("Failed to resume session (may be expired): %v", err)
			log.Printf("Creating new session...")
			savedSessionID = ""
		}
	}

	if savedSessionID == "" {
		state, err = client.CreateSession(*mapID)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("Session created: %s", client.sessionID)

		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}

	// Start every run from a clean slate.
	state, err = client.Reset()
	if err != nil {
		log.Fatalf("Failed to reset session: %v", err)
	}
	log.Printf("Map %q: %dx%d, start (%d,%d)",
		state.MapName, state.Width, state.Height, state.Position.Col, state.Position.Row)

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}

	sweep := NewSweepStrategy(state, rng)
	log.Printf("Sweep plan: %d walkable goals", sweep.Remaining())

	stats := NewStats()
	goalCount := 0

	for {
		if *maxGoals > 0 && goalCount >= *maxGoals {
			break
		}

		goal, ok := sweep.NextGoal()
		if !ok {
			break
		}
		goalCount++

		if rng != nil && *obstacleRate > 0 && rng.Float64() < *obstacleRate {
			if cell, ok := sweep.RandomObstacle(state.Position); ok {
				obsResp, err := client.PlaceObstacle(cell)
				if err != nil {
					log.Printf("Obstacle at (%d,%d) failed: %v", cell.Col, cell.Row, err)
				} else if obsResp.Applied {
					sweep.MarkBlocked(cell)
					stats.Obstacles++
					if *verbose {
						log.Printf("Obstacle at (%d,%d), interrupted=%t",
							cell.Col, cell.Row, obsResp.Interrupted)
					}
				}
			}
		}

		start := time.Now()
		pathResp, err := client.RequestPath(goal)
		elapsed := time.Since(start)
		if err != nil {
			log.Printf("Path request to (%d,%d) failed: %v", goal.Col, goal.Row, err)
			stats.Errors++
			continue
		}

		stats.Record(pathResp, elapsed)

		if *verbose {
			log.Printf("Goal %d: (%d,%d) reason=%s len=%d cost=%.1f in %s",
				goalCount, goal.Col, goal.Row, pathResp.Reason,
				len(pathResp.Path), pathResp.Cost, elapsed.Round(time.Microsecond))
		}

		if *walk && pathResp.Success {
			for {
				advResp, err := client.Advance()
				if err != nil {
					log.Printf("Advance failed: %v", err)
					break
				}
				stats.Steps++
				if advResp.State != nil {
					state = advResp.State
				}
				if !advResp.Moving {
					break
				}
			}
		} else if pathResp.State != nil {
			state = pathResp.State
		}

		if *delayMs > 0 {
			time.Sleep(time.Duration(*delayMs) * time.Millisecond)
		}
	}

	stats.Report(goalCount)
	log.Printf("Session: %s", client.sessionID)

	if stats.Errors > 0 {
		os.Exit(1)
	}
}
