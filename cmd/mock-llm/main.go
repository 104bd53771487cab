// Package main implements a mock model server for offline development.
// It serves OpenAI-compatible /v1/chat/completions responses, picking a
// canned itinerary payload by sniffing which generation stage the prompt
// belongs to (scene analysis, visual identity, skeleton, day detail, or
// follow-up classification). This lets the full pipeline run fast,
// deterministic, and offline.
//
// Usage:
//
//	mock-llm -port 11434 [-fixtures /path/to/fixtures]
//
// When a fixtures directory is given, a file named after a stage (e.g.
// "skeleton.json") overrides the built-in payload for that stage.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Built-in stage payloads. The skeleton payload carries three days so a
// default run exercises the concurrent day workers.
var builtins = map[string]string{
	"scene": `{"category": "foodie", "confidence": 0.9, "summary": "A food-first city break.",
  "highlights": ["street food", "markets", "local dining"], "keywords": ["food", "market", "restaurant"]}`,

	"identity": `{"destination": "Tokyo", "duration": 3, "tone": "playful and curious",
  "palette": "sunset", "hero_style": "photo", "font": "modern"}`,

	"skeleton": `{"summary": "Three days eating through Tokyo, from dawn fish markets to late-night ramen.",
  "highlights": [
    {"icon": "🍣", "title": "Market mornings", "description": "Tsukiji outer market before the crowds."},
    {"icon": "🍜", "title": "Ramen crawl", "description": "Three bowls, three styles, one evening."},
    {"icon": "🍵", "title": "Tea break", "description": "A quiet matcha stop between districts."}
  ],
  "days": [
    {"day": 1, "title": "Market Morning", "theme": "street food", "city": "Tokyo", "image_keyword": "tokyo market"},
    {"day": 2, "title": "Ramen and Alleys", "theme": "noodles", "city": "Tokyo", "image_keyword": "tokyo ramen"},
    {"day": 3, "title": "Sweet Finish", "theme": "dessert", "city": "Tokyo", "image_keyword": "tokyo dessert"}
  ]}`,

	"day": `{"activities": [
    {"time_of_day": "08:00", "title": "Tsukiji outer market", "description": "Graze the stalls while they are still setting up.", "location": "Tsukiji Outer Market", "tip": "Bring cash."},
    {"time_of_day": "12:30", "title": "Conveyor-belt sushi", "description": "Lunch the fun way.", "location": "Uobei Shibuya", "tip": ""},
    {"time_of_day": "15:00", "title": "Depachika browsing", "description": "Department store food halls are a museum you can eat.", "location": "Isetan Shinjuku", "tip": "Start in the basement."},
    {"time_of_day": "19:00", "title": "Yakitori alley", "description": "Smoky skewers under the train tracks.", "location": "Omoide Yokocho", "tip": "Arrive before seven."}
  ]}`,

	"classify": `{"intent": "single_day_edit", "confidence": 0.85, "reasoning": "The message asks to change one day.",
  "target_day": 2, "day_confidence": 0.9}`,

	"answer": `The best time for the market is before 8am, when the stalls are freshest and the crowds thin.`,
}

type server struct {
	overrides map[string]string
	calls     atomic.Int64
}

// stageFor sniffs which pipeline stage a request belongs to from its
// system prompt.
func stageFor(req chatRequest) string {
	var system string
	for _, m := range req.Messages {
		if m.Role == "system" {
			system = strings.ToLower(m.Content)
			break
		}
	}
	switch {
	case strings.Contains(system, "classify") && strings.Contains(system, "travel request"):
		return "scene"
	case strings.Contains(system, "visual identity"):
		return "identity"
	case strings.Contains(system, "outline"):
		return "skeleton"
	case strings.Contains(system, "one day"):
		return "day"
	case strings.Contains(system, "route follow-up"):
		return "classify"
	default:
		return "answer"
	}
}

func (s *server) payloadFor(stage string) string {
	if content, ok := s.overrides[stage]; ok {
		return content
	}
	return builtins[stage]
}

func (s *server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	callNum := s.calls.Add(1)
	stage := stageFor(req)
	content := s.payloadFor(stage)
	log.Printf("[call %d] model=%s stage=%s messages=%d", callNum, req.Model, stage, len(req.Messages))

	resp := chatResponse{
		ID:      fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []chatChoice{
			{
				Index:        0,
				Message:      chatMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
		Usage: chatUsage{
			PromptTokens:     len(content) / 4,
			CompletionTokens: len(content) / 4,
			TotalTokens:      len(content) / 2,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int64{"calls": s.calls.Load()})
}

// loadOverrides reads stage override files (e.g. "skeleton.json") from dir.
func loadOverrides(dir string) (map[string]string, error) {
	overrides := make(map[string]string)
	if dir == "" {
		return overrides, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stage := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if _, known := builtins[stage]; !known {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		overrides[stage] = string(data)
	}
	return overrides, nil
}

func main() {
	fixtureDir := flag.String("fixtures", "", "directory containing stage override files")
	port := flag.Int("port", 11434, "port to listen on")
	flag.Parse()

	if envDir := os.Getenv("MOCK_LLM_FIXTURES"); envDir != "" && *fixtureDir == "" {
		*fixtureDir = envDir
	}

	overrides, err := loadOverrides(*fixtureDir)
	if err != nil {
		log.Fatalf("Failed to load fixtures from %s: %v", *fixtureDir, err)
	}
	if len(overrides) > 0 {
		log.Printf("Loaded %d stage override(s) from %s", len(overrides), *fixtureDir)
	}

	s := &server{overrides: overrides}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/stats", s.handleStats)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Mock model server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
