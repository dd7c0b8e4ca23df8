package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/anthonytapias/charmefy/internal/auth"
	"github.com/anthonytapias/charmefy/internal/config"
	"github.com/anthonytapias/charmefy/internal/model/character"
	"github.com/anthonytapias/charmefy/internal/service/chat"
	"github.com/anthonytapias/charmefy/internal/service/recent"
	"github.com/anthonytapias/charmefy/internal/service/session"
	"github.com/anthonytapias/charmefy/internal/tui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// The terminal owns stdout; keep the log out of the way.
	logFile, err := tea.LogToFile("charmefy.log", "chat")
	if err == nil {
		defer logFile.Close()
	}

	accessor := auth.StaticAccessor{Current: auth.State{
		Token:  cfg.Client.AuthToken,
		UserID: cfg.Client.UserID,
	}}

	var store session.Store
	if fs := session.NewFileStore(cfg.Client.StateDir); fs != nil {
		store = fs
	}
	identity := session.NewProvider(store)

	client := chat.New(chat.Config{
		ServerURL: cfg.Client.ServerURL,
		Identity:  identity,
		Auth:      accessor,
		Recent:    recent.NewClient(cfg.Client.ServerURL),
	})

	characters := fetchCatalog(cfg.Client.ServerURL)

	model := tui.NewModel(client, characters, accessor.Current.LoggedIn())
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "charmefy: %v\n", err)
		os.Exit(1)
	}
}

// fetchCatalog loads the character catalog from the backend, falling back
// to the built-in seed when the backend is unreachable. The catalog is
// static content; browsing it never requires a connection.
func fetchCatalog(baseURL string) []character.Character {
	httpc := &http.Client{Timeout: 5 * time.Second}
	resp, err := httpc.Get(baseURL + "/api/characters")
	if err != nil {
		log.Printf("[catalog] fetch failed, using built-in seed: %v", err)
		return character.Seed()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[catalog] unexpected status %d, using built-in seed", resp.StatusCode)
		return character.Seed()
	}

	var characters []character.Character
	if err := json.NewDecoder(resp.Body).Decode(&characters); err != nil || len(characters) == 0 {
		log.Printf("[catalog] decode failed, using built-in seed: %v", err)
		return character.Seed()
	}
	return characters
}
