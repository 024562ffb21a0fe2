// File: main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/kestrelcore/actormesh"
	"github.com/kestrelcore/actormesh/render"
	"github.com/kestrelcore/actormesh/transport/wstransport"
	"golang.org/x/net/websocket"
)

const defaultPort = "8080"

func main() {
	cfg := actormesh.DefaultConfig()
	if path := os.Getenv("ACTORMESH_CONFIG"); path != "" {
		loaded, err := actormesh.LoadConfigFile(path)
		if err != nil {
			fmt.Println("Error loading config, falling back to defaults:", err)
		} else {
			cfg = loaded
		}
	}
	fmt.Printf("Configuration loaded. node=%s max_actors=%d\n", cfg.NodeAddress, cfg.MaxActors)

	sys := actormesh.NewSystem(cfg)
	listener := wstransport.NewListener(sys)
	// The dialer side is wired in by operators who know their peers' URLs;
	// left nil here means this node only ever accepts inbound remote
	// deliveries (a common single-seed-node deployment shape).
	if err := sys.Start(); err != nil {
		panic(fmt.Sprintf("failed to start actor system: %v", err))
	}
	fmt.Println("Actor system started.")

	http.HandleFunc("/", handleHealthCheck)
	http.HandleFunc("/health-check/", handleHealthCheck)
	http.HandleFunc("/actors/", handleListActors(sys))
	http.HandleFunc("/dashboard/", handleDashboard(sys))
	http.HandleFunc("/stats/", handleStats(sys))
	http.HandleFunc("/deadletters/", handleDeadLetters(sys))
	http.HandleFunc("/send/", handleSend(sys))
	http.HandleFunc("/ask/", handleAsk(sys))
	http.Handle("/remote", websocket.Handler(listener.Handler()))

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
		fmt.Printf("PORT environment variable not set, defaulting to %s\n", port)
	}

	listenAddr := ":" + port
	fmt.Printf("Server starting on address %s\n", listenAddr)
	err := http.ListenAndServe(listenAddr, nil)
	if err != nil {
		fmt.Println("Server stopped:", err)
		fmt.Println("Shutting down actor system...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = sys.Stop(ctx)
		fmt.Println("Actor system shutdown complete.")
	}
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status": "ok"}`))
}

func handleListActors(sys *actormesh.System) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		addrs := sys.ListActors()
		paths := make([]string, 0, len(addrs))
		for _, a := range addrs {
			paths = append(paths, a.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(paths)
	}
}

func handleStats(sys *actormesh.System) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sys.GetSystemStats())
	}
}

func handleDeadLetters(sys *actormesh.System) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sys.DeadLetters())
	}
}

func handleSend(sys *actormesh.System) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		target, in, err := decodeRoutedInput(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := sys.Send(target, in); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func handleAsk(sys *actormesh.System) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		target, in, err := decodeRoutedInput(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reply, err := sys.Ask(r.Context(), target, in, 0)
		if err != nil {
			http.Error(w, err.Error(), http.StatusGatewayTimeout)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}
}

type routedRequest struct {
	Target  string          `json:"target"`
	Message actormesh.Input `json:"message"`
}

func decodeRoutedInput(r *http.Request) (actormesh.Address, actormesh.Input, error) {
	var req routedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return actormesh.Address{}, actormesh.Input{}, fmt.Errorf("decoding request body: %w", err)
	}
	addr, err := actormesh.ParseAddress(req.Target)
	if err != nil {
		return actormesh.Address{}, actormesh.Input{}, err
	}
	return addr, req.Message, nil
}

func handleDashboard(sys *actormesh.System) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(render.Render(sys)))
	}
}
