package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"
	v1 "vbdreport.org/vbdreport/api/v1"
	"vbdreport.org/vbdreport/client/store"
	"vbdreport.org/vbdreport/client/sync"
)

type AgentConfig struct {
	ServerURL    string `yaml:"serverUrl"`
	AuthToken    string `yaml:"authToken"`
	DatabasePath string `yaml:"databasePath"`
	SyncInterval string `yaml:"syncInterval"`
}

func loadConfig(path string) (*AgentConfig, error) {
	config := &AgentConfig{
		DatabasePath: "vbdreport.db",
		SyncInterval: "30s",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	if token := os.Getenv("VBD_AUTH_TOKEN"); token != "" {
		config.AuthToken = token
	}

	if config.ServerURL == "" {
		return nil, fmt.Errorf("serverUrl is required")
	}
	if config.AuthToken == "" {
		return nil, fmt.Errorf("authToken is required (config file or VBD_AUTH_TOKEN)")
	}

	return config, nil
}

func main() {
	configPath := flag.String("config", "agent.yaml", "path to agent config file")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("agent: load config: %v", err)
	}

	interval, err := time.ParseDuration(config.SyncInterval)
	if err != nil {
		log.Fatalf("agent: invalid syncInterval %q: %v", config.SyncInterval, err)
	}

	st, err := store.Open(store.DefaultConfig(config.DatabasePath))
	if err != nil {
		log.Fatalf("agent: open store: %v", err)
	}
	defer st.Close()

	client := v1.NewVBDClient(config.ServerURL, config.AuthToken)

	status := sync.NewStatusModel()
	status.OnChange(func(snap sync.Snapshot) {
		log.Printf("agent: status %s, %d pending", snap.State, snap.PendingCount)
	})

	engine := sync.NewEngine(st, client, status, interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := engine.RefreshReferenceData(ctx); err != nil {
		log.Printf("agent: reference data refresh failed, using cached copy: %v", err)
	}

	engine.Start(ctx)
	engine.TriggerSync()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("agent: shutting down")
	engine.Close()
}
