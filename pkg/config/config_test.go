package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	conf := NewConfig()
	if conf.Switchboard.Server.Address != ":8081" {
		t.Errorf("default address is %v", conf.Switchboard.Server.Address)
	}
	if conf.Switchboard.Rooms.Policies == "" {
		t.Errorf("no default policy path")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	content := "switchboard:\n  debug: true\n  server:\n    address: :9999\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	conf := NewConfig()
	if err := Load(&conf, dir); err != nil {
		t.Fatal(err)
	}
	if !conf.Switchboard.Debug {
		t.Errorf("debug flag was not loaded")
	}
	if conf.Switchboard.Server.Address != ":9999" {
		t.Errorf("address is %v, want :9999", conf.Switchboard.Server.Address)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	conf := NewConfig()
	if err := Load(&conf, t.TempDir()); err != nil {
		t.Fatalf("missing config file is not an error, got %v", err)
	}
	if conf.Switchboard.Server.Address != ":8081" {
		t.Errorf("defaults were lost: %v", conf.Switchboard.Server.Address)
	}
}
