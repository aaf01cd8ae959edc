package main

import (
	"testing"

	"github.com/muurk/neptune-screen/internal/config"
	"github.com/muurk/neptune-screen/internal/routes"
	"github.com/muurk/neptune-screen/internal/views"
)

func TestApplyRunFlags(t *testing.T) {
	if err := runCmd.Flags().Parse([]string{"--device", "/dev/ttyUSB0", "--port", "7130"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg := config.Default()
	cfg.Moonraker.Host = "printer.local"
	applyRunFlags(runCmd, cfg)

	if cfg.Serial.Device != "/dev/ttyUSB0" {
		t.Errorf("Serial.Device = %v, want /dev/ttyUSB0", cfg.Serial.Device)
	}
	if cfg.Moonraker.Port != 7130 {
		t.Errorf("Moonraker.Port = %v, want 7130", cfg.Moonraker.Port)
	}
	if cfg.Moonraker.Host != "printer.local" {
		t.Errorf("Moonraker.Host = %v, want config value kept", cfg.Moonraker.Host)
	}
}

func TestBuiltInRoutesValidate(t *testing.T) {
	table, err := loadRoutes("")
	if err != nil {
		t.Fatalf("loadRoutes() error = %v", err)
	}
	set := views.New(nil, nil, views.Options{})
	if err := routes.Validate(table, set.Operations()); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}
