package main

import (
	"os"
	"testing"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}

	expectedVersion := "1.0.0"
	if Version != expectedVersion {
		t.Errorf("Expected version %s, got %s", expectedVersion, Version)
	}

	expectedAppName := "Grid Navigation Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	// Test with default map directory
	originalMapDir := *mapDir
	*mapDir = "configs"
	defer func() { *mapDir = originalMapDir }()

	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	navService, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	if navService == nil {
		t.Fatal("Expected navigation service to be initialized")
	}
}

func TestInitializeServices_InvalidMapDir(t *testing.T) {
	// Test with non-existent map directory
	originalMapDir := *mapDir
	*mapDir = "/non/existent/path"
	defer func() { *mapDir = originalMapDir }()

	_, err := initializeServices()
	if err == nil {
		t.Error("Expected error for non-existent map directory")
	}
}

func TestInitializeServices_UnknownStore(t *testing.T) {
	originalMapDir := *mapDir
	originalStore := *sessionStore
	*mapDir = "configs"
	*sessionStore = "redis"
	defer func() {
		*mapDir = originalMapDir
		*sessionStore = originalStore
	}()

	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	_, err := initializeServices()
	if err == nil {
		t.Error("Expected error for unknown session store backend")
	}
}

func TestFlagDefaults(t *testing.T) {
	// Test that flags have reasonable defaults
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}

	if *host == "" {
		t.Error("Host should have a default value")
	}

	if *mapDir == "" {
		t.Error("Map directory should have a default value")
	}

	if *sessionStore != "file" {
		t.Errorf("Expected default session store 'file', got %q", *sessionStore)
	}
}

// Note: We can't easily test main(), runHTTPServer(), and runStdioMCPWithInternalServer()
// without significant mocking or refactoring, as they start servers and block.
// These functions would be better tested in integration tests that start actual servers
// and test their endpoints.

func TestServiceInitialization(t *testing.T) {
	// Test that we can initialize services without panicking
	originalMapDir := *mapDir
	*mapDir = "configs"
	defer func() { *mapDir = originalMapDir }()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Service initialization panicked: %v", r)
		}
	}()

	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	_, err := initializeServices()
	if err != nil {
		// This is expected if maps are missing, but shouldn't panic
		t.Logf("Service initialization failed as expected: %v", err)
	}
}
