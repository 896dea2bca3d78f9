// Package service provides the business logic layer for gridnav.
//
// The service package implements:
//   - Multi-session navigation management
//   - Map configuration loading and listing
//   - Path request, obstacle, and playback orchestration
//   - Request history tracking
//
// Core Interfaces:
//
// NavService is the main service interface providing high-level
// navigation operations. SessionManager handles session creation,
// retrieval, and lifecycle. MapManager manages map configuration loading
// and discovery.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the navigation core, providing session isolation and orchestration.
// Each session owns an independent grid and mover built from its map
// configuration.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	mapMgr, _ := config.NewManager("configs")
//	navService := service.NewNavService(sessionMgr, mapMgr)
//
//	info, err := navService.CreateSession(ctx, "courtyard")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := navService.RequestPath(ctx, info.ID, grid.Cell{Col: 8, Row: 6})
package service
