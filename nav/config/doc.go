// Package config provides map configuration management for gridnav.
//
// The config package handles:
//   - Loading map definitions from JSON and YAML files
//   - Map validation and verification
//   - Default map management
//   - Map discovery and listing
//   - Optional cache invalidation when map files change on disk
//
// Map Format:
//
// Maps are stored as .json or .yaml files in the maps directory. Each map
// defines named tile layers as rows of layout characters, a legend mapping
// characters to tile indices, a sparse tileset declaring which indices
// collide or carry non-default costs, and an explicit layer fallback order.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg, err := manager.LoadMap("courtyard")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	maps, err := manager.ListMaps()
//
// Hot Reload:
//
// Watch starts an fsnotify watcher on the maps directory that drops
// cached entries when their files change, so the next LoadMap rereads
// from disk. Watching is optional; the manager works without it.
package config
