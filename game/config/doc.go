// Package config provides variant management for Incognito.
//
// A variant is an engine.GameConfig stored as JSON in the variants directory.
// The file name without its extension is the variant ID used when creating
// sessions:
//
//	{
//	  "name": "corner",
//	  "description": "Spies start in the corners",
//	  "layout": ["B..b.", ".....", ".....", ".....", ".w..W"],
//	  "starting_player": "black"
//	}
//
// Layout rows run from rank 5 down to rank 1. Lower case letters are knights,
// upper case letters are spies, '.' is an empty square.
//
// The classic deployment is built in and is always listed, so a server runs
// without any variants directory at all.
//
// Usage:
//
//	manager, err := config.NewManager("variants")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("corner")
//	variants, err := manager.ListConfigs()
package config
