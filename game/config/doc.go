// Package config provides configuration management for the FoodChain game.
//
// The config package handles:
//   - Loading the food chains of each era from text files
//   - Caching the parsed pools behind a read/write lock
//   - Reading server settings from the environment
//
// Era Data Format:
//
// Each era has one file in the data directory named after it (past.txt,
// present.txt, future.txt). Lines starting with "Food Chain" (any case)
// carry four comma-separated names: apex, predator, prey and food.
// Every other line is ignored.
//
//	Food Chain: Sabre-tooth Cat, Dire Wolf, Mammoth Calf, Berries
//
// Usage:
//
//	manager, err := config.NewManager("data")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Pass the manager to the engine as its chain source
//	eng := engine.NewEngine(engine.WithChainSource(manager))
//
//	// List what each era offers
//	for _, info := range manager.ListEras() {
//		fmt.Println(info.Era, len(info.Chains))
//	}
//
// Environment:
//
// LoadServerConfig reads FOODCHAIN_* variables (host, port, data and save
// directories, save backend, event log path, random seed) using
// caarlos0/env. Command-line flags override these values in main.
package config
