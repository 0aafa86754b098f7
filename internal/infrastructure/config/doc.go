// Package config loads, validates and hot-reloads padlink settings.
//
// Settings come from three layers. Hardcoded defaults cover every
// field, the YAML file overrides them, and PADLINK_* environment
// variables override the file. Secrets (broker passwords, API tokens)
// belong in the environment layer so the YAML file can be committed.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Serial.DefaultPort)
//
// With watch.enabled, a Watcher re-runs Load whenever the file
// changes and hands the new Config to a callback; invalid edits are
// reported and the previous configuration stays active.
package config
