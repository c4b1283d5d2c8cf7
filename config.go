package main

import "time"

// Runtime constants for the window loop and the hotkey controls. Canvas
// size, audio rate and the visual defaults come from the YAML config.
const (
	appName   = "beatsprite"
	Version   = "0.1.0"
	BuildTime = "dev"

	defaultTPS      = 60.0
	volumeStep      = 5
	lowshelfStepDB  = 5.0
	highshelfStepDB = 10.0
	// trackLogEvery throttles the debug progress log.
	trackLogEvery = 5 * time.Second
)
