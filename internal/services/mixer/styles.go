package mixer

import (
	"github.com/offbeatlabs/mooddj/internal/models"
)

// StyleConfig controls the character of a transition
type StyleConfig struct {
	CrossfadeMs int
	TempoMatch  bool
	KeyMatch    bool
}

// styles maps each mix style to its transition parameters
var styles = map[models.MixStyle]StyleConfig{
	models.MixStyleSmooth:    {CrossfadeMs: 8000, TempoMatch: true, KeyMatch: true},
	models.MixStyleEnergetic: {CrossfadeMs: 4000, TempoMatch: true, KeyMatch: false},
	models.MixStyleDramatic:  {CrossfadeMs: 2000, TempoMatch: false, KeyMatch: false},
	models.MixStyleExtended:  {CrossfadeMs: 16000, TempoMatch: true, KeyMatch: true},
}

// StyleFor returns the configuration for a mix style, defaulting to smooth
func StyleFor(style models.MixStyle) StyleConfig {
	if cfg, ok := styles[style]; ok {
		return cfg
	}
	return styles[models.MixStyleSmooth]
}
