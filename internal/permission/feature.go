// Package permission holds the per-user, per-feature access model that the
// request pipeline consults for authorization.
package permission

import "strings"

// Feature is a manageable capability area of the dashboard. The value doubles
// as the bit position in compact encodings, so the order is part of the
// persisted format and must not be reshuffled.
type Feature uint8

const (
	FeatureFileManager Feature = iota
	FeatureConsole
	FeatureBackups
	FeatureSchedules
	FeaturePlayers
	FeatureResources
	FeatureSettings

	featureCount
)

// Features lists the full catalogue in bit order.
var Features = [featureCount]Feature{
	FeatureFileManager,
	FeatureConsole,
	FeatureBackups,
	FeatureSchedules,
	FeaturePlayers,
	FeatureResources,
	FeatureSettings,
}

var featureNames = [featureCount]string{
	"file_manager",
	"console",
	"backups",
	"schedules",
	"players",
	"resources",
	"settings",
}

func (f Feature) String() string {
	if f >= featureCount {
		return "unknown"
	}
	return featureNames[f]
}

// Bit is the feature's position in compact encodings.
func (f Feature) Bit() uint { return uint(f) }

func ParseFeature(s string) (Feature, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range featureNames {
		if n == s {
			return Feature(i), true
		}
	}
	return 0, false
}

// Level is the ordered access tier for a user on a feature. FULL implies READ.
type Level int

const (
	LevelNone Level = 0
	LevelRead Level = 1
	LevelFull Level = 2
)

func (l Level) String() string {
	switch l {
	case LevelRead:
		return "read"
	case LevelFull:
		return "full"
	default:
		return "none"
	}
}

// Allows reports whether a holder of l clears the required minimum.
func (l Level) Allows(min Level) bool { return l >= min }

func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "0":
		return LevelNone, true
	case "read", "1":
		return LevelRead, true
	case "full", "2":
		return LevelFull, true
	}
	return LevelNone, false
}
