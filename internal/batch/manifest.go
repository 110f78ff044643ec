package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one frame in the output manifest.
type ManifestEntry struct {
	Frame   int          `json:"frame"`
	Symbol  string       `json:"symbol"`
	Image   string       `json:"image"`
	Pose    ManifestPose `json:"pose"`
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
}

// ManifestPose is the camera pose a frame was rendered from.
type ManifestPose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Angle   float64 `json:"angle"`
	Pitch   float64 `json:"pitch"`
	Horizon float64 `json:"horizon"`
}

// WriteManifest writes manifest.json describing results to path.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Frame:  r.Index,
			Symbol: r.Symbol.String(),
			Image:  r.Image,
			Pose: ManifestPose{
				X:       r.Pose.X,
				Y:       r.Pose.Y,
				Z:       r.Pose.Z,
				Angle:   r.Pose.Angle,
				Pitch:   r.Pose.Pitch,
				Horizon: r.Pose.Horizon,
			},
			Success: r.Success,
			Error:   r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
