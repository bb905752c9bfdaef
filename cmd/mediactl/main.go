// Package main provides an offline media URL classifier.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/flockcast/engage/internal/app/media"
)

var (
	app = kingpin.New("mediactl", "Classify media URLs without a running server")

	classifyCmd = app.Command("classify", "Classify a URL into a playable descriptor").Default()
	classifyURL = classifyCmd.Arg("url", "Media URL to classify").Required().String()

	checkCmd = app.Command("check-streaming", "Check the streaming-service heuristic for a URL")
	checkURL = checkCmd.Arg("url", "Media URL to check").Required().String()
)

func main() {
	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case classifyCmd.FullCommand():
		d := media.Default().Classify(*classifyURL)
		fmt.Printf("kind:          %s\n", d.Kind)
		if d.ProviderHint != "" {
			fmt.Printf("provider:      %s\n", d.ProviderHint)
		}
		if d.PlaybackURL != "" {
			fmt.Printf("playback_url:  %s\n", d.PlaybackURL)
		}
		fmt.Printf("streaming:     %t\n", media.IsStreamingService(*classifyURL))

	case checkCmd.FullCommand():
		fmt.Printf("%t\n", media.IsStreamingService(*checkURL))
	}
}
