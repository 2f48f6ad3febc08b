package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tphakala/snore-go/internal/alert"
	"github.com/tphakala/snore-go/internal/conf"
	"github.com/tphakala/snore-go/internal/myaudio"
	"github.com/tphakala/snore-go/internal/snorenet"
)

// episode is one contiguous span of alerting windows in a file analysis.
type episode struct {
	start time.Duration
	end   time.Duration
}

// FileAnalysis runs the detection pipeline over a WAV file and prints a
// per-window report plus an episode summary. No actuation takes place in
// file mode.
func FileAnalysis(settings *conf.Settings) error {
	if err := conf.ValidateSettings(settings); err != nil {
		return err
	}
	if err := validateAudioFile(settings.Input.Path); err != nil {
		return err
	}

	sn, err := snorenet.New(settings)
	if err != nil {
		return err
	}
	detector := NewDetector(sn, nil)
	defer detector.Close()

	if err := detector.Reset(); err != nil {
		return err
	}

	pcm, err := myaudio.ReadWAV(settings.Input.Path)
	if err != nil {
		return err
	}

	wb, err := myaudio.NewWindowBuffer(settings.SnoreNET.ChunkDuration, settings.SnoreNET.Overlap)
	if err != nil {
		return err
	}

	sm := alert.New(settings.SnoreNET.Threshold, settings.SnoreNET.MinSnoreCount)
	stepSeconds := float64(wb.StepSamples()) / float64(conf.SampleRate)

	fileDuration := time.Duration(float64(len(pcm)/conf.BytesPerSample) / float64(conf.SampleRate) * float64(time.Second))
	fmt.Printf("Analyzing %s (%s)\n", filepath.Base(settings.Input.Path), fileDuration.Round(time.Second))

	var (
		totalWindows int
		snoreWindows int
		undetermined int
		episodes     []episode
		open         *episode
	)

	start := time.Now()

	// Feed the file through the same window assembly the realtime path
	// uses, one window-sized slice at a time.
	chunkBytes := wb.WindowSamples() * conf.BytesPerSample
	for offset := 0; offset < len(pcm); offset += chunkBytes {
		end := min(offset+chunkBytes, len(pcm))

		windows, err := wb.Push(pcm[offset:end])
		if err != nil {
			return err
		}

		for i := range windows {
			w := &windows[i]
			res := detector.Evaluate(*w)
			totalWindows++
			if res.Undetermined {
				undetermined++
			} else if res.Probability >= float32(settings.SnoreNET.Threshold) {
				snoreWindows++
			}

			at := time.Duration(float64(w.Seq) * stepSeconds * float64(time.Second))
			if settings.Debug {
				fmt.Printf("  %8s  p=%.2f\n", at.Round(10*time.Millisecond), res.Probability)
			}

			event, emitted := sm.Transition(res.WindowSeq, res.Probability)
			if !emitted {
				continue
			}
			switch event.Type {
			case alert.AlertRaised:
				open = &episode{start: at, end: at}
			case alert.AlertCleared:
				if open != nil {
					open.end = at
					episodes = append(episodes, *open)
					open = nil
				}
			}
		}
	}

	// Snoring through the end of the file leaves an open episode.
	if open != nil {
		open.end = fileDuration
		episodes = append(episodes, *open)
	}

	printFileSummary(totalWindows, snoreWindows, undetermined, episodes, time.Since(start))
	return nil
}

// validateAudioFile checks that the input path points at a readable,
// non-empty WAV file before the model is loaded.
func validateAudioFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error accessing file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file %s is empty", path)
	}

	audioInfo, err := myaudio.GetAudioInfo(path)
	if err != nil {
		return err
	}
	if audioInfo.TotalSamples == 0 {
		return fmt.Errorf("file %s contains no samples", path)
	}
	return nil
}

func printFileSummary(total, snore, undetermined int, episodes []episode, elapsed time.Duration) {
	fmt.Printf("\nWindows analyzed: %d\n", total)
	if total > 0 {
		fmt.Printf("Snoring windows:  %d (%.1f%%)\n", snore, 100*float64(snore)/float64(total))
	} else {
		fmt.Println("Snoring windows:  0")
	}
	if undetermined > 0 {
		fmt.Printf("Undetermined:     %d\n", undetermined)
	}

	if len(episodes) == 0 {
		fmt.Println("No snoring episodes detected.")
	} else {
		fmt.Printf("Snoring episodes: %d\n", len(episodes))
		for i := range episodes {
			e := &episodes[i]
			fmt.Printf("  %2d. %8s - %8s\n", i+1,
				e.start.Round(100*time.Millisecond), e.end.Round(100*time.Millisecond))
		}
	}
	fmt.Printf("Analysis took %s\n", elapsed.Round(time.Millisecond))
}
