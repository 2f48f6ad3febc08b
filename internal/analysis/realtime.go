package analysis

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/tphakala/snore-go/internal/actuator"
	"github.com/tphakala/snore-go/internal/conf"
	"github.com/tphakala/snore-go/internal/logging"
	"github.com/tphakala/snore-go/internal/myaudio"
	"github.com/tphakala/snore-go/internal/observability"
	"github.com/tphakala/snore-go/internal/snorenet"
)

// RealtimeAnalysis runs the overnight monitoring pipeline: microphone
// capture feeds a lossy bounded queue, the processing flow assembles
// overlapping analysis windows, classifies them and drives the debounced
// alert and actuation path. It returns when interrupted or when audio
// capture fails beyond recovery.
func RealtimeAnalysis(settings *conf.Settings) error {
	if err := conf.ValidateSettings(settings); err != nil {
		return err
	}

	log := logging.Structured().With("service", "realtime")

	sn, err := snorenet.New(settings)
	if err != nil {
		return err
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		sn.Delete()
		return err
	}

	detector := NewDetector(sn, metrics.SnoreNET)
	defer detector.Close()

	// Stateless today, but gives a stateful model a defined warm-up point.
	if err := detector.Reset(); err != nil {
		return err
	}

	act, err := actuator.New(settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := act.Close(); err != nil {
			log.Warn("Actuator close failed", "error", err)
		}
	}()

	var detectionLog *slog.Logger
	if settings.Realtime.Log.Enabled {
		detectionLog = logging.FileLogger(&settings.Realtime.Log)
	}

	wb, err := myaudio.NewWindowBuffer(settings.SnoreNET.ChunkDuration, settings.SnoreNET.Overlap)
	if err != nil {
		return err
	}

	queue := myaudio.NewChunkQueue(settings.Realtime.QueueSize)
	proc := NewProcessor(settings, detector, act, metrics, detectionLog)

	var wg sync.WaitGroup
	quitChan := make(chan struct{})

	fatalChan := myaudio.CaptureAudio(settings, &wg, quitChan, queue)
	startProcessing(proc, wb, queue, metrics, &wg, quitChan)

	if settings.Realtime.Telemetry.Enabled {
		endpoint, err := observability.NewEndpoint(settings, metrics)
		if err != nil {
			return err
		}
		endpoint.Start(&wg, quitChan)
	}

	log.Info("Realtime snore monitoring started",
		"node", settings.Main.Name,
		"window_s", settings.SnoreNET.ChunkDuration,
		"overlap", settings.SnoreNET.Overlap,
		"threshold", settings.SnoreNET.Threshold,
		"min_snore_count", settings.SnoreNET.MinSnoreCount,
		"actuator", act.Name())
	fmt.Println("Monitoring... press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-fatalChan:
		log.Error("Audio capture failed beyond recovery", "error", err)
		runErr = err
	}

	close(quitChan)
	wg.Wait()
	proc.Wait()

	if dropped := queue.Dropped(); dropped > 0 {
		log.Warn("Chunks were dropped during the run, consider a larger queue or more threads",
			"dropped", dropped)
	}
	log.Info("Realtime snore monitoring stopped")
	return runErr
}

// startProcessing launches the processing flow: drain the chunk queue,
// assemble windows and feed them through the processor, until quitChan
// closes.
func startProcessing(proc *Processor, wb *myaudio.WindowBuffer, queue *myaudio.ChunkQueue, metrics *observability.Metrics, wg *sync.WaitGroup, quitChan chan struct{}) {
	log := logging.Structured().With("service", "realtime")

	wg.Add(1)
	go func() {
		defer wg.Done()

		var lastDropped uint64
		for {
			select {
			case <-quitChan:
				return
			case chunk := <-queue.Chunks():
				windows, err := wb.Push(chunk.PCM)
				if err != nil {
					// A chunk that cannot be staged is dropped; the stream
					// realigns on the next window boundary.
					log.Warn("Failed to buffer audio chunk", "chunk_seq", chunk.Seq, "error", err)
					continue
				}

				if metrics != nil {
					metrics.MyAudio.ChunksCapturedTotal.Inc()
					metrics.MyAudio.QueueFillGauge.Set(float64(queue.Len()))
					if dropped := queue.Dropped(); dropped > lastDropped {
						metrics.MyAudio.ChunksDroppedTotal.Add(float64(dropped - lastDropped))
						lastDropped = dropped
					}
				}

				for i := range windows {
					if metrics != nil {
						metrics.MyAudio.WindowsEmittedTotal.Inc()
					}
					proc.ProcessWindow(windows[i])
				}
			}
		}
	}()
}
