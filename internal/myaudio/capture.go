package myaudio

import (
	"encoding/hex"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/gen2brain/malgo"
	"github.com/tphakala/snore-go/internal/conf"
	"github.com/tphakala/snore-go/internal/errors"
	"github.com/tphakala/snore-go/internal/logging"
)

const (
	// captureWatchdogTimeout bounds how long the capture loop waits for the
	// device to deliver data before treating it as failed. Malgo delivers
	// audio through a callback, so this is the capture-side read timeout.
	captureWatchdogTimeout = 10 * time.Second

	// maxCaptureRetries bounds device reopen attempts after a mid-run
	// failure before the run is aborted.
	maxCaptureRetries = 5

	// captureRetryBaseDelay is the initial reopen backoff, doubled per
	// consecutive failure.
	captureRetryBaseDelay = 1 * time.Second

	// captureStableRunTime is how long a device must run before the retry
	// budget resets.
	captureStableRunTime = 1 * time.Minute
)

// captureSource holds information about an audio capture source.
type captureSource struct {
	Name    string
	ID      string
	Pointer unsafe.Pointer
}

// captureRetry decides whether a capture failure is retried. A device that
// never delivered a successful start is a startup failure and is fatal
// immediately; mid-run failures get a bounded backoff budget that resets
// after a stable stretch of running.
type captureRetry struct {
	everStarted bool
	attempts    int
	delay       time.Duration
}

func newCaptureRetry() *captureRetry {
	return &captureRetry{delay: captureRetryBaseDelay}
}

// next records one failed capture run and returns the backoff delay before
// the next attempt, or false when the failure is fatal.
func (r *captureRetry) next(ranFor time.Duration, deviceStarted bool) (time.Duration, bool) {
	if deviceStarted {
		r.everStarted = true
	}
	if !r.everStarted {
		return 0, false
	}

	if ranFor > captureStableRunTime {
		r.attempts = 0
		r.delay = captureRetryBaseDelay
	}

	r.attempts++
	if r.attempts > maxCaptureRetries {
		return 0, false
	}

	delay := r.delay
	r.delay *= 2
	return delay, true
}

// CaptureAudio starts the microphone capture goroutine. Chunks are pushed
// into the queue; a device that cannot be opened at startup is fatal right
// away, mid-run failures are retried with backoff. A single fatal error is
// delivered on the returned channel once the policy gives up. It exits
// cleanly when quitChan is closed.
func CaptureAudio(settings *conf.Settings, wg *sync.WaitGroup, quitChan chan struct{}, queue *ChunkQueue) <-chan error {
	fatalChan := make(chan error, 1)
	log := logging.Structured().With("service", "capture")

	wg.Add(1)
	go func() {
		defer wg.Done()

		var seq atomic.Uint64
		retry := newCaptureRetry()

		for {
			started := time.Now()
			deviceStarted, err := captureAudioMalgo(settings, &seq, quitChan, queue)
			if err == nil {
				// Quit signal, clean exit.
				return
			}

			delay, ok := retry.next(time.Since(started), deviceStarted)
			if !ok {
				if !retry.everStarted {
					fatalChan <- errors.New(fmt.Errorf("audio capture failed at startup: %w", err)).
						Component("myaudio").
						Category(errors.CategoryAudioSource).
						Build()
				} else {
					fatalChan <- errors.New(fmt.Errorf("audio capture failed after %d attempts: %w", retry.attempts, err)).
						Component("myaudio").
						Category(errors.CategoryAudioSource).
						Build()
				}
				return
			}

			log.Warn("Audio capture failed, retrying",
				"error", err, "attempt", retry.attempts, "max_attempts", maxCaptureRetries, "delay", delay.String())

			select {
			case <-quitChan:
				return
			case <-time.After(delay):
			}
		}
	}()

	return fatalChan
}

// captureAudioMalgo opens the configured device and feeds the chunk queue
// until quitChan closes (returns a nil error) or the device fails. The
// returned bool reports whether the device reached a successful start, so
// the retry policy can tell startup failures from mid-run ones.
func captureAudioMalgo(settings *conf.Settings, seq *atomic.Uint64, quitChan chan struct{}, queue *ChunkQueue) (bool, error) {
	log := logging.Structured().With("service", "capture")

	// if Linux set malgo.BackendAlsa, else set nil for auto select
	var backends []malgo.Backend
	switch runtime.GOOS {
	case "linux":
		backends = []malgo.Backend{malgo.BackendAlsa}
	case "windows":
		backends = []malgo.Backend{malgo.BackendWasapi}
	case "darwin":
		backends = []malgo.Backend{malgo.BackendCoreaudio}
	}

	malgoCtx, err := malgo.InitContext(backends, malgo.ContextConfig{}, func(message string) {
		if settings.Debug {
			log.Debug("malgo", "message", strings.TrimSpace(message))
		}
	})
	if err != nil {
		return false, fmt.Errorf("audio context init failed: %w", err)
	}
	defer malgoCtx.Uninit() //nolint:errcheck

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = conf.NumChannels
	deviceConfig.SampleRate = conf.SampleRate
	deviceConfig.Alsa.NoMMap = 1

	infos, err := malgoCtx.Devices(malgo.Capture)
	if err != nil {
		return false, fmt.Errorf("failed to list capture devices: %w", err)
	}

	source, err := selectCaptureSource(settings, infos)
	if err != nil {
		return false, err
	}
	deviceConfig.Capture.DeviceID = source.Pointer

	// lastData feeds the watchdog below; the malgo data callback is the
	// only writer.
	var lastData atomic.Int64
	lastData.Store(time.Now().UnixNano())

	// restartChan signals an unexpected device stop.
	restartChan := make(chan struct{}, 1)

	onReceiveFrames := func(_, pSamples []byte, _ uint32) {
		lastData.Store(time.Now().UnixNano())

		// The callback must not block: copy the frames and hand off through
		// the lossy bounded queue.
		pcm := make([]byte, len(pSamples))
		copy(pcm, pSamples)
		queue.Push(Chunk{Seq: seq.Add(1), PCM: pcm})
	}

	// onStopDevice is called when the device stops, either normally or
	// unexpectedly. Outside shutdown this means the device vanished.
	onStopDevice := func() {
		select {
		case <-quitChan:
		default:
			select {
			case restartChan <- struct{}{}:
			default:
			}
		}
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onReceiveFrames,
		Stop: onStopDevice,
	})
	if err != nil {
		return false, fmt.Errorf("capture device init failed: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return false, fmt.Errorf("capture device start failed: %w", err)
	}
	defer device.Stop() //nolint:errcheck

	log.Info("Listening on audio source", "name", source.Name, "id", source.ID)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-quitChan:
			if settings.Debug {
				log.Debug("Stopping capture due to quit signal")
			}
			return true, nil
		case <-restartChan:
			return true, fmt.Errorf("capture device stopped unexpectedly")
		case <-ticker.C:
			last := time.Unix(0, lastData.Load())
			if time.Since(last) > captureWatchdogTimeout {
				return true, fmt.Errorf("no audio data received for %s", captureWatchdogTimeout)
			}
		}
	}
}

// selectCaptureSource selects a capture device matching the configured
// source name or ID. It logs available devices to help with configuration.
func selectCaptureSource(settings *conf.Settings, infos []malgo.DeviceInfo) (captureSource, error) {
	log := logging.HumanReadable()

	var selected captureSource
	var deviceFound bool

	for i, info := range infos {
		decodedID, err := hexToASCII(info.ID.String())
		if err != nil {
			log.Warn("Error decoding capture device ID", "device", i, "error", err)
			continue
		}

		if settings.Debug {
			log.Debug("Capture source", "index", i, "name", info.Name(), "id", decodedID)
		}

		if !deviceFound && matchesDeviceSettings(decodedID, info, settings.Realtime.Audio.Source) {
			selected = captureSource{
				Name:    info.Name(),
				ID:      decodedID,
				Pointer: info.ID.Pointer(),
			}
			deviceFound = true
		}
	}

	if !deviceFound {
		return captureSource{}, errors.Newf("no suitable capture source found for device setting %q", settings.Realtime.Audio.Source).
			Component("myaudio").
			Category(errors.CategoryAudioSource).
			Build()
	}

	return selected, nil
}

// matchesDeviceSettings checks if the device matches the settings specified by the user.
func matchesDeviceSettings(decodedID string, info malgo.DeviceInfo, audioSource string) bool {
	if runtime.GOOS == "windows" && audioSource == "sysdefault" {
		// On Windows there is no "sysdefault" device, use the default device instead.
		return info.IsDefault == 1
	}
	return decodedID == audioSource || strings.Contains(info.Name(), audioSource)
}

// hexToASCII converts a hexadecimal string to an ASCII string.
func hexToASCII(hexStr string) (string, error) {
	bytes, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
